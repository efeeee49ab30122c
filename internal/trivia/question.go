// Package trivia holds the question model and question sources. A
// Source hands out unused questions; battles draw one multiple-choice
// question per exchange and one numeric question per tie-break.
package trivia

import (
	"context"
	"errors"
	"fmt"
)

// Kind distinguishes the two question formats.
type Kind string

const (
	// KindMultipleChoice questions carry four options, one correct.
	KindMultipleChoice Kind = "multiple_choice"
	// KindNumeric questions ask for a number; closest answer wins.
	KindNumeric Kind = "numeric"
)

// OptionCount is the number of options a multiple-choice question carries.
const OptionCount = 4

// Difficulty bounds. Difficulty is advisory: it may steer question
// selection but never adjudication. Zero means unspecified.
const (
	MinDifficulty     = 1
	MaxDifficulty     = 5
	DefaultDifficulty = 3
)

var ErrInvalidQuestion = errors.New("trivia: invalid question")

// Question is one trivia question of either kind.
type Question struct {
	ID           int64    `json:"id"`
	Kind         Kind     `json:"kind"`
	Category     string   `json:"category"`
	Difficulty   int      `json:"difficulty,omitempty"`
	Text         string   `json:"text"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correct_index,omitempty"`
	Answer       float64  `json:"answer,omitempty"`
}

// Validate checks structural correctness for the question's kind.
func (q *Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidQuestion)
	}
	if q.Difficulty != 0 && (q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty) {
		return fmt.Errorf("%w: question %d difficulty %d out of range %d..%d",
			ErrInvalidQuestion, q.ID, q.Difficulty, MinDifficulty, MaxDifficulty)
	}
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) != OptionCount {
			return fmt.Errorf("%w: question %d has %d options, want %d", ErrInvalidQuestion, q.ID, len(q.Options), OptionCount)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
			return fmt.Errorf("%w: question %d correct index %d out of range", ErrInvalidQuestion, q.ID, q.CorrectIndex)
		}
		for i, opt := range q.Options {
			if opt == "" {
				return fmt.Errorf("%w: question %d option %d empty", ErrInvalidQuestion, q.ID, i)
			}
		}
	case KindNumeric:
		if len(q.Options) != 0 {
			return fmt.Errorf("%w: numeric question %d carries options", ErrInvalidQuestion, q.ID)
		}
	default:
		return fmt.Errorf("%w: question %d has unknown kind %q", ErrInvalidQuestion, q.ID, q.Kind)
	}
	return nil
}

// IsCorrect reports whether the given option index answers a
// multiple-choice question correctly.
func (q *Question) IsCorrect(optionIndex int) bool {
	return q.Kind == KindMultipleChoice && optionIndex == q.CorrectIndex
}

// Source supplies unused questions. A (nil, nil) return means the
// source has no unused question of that kind left; callers treat that
// as a distinct outcome, not an error.
type Source interface {
	// NextMultipleChoice returns an unused multiple-choice question,
	// optionally restricted to a category ("" means any).
	NextMultipleChoice(ctx context.Context, category string) (*Question, error)

	// NextNumeric returns an unused numeric question.
	NextNumeric(ctx context.Context) (*Question, error)
}
