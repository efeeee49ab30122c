package bot

import (
	"math"
	"time"

	"github.com/iamstoobit/Triviador/internal/trivia"
)

// Per-difficulty chance of answering a multiple-choice question correctly.
var categoricalAccuracy = map[Difficulty]float64{
	Easy:   0.40,
	Medium: 0.65,
	Hard:   0.85,
}

// Per-difficulty chance of landing within 10% of a numeric answer.
var numericAccuracy = map[Difficulty]float64{
	Easy:   0.45,
	Medium: 0.60,
	Hard:   0.85,
}

// AnswerCategorical simulates answering a multiple-choice question:
// with the difficulty's accuracy the correct option, otherwise a random
// wrong one, plus a simulated think time.
func (p *Policy) AnswerCategorical(q *trivia.Question) (choice int, think time.Duration) {
	think = p.ThinkTime()
	if botFloat64() < categoricalAccuracy[p.Difficulty] {
		return q.CorrectIndex, think
	}
	wrong := botIntn(len(q.Options) - 1)
	if wrong >= q.CorrectIndex {
		wrong++
	}
	return wrong, think
}

// AnswerNumeric simulates answering a numeric question: with the
// difficulty's accuracy a value within 10% of the true answer,
// otherwise a noisy guess that is sometimes wildly off.
func (p *Policy) AnswerNumeric(q *trivia.Question) (value float64, think time.Duration) {
	think = p.ThinkTime()
	correct := q.Answer

	if botFloat64() < numericAccuracy[p.Difficulty] {
		margin := math.Abs(correct) * 0.1
		if margin == 0 {
			margin = 1
		}
		return botUniform(correct-margin, correct+margin), think
	}

	scale := math.Abs(correct) * botUniform(0.5, 2.0)
	if scale == 0 {
		scale = 100
	}
	value = botUniform(-scale, scale)
	if botFloat64() < 0.5 {
		value *= botUniform(2, 5)
	}
	return value, think
}
