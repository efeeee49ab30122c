package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/iamstoobit/Triviador/internal/trivia"
)

// QuestionRepo serves questions from Postgres with usage tracking: each
// question is handed out once until ResetUsage.
type QuestionRepo struct {
	db *sql.DB
}

// NewQuestionRepo creates a question repository backed by the given pool.
func NewQuestionRepo(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// NextMultipleChoice returns a random unused multiple-choice question,
// optionally restricted to a category, marking it used in the same
// statement. Returns (nil, nil) when the pool is exhausted.
func (r *QuestionRepo) NextMultipleChoice(ctx context.Context, category string) (*trivia.Question, error) {
	query := `
		UPDATE questions SET used = TRUE
		WHERE id = (
			SELECT id FROM questions
			WHERE kind = 'multiple_choice' AND NOT used
			  AND ($1 = '' OR category = $1)
			ORDER BY random()
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, category, difficulty, text, options, correct_index`

	q := &trivia.Question{Kind: trivia.KindMultipleChoice}
	var options pq.StringArray
	err := r.db.QueryRowContext(ctx, query, category).
		Scan(&q.ID, &q.Category, &q.Difficulty, &q.Text, &options, &q.CorrectIndex)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next multiple choice question: %w", err)
	}
	q.Options = []string(options)
	return q, nil
}

// NextNumeric returns a random unused numeric question, marking it
// used. Returns (nil, nil) when the pool is exhausted.
func (r *QuestionRepo) NextNumeric(ctx context.Context) (*trivia.Question, error) {
	query := `
		UPDATE questions SET used = TRUE
		WHERE id = (
			SELECT id FROM questions
			WHERE kind = 'numeric' AND NOT used
			ORDER BY random()
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, category, difficulty, text, answer`

	q := &trivia.Question{Kind: trivia.KindNumeric}
	err := r.db.QueryRowContext(ctx, query).
		Scan(&q.ID, &q.Category, &q.Difficulty, &q.Text, &q.Answer)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next numeric question: %w", err)
	}
	return q, nil
}

// Import inserts a question pack, skipping entries whose text already
// exists. Returns the number of rows inserted.
func (r *QuestionRepo) Import(ctx context.Context, questions []*trivia.Question) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (kind, category, difficulty, text, options, correct_index, answer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (text) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return inserted, err
		}
		difficulty := q.Difficulty
		if difficulty == 0 {
			difficulty = trivia.DefaultDifficulty
		}
		res, err := stmt.ExecContext(ctx,
			string(q.Kind), q.Category, difficulty, q.Text,
			pq.StringArray(q.Options), q.CorrectIndex, q.Answer)
		if err != nil {
			return inserted, fmt.Errorf("insert question %d: %w", q.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit import: %w", err)
	}
	return inserted, nil
}

// ResetUsage marks every question unused again.
func (r *QuestionRepo) ResetUsage(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE questions SET used = FALSE WHERE used`); err != nil {
		return fmt.Errorf("reset question usage: %w", err)
	}
	return nil
}
