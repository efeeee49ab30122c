package trivia

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Bank is an in-memory Source. Questions are handed out at most once
// until Reset; draws are uniform over the unused pool.
type Bank struct {
	mu        sync.Mutex
	rng       *rand.Rand
	questions []*Question
	used      map[int64]bool
}

// NewBank builds a bank over the given questions. A nil rng gets a
// time-seeded one; tests pass a fixed seed.
func NewBank(questions []*Question, rng *rand.Rand) *Bank {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Bank{
		rng:       rng,
		questions: questions,
		used:      make(map[int64]bool),
	}
}

// NextMultipleChoice implements Source.
func (b *Bank) NextMultipleChoice(_ context.Context, category string) (*Question, error) {
	return b.draw(func(q *Question) bool {
		if q.Kind != KindMultipleChoice {
			return false
		}
		return category == "" || q.Category == category
	}), nil
}

// NextNumeric implements Source.
func (b *Bank) NextNumeric(_ context.Context) (*Question, error) {
	return b.draw(func(q *Question) bool { return q.Kind == KindNumeric }), nil
}

func (b *Bank) draw(match func(*Question) bool) *Question {
	b.mu.Lock()
	defer b.mu.Unlock()

	var pool []*Question
	for _, q := range b.questions {
		if !b.used[q.ID] && match(q) {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	q := pool[b.rng.Intn(len(pool))]
	b.used[q.ID] = true
	return q
}

// Remaining returns how many unused questions of the given kind are left.
func (b *Bank) Remaining(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, q := range b.questions {
		if q.Kind == kind && !b.used[q.ID] {
			n++
		}
	}
	return n
}

// Reset marks every question unused again.
func (b *Bank) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = make(map[int64]bool)
}
