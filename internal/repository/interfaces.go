// Package repository defines the persistence interfaces. Postgres holds
// the question bank and leaderboard; Redis caches live game snapshots.
package repository

import (
	"context"
	"time"

	"github.com/iamstoobit/Triviador/internal/trivia"
)

// QuestionRepository is a persistent trivia.Source with usage tracking:
// a question returned by Next* is marked used and never handed out
// again until ResetUsage. Import loads a pack.
type QuestionRepository interface {
	trivia.Source
	Import(ctx context.Context, questions []*trivia.Question) (int, error)
	ResetUsage(ctx context.Context) error
}

// LeaderboardEntry is one finished game record.
type LeaderboardEntry struct {
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	Won        bool      `json:"won"`
	Mode       string    `json:"mode"`
	PlayedAt   time.Time `json:"played_at"`
}

// Leaderboard records finished games and serves the top scores.
type Leaderboard interface {
	Record(ctx context.Context, entry LeaderboardEntry) error
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// GameCache stores the latest serialized game snapshot so external
// viewers and crash recovery can read live state.
type GameCache interface {
	SaveSnapshot(ctx context.Context, gameID string, snapshot []byte, ttl time.Duration) error
	LoadSnapshot(ctx context.Context, gameID string) ([]byte, error)
	Clear(ctx context.Context, gameID string) error
}
