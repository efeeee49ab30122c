package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iamstoobit/Triviador/internal/repository"
)

// LeaderboardRepo persists finished game records.
type LeaderboardRepo struct {
	db *sql.DB
}

// NewLeaderboardRepo creates a leaderboard backed by the given pool.
func NewLeaderboardRepo(db *sql.DB) *LeaderboardRepo {
	return &LeaderboardRepo{db: db}
}

// Record stores one finished game.
func (r *LeaderboardRepo) Record(ctx context.Context, entry repository.LeaderboardEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leaderboard (player_name, score, won, mode, played_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.PlayerName, entry.Score, entry.Won, entry.Mode, entry.PlayedAt)
	if err != nil {
		return fmt.Errorf("record leaderboard entry: %w", err)
	}
	return nil
}

// Top returns the highest-scoring finished games, newest first among
// equal scores.
func (r *LeaderboardRepo) Top(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_name, score, won, mode, played_at
		FROM leaderboard
		ORDER BY score DESC, played_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []repository.LeaderboardEntry
	for rows.Next() {
		var e repository.LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.Score, &e.Won, &e.Mode, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}
	return entries, nil
}
