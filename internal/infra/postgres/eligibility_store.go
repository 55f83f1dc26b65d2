package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// EligibilityStore is a Postgres-backed app.EligibilityStore. The table is
// created by the trivia_eligibility migration.
type EligibilityStore struct {
	pool *pgxpool.Pool
}

func NewEligibilityStore(pool *pgxpool.Pool) *EligibilityStore {
	return &EligibilityStore{pool: pool}
}

func (s *EligibilityStore) LastPlayed(ctx context.Context, userID string) (time.Time, bool, error) {
	var t time.Time
	err := s.pool.QueryRow(ctx, `SELECT last_played FROM trivia_eligibility WHERE user_id=$1`, userID).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last played: %w", err)
	}
	return t, true, nil
}

func (s *EligibilityStore) MarkPlayed(ctx context.Context, userID string, playedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trivia_eligibility (user_id, last_played)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_played = EXCLUDED.last_played
	`, userID, playedAt)
	if err != nil {
		return fmt.Errorf("upsert last played: %w", err)
	}
	return nil
}
