package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS trivia_eligibility (
	user_id TEXT PRIMARY KEY,
	last_played TEXT NOT NULL
)`

// Open opens (or creates) the SQLite database at path and ensures the
// eligibility schema exists.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create eligibility schema: %w", err)
	}
	return nil
}

// EligibilityStore is a SQLite-backed app.EligibilityStore. Timestamps are
// stored as RFC3339 text so the local-time calendar comparison round-trips
// without driver timezone surprises.
type EligibilityStore struct {
	db *sql.DB
}

func NewEligibilityStore(db *sql.DB) *EligibilityStore {
	return &EligibilityStore{db: db}
}

func (s *EligibilityStore) LastPlayed(ctx context.Context, userID string) (time.Time, bool, error) {
	query, args, err := sq.Select("last_played").
		From("trivia_eligibility").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return time.Time{}, false, err
	}

	var raw string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last played: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last played: %w", err)
	}
	return t, true, nil
}

func (s *EligibilityStore) MarkPlayed(ctx context.Context, userID string, playedAt time.Time) error {
	query, args, err := sq.Insert("trivia_eligibility").
		Columns("user_id", "last_played").
		Values(userID, playedAt.Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET last_played = excluded.last_played").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert last played: %w", err)
	}
	return nil
}
