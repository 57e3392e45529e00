package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"confide/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// Open connects to PostgreSQL and verifies the connection.
// Returns nil if the URL is empty (Postgres not configured; memory stores apply).
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// EnsureSchema applies the embedded schema. Every statement is idempotent so
// restarts and multiple instances racing at boot are safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// adjustEmojiSQL moves one emoji key by delta entirely inside the database.
// A decrement that would land at or below zero removes the key instead of
// storing a zero.
const adjustEmojiSQL = `
	UPDATE %s SET reactions =
		CASE WHEN COALESCE((reactions->>$2)::int, 0) + $3 <= 0
		     THEN reactions - $2
		     ELSE jsonb_set(reactions, ARRAY[$2], to_jsonb(COALESCE((reactions->>$2)::int, 0) + $3))
		END
	WHERE id = $1`

// AdjustReactionJSONB decrements oldEmoji and increments newEmoji on the
// reactions aggregate of one row in table. Both legs run in a single
// transaction; either emoji may be empty. Confession and comment rows carry
// the same JSONB column, so both stores route through here.
func AdjustReactionJSONB(ctx context.Context, db *sql.DB, table string, id uuid.UUID, oldEmoji, newEmoji string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin adjust reaction: %w", err)
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf(adjustEmojiSQL, table)
	apply := func(emoji string, delta int) error {
		if emoji == "" {
			return nil
		}
		res, err := tx.ExecContext(ctx, stmt, id, emoji, delta)
		if err != nil {
			return fmt.Errorf("adjust reaction %s: %w", table, err)
		}
		return RequireRow(res)
	}
	if err := apply(oldEmoji, -1); err != nil {
		return err
	}
	if err := apply(newEmoji, +1); err != nil {
		return err
	}
	return tx.Commit()
}

// RequireRow maps a zero-row result to ErrNotFound.
func RequireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
