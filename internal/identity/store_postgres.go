package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"confide/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL. The unique index on username is
// the collision check of record; UsernameTaken is only a fast pre-filter for
// the issuer's retry loop.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, blocked, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)`,
		user.ID, user.Username, user.PasswordHash, user.Blocked, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("username taken: %w", err)
	}
	return taken, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	var hash sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, blocked, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Username, &hash, &user.Blocked, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.PasswordHash = hash.String
	return &user, nil
}
