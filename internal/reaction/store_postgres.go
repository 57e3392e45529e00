package reaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"confide/internal/platform/postgres"
	"confide/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID) (*Record, error) {
	var r Record
	err := s.db.QueryRowContext(ctx,
		`SELECT subject_kind, subject_id, user_id, emoji, created_at, updated_at
		 FROM reactions WHERE subject_kind = $1 AND subject_id = $2 AND user_id = $3`,
		kind, subjectID, userID,
	).Scan(&r.SubjectKind, &r.SubjectID, &r.UserID, &r.Emoji, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reaction: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) Create(ctx context.Context, r *Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reactions (subject_kind, subject_id, user_id, emoji, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.SubjectKind, r.SubjectID, r.UserID, r.Emoji, r.CreatedAt, r.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create reaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateEmoji(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID, emoji string, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reactions SET emoji = $4, updated_at = $5
		 WHERE subject_kind = $1 AND subject_id = $2 AND user_id = $3`,
		kind, subjectID, userID, emoji, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reaction: %w", err)
	}
	return postgres.RequireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE subject_kind = $1 AND subject_id = $2 AND user_id = $3`,
		kind, subjectID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	return postgres.RequireRow(res)
}

func (s *PostgresStore) DeleteBySubject(ctx context.Context, kind SubjectKind, subjectID uuid.UUID) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE subject_kind = $1 AND subject_id = $2`,
		kind, subjectID,
	)
	if err != nil {
		return 0, fmt.Errorf("purge reactions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
