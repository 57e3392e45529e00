package comment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"confide/internal/platform/postgres"
	"confide/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const commentColumns = `id, confession_id, text, username, author_id, quoted_comment_id,
	reactions, is_reported, report_count, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments
		 (id, confession_id, text, username, author_id, quoted_comment_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ConfessionID, c.Text, c.Username, c.AuthorID, c.QuotedCommentID,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListByConfession(ctx context.Context, confessionID uuid.UUID, page, size int) ([]*Comment, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM comments WHERE confession_id = $1`, confessionID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	// The self join resolves quote previews in the same pass; a deleted
	// quote target yields NULLs and the preview is omitted.
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.confession_id, c.text, c.username, c.author_id, c.quoted_comment_id,
		        c.reactions, c.is_reported, c.report_count, c.created_at, c.updated_at,
		        q.text, q.username
		 FROM comments c
		 LEFT JOIN comments q ON q.id = c.quoted_comment_id
		 WHERE c.confession_id = $1
		 ORDER BY c.created_at DESC OFFSET $2 LIMIT $3`,
		confessionID, (page-1)*size, size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []*Comment{}
	for rows.Next() {
		var c Comment
		var authorID, quotedID uuid.NullUUID
		var reactions []byte
		var quotedText, quotedUsername sql.NullString
		err := rows.Scan(
			&c.ID, &c.ConfessionID, &c.Text, &c.Username, &authorID, &quotedID,
			&reactions, &c.IsReported, &c.ReportCount, &c.CreatedAt, &c.UpdatedAt,
			&quotedText, &quotedUsername,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		hydrateComment(&c, authorID, quotedID, reactions)
		if quotedID.Valid && quotedText.Valid {
			c.QuotedComment = &QuotedPreview{Text: quotedText.String, Username: quotedUsername.String}
		}
		out = append(out, &c)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, c *Comment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET text = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Text, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return postgres.RequireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return postgres.RequireRow(res)
}

func (s *PostgresStore) AdjustReaction(ctx context.Context, id uuid.UUID, oldEmoji, newEmoji string) error {
	return postgres.AdjustReactionJSONB(ctx, s.db, "comments", id, oldEmoji, newEmoji)
}

func scanComment(row *sql.Row) (*Comment, error) {
	var c Comment
	var authorID, quotedID uuid.NullUUID
	var reactions []byte
	err := row.Scan(
		&c.ID, &c.ConfessionID, &c.Text, &c.Username, &authorID, &quotedID,
		&reactions, &c.IsReported, &c.ReportCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	hydrateComment(&c, authorID, quotedID, reactions)
	return &c, nil
}

func hydrateComment(c *Comment, authorID, quotedID uuid.NullUUID, reactions []byte) {
	if authorID.Valid {
		id := authorID.UUID
		c.AuthorID = &id
	}
	if quotedID.Valid {
		id := quotedID.UUID
		c.QuotedCommentID = &id
	}
	c.Reactions = map[string]int{}
	if len(reactions) > 0 {
		// A malformed aggregate should not fail the whole listing.
		_ = json.Unmarshal(reactions, &c.Reactions)
	}
}
