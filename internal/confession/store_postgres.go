package confession

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

// PostgresStore persists confessions. Aggregate updates are single-row UPDATE
// statements computed inside the database, so concurrent adjusters interleave
// without ever overwriting each other's counts.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const confessionColumns = `id, text, longitude, latitude, address, category, author_id,
	(SELECT username FROM users WHERE users.id = confessions.author_id),
	reactions, comments_count, is_reported, report_count, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *Confession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO confessions
		 (id, text, longitude, latitude, address, category, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Text, c.Location.Longitude, c.Location.Latitude,
		c.Address, c.Category, c.AuthorID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create confession: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Confession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+confessionColumns+` FROM confessions WHERE id = $1`, id)
	c, err := scanConfession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find confession: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*Confession, int, error) {
	where := `WHERE ($1 = '' OR category = $1) AND ($2::uuid IS NULL OR author_id = $2)`

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM confessions `+where, f.Category, f.AuthorID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count confessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+confessionColumns+` FROM confessions `+where+`
		 ORDER BY created_at DESC OFFSET $3 LIMIT $4`,
		f.Category, f.AuthorID, (f.Page-1)*f.Size, f.Size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list confessions: %w", err)
	}
	defer rows.Close()

	out := []*Confession{}
	for rows.Next() {
		c, err := scanConfession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan confession: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, c *Confession) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE confessions SET text = $2, category = $3, address = $4, updated_at = $5
		 WHERE id = $1`,
		c.ID, c.Text, c.Category, c.Address, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update confession: %w", err)
	}
	return postgres.RequireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM confessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete confession: %w", err)
	}
	return postgres.RequireRow(res)
}

func (s *PostgresStore) Nearby(ctx context.Context, lon, lat, maxMeters float64) ([]*Confession, error) {
	// Haversine in SQL keeps the proximity filter inside the storage engine.
	const distance = `2 * 6371000 * asin(sqrt(
		pow(sin(radians(latitude - $2) / 2), 2) +
		cos(radians($2)) * cos(radians(latitude)) *
		pow(sin(radians(longitude - $1) / 2), 2)))`

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+confessionColumns+` FROM confessions
		 WHERE `+distance+` <= $3
		 ORDER BY `+distance+` ASC`,
		lon, lat, maxMeters,
	)
	if err != nil {
		return nil, fmt.Errorf("nearby confessions: %w", err)
	}
	defer rows.Close()

	out := []*Confession{}
	for rows.Next() {
		c, err := scanConfession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan confession: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AdjustReaction(ctx context.Context, id uuid.UUID, oldEmoji, newEmoji string) error {
	return postgres.AdjustReactionJSONB(ctx, s.db, "confessions", id, oldEmoji, newEmoji)
}

func (s *PostgresStore) AdjustComments(ctx context.Context, id uuid.UUID, delta int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE confessions SET comments_count = comments_count + $2 WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust comments count: %w", err)
	}
	return postgres.RequireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfession(row rowScanner) (*Confession, error) {
	var c Confession
	var authorID uuid.NullUUID
	var authorUsername sql.NullString
	var reactions []byte
	err := row.Scan(
		&c.ID, &c.Text, &c.Location.Longitude, &c.Location.Latitude,
		&c.Address, &c.Category, &authorID, &authorUsername,
		&reactions, &c.CommentsCount, &c.IsReported, &c.ReportCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		id := authorID.UUID
		c.AuthorID = &id
	}
	c.AuthorUsername = authorUsername.String
	c.Reactions = map[string]int{}
	if len(reactions) > 0 {
		if err := json.Unmarshal(reactions, &c.Reactions); err != nil {
			return nil, fmt.Errorf("decode reactions: %w", err)
		}
	}
	return &c, nil
}
