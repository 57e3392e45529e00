package reaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the reaction ledger. The (kind, subject, user) key is unique;
// Create on an existing key returns sentinel.ErrConflict so the caller can
// reinterpret a lost race as an update.
type Store interface {
	Find(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID) (*Record, error)
	Create(ctx context.Context, r *Record) error
	UpdateEmoji(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID, emoji string, updatedAt time.Time) error
	Delete(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID) error
	// DeleteBySubject removes every record for one subject and returns how
	// many were removed. An empty ledger is a no-op, not an error.
	DeleteBySubject(ctx context.Context, kind SubjectKind, subjectID uuid.UUID) (int, error)
}
