package reaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SubjectCounters is the per-kind aggregate surface. Implementations must
// apply the adjustment atomically on the stored map, never read-modify-write
// on a loaded copy.
type SubjectCounters interface {
	AdjustReaction(ctx context.Context, id uuid.UUID, oldEmoji, newEmoji string) error
}

// CounterMaintainer is the only writer of the denormalized reactions maps.
// It routes each ledger transition to the owning subject store.
type CounterMaintainer struct {
	confessions SubjectCounters
	comments    SubjectCounters
}

func NewCounterMaintainer(confessions, comments SubjectCounters) *CounterMaintainer {
	return &CounterMaintainer{confessions: confessions, comments: comments}
}

// ApplyDelta moves the subject's aggregate by one ledger transition: oldEmoji
// down one (key removed at zero), newEmoji up one (key created at one).
// Either may be empty. Returns sentinel.ErrNotFound when the subject is gone.
func (m *CounterMaintainer) ApplyDelta(ctx context.Context, kind SubjectKind, subjectID uuid.UUID, oldEmoji, newEmoji string) error {
	switch kind {
	case SubjectConfession:
		return m.confessions.AdjustReaction(ctx, subjectID, oldEmoji, newEmoji)
	case SubjectComment:
		return m.comments.AdjustReaction(ctx, subjectID, oldEmoji, newEmoji)
	default:
		return fmt.Errorf("unknown subject kind %q", kind)
	}
}
