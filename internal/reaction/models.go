package reaction

import (
	"time"

	"github.com/google/uuid"
)

// SubjectKind names the entity a reaction attaches to.
type SubjectKind string

const (
	SubjectConfession SubjectKind = "confession"
	SubjectComment    SubjectKind = "comment"
)

// Action describes what an upsert did to the caller's ledger record.
type Action string

const (
	ActionAdded     Action = "added"
	ActionUpdated   Action = "updated"
	ActionRemoved   Action = "removed"
	ActionUnchanged Action = "unchanged"
)

// Record is one ledger entry. At most one exists per (kind, subject, user);
// it is the source of truth the aggregate maps are derived from.
type Record struct {
	SubjectKind SubjectKind `json:"subjectKind"`
	SubjectID   uuid.UUID   `json:"subjectId"`
	UserID      uuid.UUID   `json:"userId"`
	Emoji       string      `json:"emoji"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Result reports the outcome of an upsert. OldEmoji is set only for updated
// and removed actions.
type Result struct {
	Action   Action  `json:"action"`
	Emoji    string  `json:"emoji,omitempty"`
	OldEmoji string  `json:"oldEmoji,omitempty"`
	Record   *Record `json:"record,omitempty"`
}
