package comment

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to exactly one confession. The reactions aggregate is
// derived from the ledger and only ever written through AdjustReaction.
type Comment struct {
	ID              uuid.UUID      `json:"id"`
	ConfessionID    uuid.UUID      `json:"confessionId"`
	Text            string         `json:"text"`
	Username        string         `json:"username"`
	AuthorID        *uuid.UUID     `json:"authorId,omitempty"`
	QuotedCommentID *uuid.UUID     `json:"quotedCommentId,omitempty"`
	QuotedComment   *QuotedPreview `json:"quotedComment,omitempty"`
	Reactions       map[string]int `json:"reactions"`
	IsReported      bool           `json:"isReported"`
	ReportCount     int            `json:"reportCount"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// QuotedPreview is the read-time enrichment of a quote reference. It is
// resolved when listing; a quote whose target no longer exists is omitted.
type QuotedPreview struct {
	Text     string `json:"text"`
	Username string `json:"username"`
}

// Page is one slice of a confession's comment thread, newest first.
type Page struct {
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	Size     int        `json:"size"`
	Comments []*Comment `json:"comments"`
}
