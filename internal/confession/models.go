package confession

import (
	"time"

	"github.com/google/uuid"
)

// Point is a WGS84 coordinate pair, longitude first like GeoJSON.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Confession is the root subject of the system. Reactions and CommentsCount
// are denormalized aggregates: they are written only through AdjustReaction
// and AdjustComments on the store, never assigned directly, so they cannot
// drift from the reaction ledger and the comment table.
type Confession struct {
	ID             uuid.UUID      `json:"id"`
	Text           string         `json:"text"`
	Location       Point          `json:"location"`
	Address        string         `json:"address"`
	Category       string         `json:"category"`
	AuthorID       *uuid.UUID     `json:"authorId,omitempty"`
	AuthorUsername string         `json:"authorUsername,omitempty"`
	Reactions      map[string]int `json:"reactions"`
	CommentsCount  int            `json:"commentsCount"`
	IsReported     bool           `json:"isReported"`
	ReportCount    int            `json:"reportCount"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Page is one slice of a confession listing plus the unsliced total.
type Page struct {
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	Size        int           `json:"size"`
	Confessions []*Confession `json:"confessions"`
}
