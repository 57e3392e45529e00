package category

import (
	"time"

	"github.com/google/uuid"
)

// Category names broadcast topics and group confessions on the read side.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
