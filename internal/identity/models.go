package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is an anonymous account: a generated pseudonym plus an optional
// password hash for clients that want to reclaim the identity later.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Blocked      bool
	CreatedAt    time.Time
}

// Registration is what a successful anonymous sign-up returns.
type Registration struct {
	UserID      uuid.UUID `json:"userId"`
	Username    string    `json:"username"`
	AccessToken string    `json:"accessToken"`
}
