package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCandidateNotFound is returned by stores when a write targets a candidate that does not exist.
var ErrCandidateNotFound = errors.New("candidate not found")

// User is an account row as needed for authentication.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
