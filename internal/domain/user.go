package domain

import (
	"time"
)

// User represents an account holder. After the session middleware has
// resolved a request's credentials, the matching User is the principal
// attached to the request context.
type User struct {
	ID            string    `json:"id"` // UUID string, primary key
	Name          string    `json:"name"`
	Email         string    `json:"email"`             // Should be unique
	EmailVerified bool      `json:"emailVerified"`
	PasswordHash  string    `json:"-"` // Never expose this via JSON
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
