package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a login identity.
//
// The admin flag and nickname are the profile attributes a session carries.
// They are read once at login and signed into the session token.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is shown in the UI.
	DisplayName string

	// Nickname links the login to a member handle; may be empty.
	Nickname string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// IsAdmin grants access to every write operation.
	IsAdmin bool

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser builds a non-admin user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
