package auth

import (
	"context"

	"github.com/mmynk/clubhouse/internal/models"
)

// Registration is what a new user supplies at sign-up.
type Registration struct {
	Email       string
	DisplayName string
	Nickname    string
	Credential  string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new, non-admin user account.
	Register(ctx context.Context, r Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
