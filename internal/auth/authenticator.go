package auth

import (
	"context"
)

// Practitioner is the authenticated owner of the practice.
type Practitioner struct {
	ID string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping the passcode check for another method
// without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the credential and returns the practitioner if successful.
	Authenticate(ctx context.Context, credential string) (*Practitioner, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
