package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPractitionerID identifies the single practitioner of a clinic.
const DefaultPractitionerID = "practitioner"

// MinPasscodeLength is the shortest accepted passcode.
const MinPasscodeLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid passcode")
	ErrWeakPasscode       = fmt.Errorf("passcode must be at least %d characters", MinPasscodeLength)
)

// PasscodeAuthenticator checks a passcode against a bcrypt hash.
type PasscodeAuthenticator struct {
	hash           []byte
	practitionerID string
}

// NewPasscodeAuthenticator creates an authenticator for the given bcrypt hash,
// as produced by HashPasscode.
func NewPasscodeAuthenticator(hash string) (*PasscodeAuthenticator, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid passcode hash: %w", err)
	}
	return &PasscodeAuthenticator{
		hash:           []byte(hash),
		practitionerID: DefaultPractitionerID,
	}, nil
}

// HashPasscode validates and hashes a passcode for storage in configuration.
func HashPasscode(passcode string) (string, error) {
	if len(passcode) < MinPasscodeLength {
		return "", ErrWeakPasscode
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hashed), nil
}

// ValidateCredential checks if the passcode meets minimum requirements.
func (a *PasscodeAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasscodeLength {
		return ErrWeakPasscode
	}
	return nil
}

// Authenticate compares the passcode with the configured hash.
func (a *PasscodeAuthenticator) Authenticate(ctx context.Context, credential string) (*Practitioner, error) {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Practitioner{ID: a.practitionerID}, nil
}
