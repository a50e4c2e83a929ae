package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHashPasscode(t *testing.T) {
	tests := []struct {
		name     string
		passcode string
		wantErr  error
	}{
		{name: "long enough", passcode: "correct-horse", wantErr: nil},
		{name: "exactly minimum", passcode: "12345678", wantErr: nil},
		{name: "too short", passcode: "1234567", wantErr: ErrWeakPasscode},
		{name: "empty", passcode: "", wantErr: ErrWeakPasscode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPasscode(tt.passcode)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HashPasscode() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !strings.HasPrefix(hash, "$2") {
				t.Errorf("HashPasscode() = %q, want a bcrypt hash", hash)
			}
		})
	}
}

func TestPasscodeAuthenticator(t *testing.T) {
	hash, err := HashPasscode("correct-horse")
	if err != nil {
		t.Fatalf("HashPasscode() error = %v", err)
	}
	a, err := NewPasscodeAuthenticator(hash)
	if err != nil {
		t.Fatalf("NewPasscodeAuthenticator() error = %v", err)
	}

	p, err := a.Authenticate(context.Background(), "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if p.ID != DefaultPractitionerID {
		t.Errorf("practitioner ID = %q, want %q", p.ID, DefaultPractitionerID)
	}

	if _, err := a.Authenticate(context.Background(), "battery-staple"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate(wrong) error = %v, want %v", err, ErrInvalidCredentials)
	}

	if err := a.ValidateCredential("short"); !errors.Is(err, ErrWeakPasscode) {
		t.Errorf("ValidateCredential(short) error = %v, want %v", err, ErrWeakPasscode)
	}
}

func TestNewPasscodeAuthenticatorRejectsBadHash(t *testing.T) {
	if _, err := NewPasscodeAuthenticator("not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, expiresAt, err := m.Generate(&Practitioner{ID: "dr-demir"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Errorf("expiry in %v, want about one hour", until)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.PractitionerID != "dr-demir" {
		t.Errorf("PractitionerID = %q, want dr-demir", claims.PractitionerID)
	}
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	valid, _, err := m.Generate(&Practitioner{ID: "dr-demir"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	expired, _, err := NewJWTManager("test-secret", -time.Minute).Generate(&Practitioner{ID: "dr-demir"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	otherKey, _, err := NewJWTManager("other-secret", time.Hour).Generate(&Practitioner{ID: "dr-demir"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.token"},
		{name: "expired", token: expired},
		{name: "wrong key", token: otherKey},
		{name: "tampered", token: tamper(valid)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

// tamper changes one character inside the signature segment.
func tamper(token string) string {
	b := []byte(token)
	i := len(b) - 5
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
