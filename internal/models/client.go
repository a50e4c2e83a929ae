package models

import (
	"errors"
	"fmt"
	"strings"
)

// Ledger holds the figures derived from a client's appointments and payments.
type Ledger struct {
	// CompletedSessions is the number of appointments with status completed.
	CompletedSessions int `json:"completedSessions"`

	// TotalCharges is the sum of the cost of every appointment of the client,
	// whatever its status.
	TotalCharges float64 `json:"totalCharges"`

	// TotalPaid is the sum of the amounts of the client's payments.
	TotalPaid float64 `json:"totalPaid"`

	// Balance is TotalCharges - TotalPaid. Negative means the client is in credit.
	Balance float64 `json:"balance"`
}

// Client represents a person receiving services.
type Client struct {
	// ID is the unique identifier for the client (UUID format).
	ID string `json:"id"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`

	// BirthDate is an optional calendar date (YYYY-MM-DD).
	BirthDate string `json:"birthDate"`

	// RegistrationDate is when the client was registered, as an RFC 3339
	// timestamp or a plain YYYY-MM-DD date.
	RegistrationDate string `json:"registrationDate"`

	Notes string `json:"notes"`

	// SessionRate is the price of one session. Never negative.
	SessionRate float64 `json:"sessionRate"`

	// TotalSessions is the number of planned sessions. Always positive.
	TotalSessions int `json:"totalSessions"`

	// Ledger is derived; see the package documentation.
	Ledger
}

// FullName returns "First Last" without surrounding blanks.
func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Clients is the persisted client collection.
type Clients []Client

// Validate reports whether every record has the structure the application relies on.
func (cs Clients) Validate() error {
	seen := make(map[string]bool, len(cs))
	for i, c := range cs {
		if c.ID == "" {
			return fmt.Errorf("client #%d: %w", i, ErrMissingID)
		}
		if seen[c.ID] {
			return fmt.Errorf("client %s: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = true
	}
	return nil
}

var (
	ErrMissingID     = errors.New("missing id")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUnknownStatus = errors.New("unknown appointment status")
	ErrUnknownMethod = errors.New("unknown payment method")
)
