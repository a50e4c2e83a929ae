package models

import "fmt"

// Method is how a payment was made.
type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
)

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer:
		return true
	}
	return false
}

// Payment represents money received from a client.
// Payments are never edited once recorded.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	// ClientID references the paying client.
	ClientID string `json:"clientId"`

	// Amount is the amount received. Always positive.
	Amount float64 `json:"amount"`

	// Date is the calendar date of the payment (YYYY-MM-DD).
	Date string `json:"date"`

	Method Method `json:"method"`

	// Reference is an optional external reference (receipt, transfer ID).
	Reference string `json:"reference,omitempty"`

	// Description is an optional free-text note.
	Description string `json:"description,omitempty"`
}

// Payments is the persisted payment collection.
type Payments []Payment

// Validate reports whether every record has the structure the application relies on.
func (ps Payments) Validate() error {
	seen := make(map[string]bool, len(ps))
	for i, p := range ps {
		if p.ID == "" {
			return fmt.Errorf("payment #%d: %w", i, ErrMissingID)
		}
		if seen[p.ID] {
			return fmt.Errorf("payment %s: %w", p.ID, ErrDuplicateID)
		}
		seen[p.ID] = true
		if !p.Method.Valid() {
			return fmt.Errorf("payment %s: %w: %q", p.ID, ErrUnknownMethod, p.Method)
		}
	}
	return nil
}
