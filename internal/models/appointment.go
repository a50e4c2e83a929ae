package models

import "fmt"

// Layouts of the textual date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment represents a scheduled or historical session.
type Appointment struct {
	// ID is the unique identifier for the appointment (UUID format).
	ID string `json:"id"`

	// ClientID references the owning client.
	ClientID string `json:"clientId"`

	// ClientName is the client's display name when the appointment was scheduled.
	ClientName string `json:"clientName"`

	// Date is the calendar date (YYYY-MM-DD).
	Date string `json:"date"`

	// StartTime and EndTime are wall-clock times (HH:MM).
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	// SessionType is the service or category label (e.g. "Individual Therapy").
	SessionType string `json:"sessionType"`

	// Cost is the charge attributable to this appointment. Never negative.
	Cost float64 `json:"cost"`

	Status Status `json:"status"`
	Notes  string `json:"notes"`

	// SessionNumber orders the appointment within the client's history.
	SessionNumber int `json:"sessionNumber"`
}

// Appointments is the persisted appointment collection.
type Appointments []Appointment

// Validate reports whether every record has the structure the application relies on.
func (as Appointments) Validate() error {
	seen := make(map[string]bool, len(as))
	for i, a := range as {
		if a.ID == "" {
			return fmt.Errorf("appointment #%d: %w", i, ErrMissingID)
		}
		if seen[a.ID] {
			return fmt.Errorf("appointment %s: %w", a.ID, ErrDuplicateID)
		}
		seen[a.ID] = true
		if !a.Status.Valid() {
			return fmt.Errorf("appointment %s: %w: %q", a.ID, ErrUnknownStatus, a.Status)
		}
	}
	return nil
}
