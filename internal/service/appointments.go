package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/clinicbook/internal/models"
	"github.com/mmynk/clinicbook/internal/storage"
)

// NewAppointment holds the fields of an appointment to schedule.
type NewAppointment struct {
	ClientID    string
	Date        string
	StartTime   string
	EndTime     string
	SessionType string
	Notes       string

	// Cost defaults to the client's session rate when nil.
	Cost *float64

	// Status defaults to scheduled.
	Status models.Status

	// SessionNumber defaults to the client's appointment count plus one.
	SessionNumber int
}

// AppointmentFilter selects appointments. Zero fields match everything;
// From and To are inclusive YYYY-MM-DD bounds.
type AppointmentFilter struct {
	ClientID string
	From     string
	To       string
}

func (f AppointmentFilter) match(a models.Appointment) bool {
	if f.ClientID != "" && a.ClientID != f.ClientID {
		return false
	}
	if f.From != "" && a.Date < f.From {
		return false
	}
	if f.To != "" && a.Date > f.To {
		return false
	}
	return true
}

// Appointments returns the matching appointments ordered by date and start time.
func (p *Practice) Appointments(filter AppointmentFilter) []models.Appointment {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []models.Appointment
	for _, a := range p.appointments {
		if filter.match(a) {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out
}

// ScheduleAppointment creates an appointment for an existing client and
// captures the client's current display name on it.
func (p *Practice) ScheduleAppointment(ctx context.Context, in NewAppointment) (models.Appointment, error) {
	if in.Status == "" {
		in.Status = models.StatusScheduled
	}
	if in.Cost != nil && *in.Cost < 0 {
		return models.Appointment{}, fmt.Errorf("%w: cost must not be negative", ErrInvalidAppointment)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.clientIndex(in.ClientID)
	if i < 0 {
		return models.Appointment{}, fmt.Errorf("%w: %s", ErrClientNotFound, in.ClientID)
	}
	client := p.clients[i]

	a := models.Appointment{
		ID:            p.newID(),
		ClientID:      client.ID,
		ClientName:    client.FullName(),
		Date:          in.Date,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		SessionType:   strings.TrimSpace(in.SessionType),
		Cost:          client.SessionRate,
		Status:        in.Status,
		Notes:         in.Notes,
		SessionNumber: in.SessionNumber,
	}
	if in.Cost != nil {
		a.Cost = *in.Cost
	}
	if a.SessionNumber == 0 {
		a.SessionNumber = p.appointmentCount(client.ID) + 1
	}
	if err := validateAppointment(a); err != nil {
		return models.Appointment{}, err
	}

	p.appointments = append(p.appointments, a)
	p.refresh(a.ClientID)
	p.persist(ctx, storage.KeyAppointments, storage.KeyClients)

	p.logger.Info("Appointment scheduled", "appointment_id", a.ID, "client_id", a.ClientID, "date", a.Date)
	return a, nil
}

// UpdateAppointment replaces an appointment. Moving it to another client
// recaptures the display name and recomputes both clients.
func (p *Practice) UpdateAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	if err := validateAppointment(a); err != nil {
		return models.Appointment{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.appointmentIndex(a.ID)
	if i < 0 {
		return models.Appointment{}, fmt.Errorf("%w: %s", ErrAppointmentNotFound, a.ID)
	}
	previous := p.appointments[i]

	if a.ClientID != previous.ClientID {
		ci := p.clientIndex(a.ClientID)
		if ci < 0 {
			return models.Appointment{}, fmt.Errorf("%w: %s", ErrClientNotFound, a.ClientID)
		}
		a.ClientName = p.clients[ci].FullName()
	} else {
		a.ClientName = previous.ClientName
	}

	p.appointments[i] = a
	p.refresh(previous.ClientID)
	if a.ClientID != previous.ClientID {
		p.refresh(a.ClientID)
	}
	p.persist(ctx, storage.KeyAppointments, storage.KeyClients)

	p.logger.Info("Appointment updated", "appointment_id", a.ID, "client_id", a.ClientID)
	return a, nil
}

// SetAppointmentStatus changes the status of an appointment.
func (p *Practice) SetAppointmentStatus(ctx context.Context, id string, status models.Status) (models.Appointment, error) {
	if !status.Valid() {
		return models.Appointment{}, fmt.Errorf("%w: %w %q", ErrInvalidAppointment, models.ErrUnknownStatus, status)
	}
	return p.modifyAppointment(ctx, id, func(a *models.Appointment) error {
		a.Status = status
		return nil
	})
}

// RescheduleAppointment moves an appointment to a new date and time slot.
func (p *Practice) RescheduleAppointment(ctx context.Context, id, date, start, end string) (models.Appointment, error) {
	return p.modifyAppointment(ctx, id, func(a *models.Appointment) error {
		a.Date, a.StartTime, a.EndTime = date, start, end
		return validateAppointment(*a)
	})
}

// DeleteAppointment removes an appointment.
func (p *Practice) DeleteAppointment(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.appointmentIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	clientID := p.appointments[i].ClientID
	p.appointments = append(p.appointments[:i], p.appointments[i+1:]...)
	p.refresh(clientID)
	p.persist(ctx, storage.KeyAppointments, storage.KeyClients)

	p.logger.Info("Appointment deleted", "appointment_id", id, "client_id", clientID)
	return nil
}

// modifyAppointment applies change to a copy of the appointment and commits
// it only when change succeeds.
func (p *Practice) modifyAppointment(ctx context.Context, id string, change func(*models.Appointment) error) (models.Appointment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.appointmentIndex(id)
	if i < 0 {
		return models.Appointment{}, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	a := p.appointments[i]
	if err := change(&a); err != nil {
		return models.Appointment{}, err
	}

	p.appointments[i] = a
	p.refresh(a.ClientID)
	p.persist(ctx, storage.KeyAppointments, storage.KeyClients)

	p.logger.Info("Appointment changed", "appointment_id", a.ID, "status", a.Status, "date", a.Date)
	return a, nil
}

func (p *Practice) appointmentIndex(id string) int {
	for i, a := range p.appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (p *Practice) appointmentCount(clientID string) int {
	n := 0
	for _, a := range p.appointments {
		if a.ClientID == clientID {
			n++
		}
	}
	return n
}

func validateAppointment(a models.Appointment) error {
	switch {
	case a.ClientID == "":
		return fmt.Errorf("%w: client is required", ErrInvalidAppointment)
	case !validDate(a.Date):
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidAppointment, a.Date)
	case !validTime(a.StartTime) || !validTime(a.EndTime):
		return fmt.Errorf("%w: times must be HH:MM", ErrInvalidAppointment)
	case a.Cost < 0:
		return fmt.Errorf("%w: cost must not be negative", ErrInvalidAppointment)
	case !a.Status.Valid():
		return fmt.Errorf("%w: %w %q", ErrInvalidAppointment, models.ErrUnknownStatus, a.Status)
	case a.SessionNumber < 0:
		return fmt.Errorf("%w: session number must not be negative", ErrInvalidAppointment)
	}
	return nil
}
