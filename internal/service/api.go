package service

import (
	"encoding/json"

	"github.com/mmynk/clinicbook/internal/calculator"
	"github.com/mmynk/clinicbook/internal/models"
)

// Service names, in the form of the procedure path prefix.
const (
	PracticeServiceName = "clinic.v1.PracticeService"
	AuthServiceName     = "clinic.v1.AuthService"
)

// Procedure returns the Connect procedure path of a method.
func Procedure(service, method string) string {
	return "/" + service + "/" + method
}

// JSONCodec encodes messages as plain JSON. Messages are Go structs, not
// generated protobuf types, so the default protojson codec cannot be used.
type JSONCodec struct{}

func (JSONCodec) Name() string                       { return "json" }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Empty is the message of calls without parameters or results.
type Empty struct{}

type ClientRequest struct {
	ClientID string `json:"clientId"`
}

type SearchClientsRequest struct {
	Term string `json:"term"`
}

type ClientsResponse struct {
	Clients []models.Client `json:"clients"`
}

type SaveClientRequest struct {
	// Client is created when its ID is empty, updated otherwise.
	Client models.Client `json:"client"`
}

type ClientResponse struct {
	Client ClientOverview `json:"client"`
}

type ListAppointmentsRequest struct {
	ClientID string `json:"clientId,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

type AppointmentsResponse struct {
	Appointments []models.Appointment `json:"appointments"`
}

type ScheduleAppointmentRequest struct {
	ClientID      string        `json:"clientId"`
	Date          string        `json:"date"`
	StartTime     string        `json:"startTime"`
	EndTime       string        `json:"endTime"`
	SessionType   string        `json:"sessionType"`
	Notes         string        `json:"notes"`
	Cost          *float64      `json:"cost,omitempty"`
	Status        models.Status `json:"status,omitempty"`
	SessionNumber int           `json:"sessionNumber,omitempty"`
}

type UpdateAppointmentRequest struct {
	Appointment models.Appointment `json:"appointment"`
}

type SetAppointmentStatusRequest struct {
	AppointmentID string        `json:"appointmentId"`
	Status        models.Status `json:"status"`
}

type RescheduleAppointmentRequest struct {
	AppointmentID string `json:"appointmentId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

type AppointmentRequest struct {
	AppointmentID string `json:"appointmentId"`
}

type AppointmentResponse struct {
	Appointment models.Appointment `json:"appointment"`
}

type ListPaymentsRequest struct {
	ClientID string `json:"clientId,omitempty"`
}

type PaymentsResponse struct {
	Payments []models.Payment `json:"payments"`
}

type AddPaymentRequest struct {
	Payment models.Payment `json:"payment"`
}

type PaymentResponse struct {
	Payment models.Payment `json:"payment"`
}

type ClientBalance struct {
	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
	models.Ledger
}

type TotalsResponse struct {
	TotalCharges         float64         `json:"totalCharges"`
	TotalPaid            float64         `json:"totalPaid"`
	Outstanding          float64         `json:"outstanding"`
	Credit               float64         `json:"credit"`
	Clients              []ClientBalance `json:"clients"`
	OrphanedAppointments int             `json:"orphanedAppointments"`
	OrphanedPayments     int             `json:"orphanedPayments"`
}

func totalsResponse(t calculator.Totals) *TotalsResponse {
	resp := &TotalsResponse{
		TotalCharges:         t.TotalCharges,
		TotalPaid:            t.TotalPaid,
		Outstanding:          t.Outstanding,
		Credit:               t.Credit,
		Clients:              make([]ClientBalance, len(t.Clients)),
		OrphanedAppointments: t.OrphanedAppointments,
		OrphanedPayments:     t.OrphanedPayments,
	}
	for i, c := range t.Clients {
		resp.Clients[i] = ClientBalance{ClientID: c.ClientID, ClientName: c.ClientName, Ledger: c.Ledger}
	}
	return resp
}

type SetConnectivityRequest struct {
	Online bool `json:"online"`
}

type SyncStatusResponse struct {
	Online  bool     `json:"online"`
	Pending []string `json:"pending"`
}

type LoginRequest struct {
	Passcode string `json:"passcode"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
