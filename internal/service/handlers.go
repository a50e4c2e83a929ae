package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clinicbook/internal/connectivity"
	"github.com/mmynk/clinicbook/internal/middleware"
	"github.com/mmynk/clinicbook/internal/models"
)

// PracticeService implements the PracticeService RPC interface on top of a Practice.
type PracticeService struct {
	practice *Practice
	monitor  *connectivity.Monitor
	logger   *slog.Logger
}

// NewPracticeService creates the RPC service. monitor may be nil, in which
// case SetConnectivity only reports the current sync status.
func NewPracticeService(practice *Practice, monitor *connectivity.Monitor, logger *slog.Logger) *PracticeService {
	return &PracticeService{
		practice: practice,
		monitor:  monitor,
		logger:   logger,
	}
}

// NewPracticeServiceHandler builds an HTTP handler serving every procedure of
// svc. It returns the path prefix to mount the handler on.
func NewPracticeServiceHandler(svc *PracticeService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	route := func(method string) string { return Procedure(PracticeServiceName, method) }

	mux := http.NewServeMux()
	mux.Handle(route("ListClients"), connect.NewUnaryHandler(route("ListClients"), svc.ListClients, opts...))
	mux.Handle(route("GetClient"), connect.NewUnaryHandler(route("GetClient"), svc.GetClient, opts...))
	mux.Handle(route("SearchClients"), connect.NewUnaryHandler(route("SearchClients"), svc.SearchClients, opts...))
	mux.Handle(route("SaveClient"), connect.NewUnaryHandler(route("SaveClient"), svc.SaveClient, opts...))
	mux.Handle(route("DeleteClient"), connect.NewUnaryHandler(route("DeleteClient"), svc.DeleteClient, opts...))
	mux.Handle(route("ListAppointments"), connect.NewUnaryHandler(route("ListAppointments"), svc.ListAppointments, opts...))
	mux.Handle(route("ScheduleAppointment"), connect.NewUnaryHandler(route("ScheduleAppointment"), svc.ScheduleAppointment, opts...))
	mux.Handle(route("UpdateAppointment"), connect.NewUnaryHandler(route("UpdateAppointment"), svc.UpdateAppointment, opts...))
	mux.Handle(route("SetAppointmentStatus"), connect.NewUnaryHandler(route("SetAppointmentStatus"), svc.SetAppointmentStatus, opts...))
	mux.Handle(route("RescheduleAppointment"), connect.NewUnaryHandler(route("RescheduleAppointment"), svc.RescheduleAppointment, opts...))
	mux.Handle(route("DeleteAppointment"), connect.NewUnaryHandler(route("DeleteAppointment"), svc.DeleteAppointment, opts...))
	mux.Handle(route("ListPayments"), connect.NewUnaryHandler(route("ListPayments"), svc.ListPayments, opts...))
	mux.Handle(route("AddPayment"), connect.NewUnaryHandler(route("AddPayment"), svc.AddPayment, opts...))
	mux.Handle(route("GetTotals"), connect.NewUnaryHandler(route("GetTotals"), svc.GetTotals, opts...))
	mux.Handle(route("GetSyncStatus"), connect.NewUnaryHandler(route("GetSyncStatus"), svc.GetSyncStatus, opts...))
	mux.Handle(route("SetConnectivity"), connect.NewUnaryHandler(route("SetConnectivity"), svc.SetConnectivity, opts...))

	return "/" + PracticeServiceName + "/", mux
}

func (s *PracticeService) ListClients(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ClientsResponse], error) {
	return connect.NewResponse(&ClientsResponse{Clients: nonNil(s.practice.Clients())}), nil
}

// GetClient returns one client with its progress and upcoming sessions.
func (s *PracticeService) GetClient(ctx context.Context, req *connect.Request[ClientRequest]) (*connect.Response[ClientResponse], error) {
	if req.Msg.ClientID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("client_id is required"))
	}
	overview, err := s.practice.Overview(req.Msg.ClientID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ClientResponse{Client: overview}), nil
}

func (s *PracticeService) SearchClients(ctx context.Context, req *connect.Request[SearchClientsRequest]) (*connect.Response[ClientsResponse], error) {
	return connect.NewResponse(&ClientsResponse{Clients: nonNil(s.practice.SearchClients(req.Msg.Term))}), nil
}

// SaveClient creates the client when it has no ID and updates it otherwise.
func (s *PracticeService) SaveClient(ctx context.Context, req *connect.Request[SaveClientRequest]) (*connect.Response[ClientResponse], error) {
	var (
		saved models.Client
		err   error
	)
	if req.Msg.Client.ID == "" {
		saved, err = s.practice.AddClient(ctx, req.Msg.Client)
	} else {
		saved, err = s.practice.UpdateClient(ctx, req.Msg.Client)
	}
	if err != nil {
		return nil, toConnectError(err)
	}

	overview, err := s.practice.Overview(saved.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ClientResponse{Client: overview}), nil
}

func (s *PracticeService) DeleteClient(ctx context.Context, req *connect.Request[ClientRequest]) (*connect.Response[Empty], error) {
	if err := s.practice.DeleteClient(ctx, req.Msg.ClientID); err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("Client removed", "client_id", req.Msg.ClientID, "practitioner_id", middleware.GetPractitionerID(ctx))
	return connect.NewResponse(&Empty{}), nil
}

func (s *PracticeService) ListAppointments(ctx context.Context, req *connect.Request[ListAppointmentsRequest]) (*connect.Response[AppointmentsResponse], error) {
	appts := s.practice.Appointments(AppointmentFilter{
		ClientID: req.Msg.ClientID,
		From:     req.Msg.From,
		To:       req.Msg.To,
	})
	return connect.NewResponse(&AppointmentsResponse{Appointments: nonNil(appts)}), nil
}

func (s *PracticeService) ScheduleAppointment(ctx context.Context, req *connect.Request[ScheduleAppointmentRequest]) (*connect.Response[AppointmentResponse], error) {
	a, err := s.practice.ScheduleAppointment(ctx, NewAppointment{
		ClientID:      req.Msg.ClientID,
		Date:          req.Msg.Date,
		StartTime:     req.Msg.StartTime,
		EndTime:       req.Msg.EndTime,
		SessionType:   req.Msg.SessionType,
		Notes:         req.Msg.Notes,
		Cost:          req.Msg.Cost,
		Status:        req.Msg.Status,
		SessionNumber: req.Msg.SessionNumber,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AppointmentResponse{Appointment: a}), nil
}

func (s *PracticeService) UpdateAppointment(ctx context.Context, req *connect.Request[UpdateAppointmentRequest]) (*connect.Response[AppointmentResponse], error) {
	a, err := s.practice.UpdateAppointment(ctx, req.Msg.Appointment)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AppointmentResponse{Appointment: a}), nil
}

func (s *PracticeService) SetAppointmentStatus(ctx context.Context, req *connect.Request[SetAppointmentStatusRequest]) (*connect.Response[AppointmentResponse], error) {
	a, err := s.practice.SetAppointmentStatus(ctx, req.Msg.AppointmentID, req.Msg.Status)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AppointmentResponse{Appointment: a}), nil
}

func (s *PracticeService) RescheduleAppointment(ctx context.Context, req *connect.Request[RescheduleAppointmentRequest]) (*connect.Response[AppointmentResponse], error) {
	a, err := s.practice.RescheduleAppointment(ctx, req.Msg.AppointmentID, req.Msg.Date, req.Msg.StartTime, req.Msg.EndTime)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AppointmentResponse{Appointment: a}), nil
}

func (s *PracticeService) DeleteAppointment(ctx context.Context, req *connect.Request[AppointmentRequest]) (*connect.Response[Empty], error) {
	if err := s.practice.DeleteAppointment(ctx, req.Msg.AppointmentID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *PracticeService) ListPayments(ctx context.Context, req *connect.Request[ListPaymentsRequest]) (*connect.Response[PaymentsResponse], error) {
	return connect.NewResponse(&PaymentsResponse{Payments: nonNil(s.practice.Payments(req.Msg.ClientID))}), nil
}

func (s *PracticeService) AddPayment(ctx context.Context, req *connect.Request[AddPaymentRequest]) (*connect.Response[PaymentResponse], error) {
	pay, err := s.practice.AddPayment(ctx, req.Msg.Payment)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PaymentResponse{Payment: pay}), nil
}

// GetTotals returns the practice-wide billing summary.
func (s *PracticeService) GetTotals(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[TotalsResponse], error) {
	return connect.NewResponse(totalsResponse(s.practice.Totals())), nil
}

func (s *PracticeService) GetSyncStatus(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[SyncStatusResponse], error) {
	return connect.NewResponse(syncStatusResponse(s.practice.SyncStatus())), nil
}

// SetConnectivity records the online state reported by the browser. Going
// back online triggers a resync through the practice's connectivity watcher,
// so the returned status may still list pending collections.
func (s *PracticeService) SetConnectivity(ctx context.Context, req *connect.Request[SetConnectivityRequest]) (*connect.Response[SyncStatusResponse], error) {
	if s.monitor != nil && s.monitor.Set(req.Msg.Online) {
		s.logger.Info("Connectivity reported by client", "online", req.Msg.Online)
	}
	return connect.NewResponse(syncStatusResponse(s.practice.SyncStatus())), nil
}

func syncStatusResponse(st SyncStatus) *SyncStatusResponse {
	return &SyncStatusResponse{Online: st.Online, Pending: nonNil(st.Pending)}
}

// toConnectError maps practice errors onto Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrAppointmentNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrInvalidClient), errors.Is(err, ErrInvalidAppointment), errors.Is(err, ErrInvalidPayment):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
