package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clinicbook/internal/auth"
	"github.com/mmynk/clinicbook/internal/connectivity"
	"github.com/mmynk/clinicbook/internal/middleware"
	"github.com/mmynk/clinicbook/internal/models"
	"github.com/mmynk/clinicbook/internal/storage/memory"
)

const testPasscode = "correct-horse"

// setupTestServer serves the practice and auth services over an in-memory backend.
// With secure set, practice calls require a session token.
func setupTestServer(t *testing.T, secure bool) (*Client, *connectivity.Monitor) {
	t.Helper()

	monitor := connectivity.NewMonitor(true)
	t.Cleanup(monitor.Close)
	practice := setupTestPractice(t, memory.New(0), WithMonitor(monitor))

	var practiceOpts []connect.HandlerOption
	mux := http.NewServeMux()
	if secure {
		hash, err := auth.HashPasscode(testPasscode)
		if err != nil {
			t.Fatalf("HashPasscode() error = %v", err)
		}
		authenticator, err := auth.NewPasscodeAuthenticator(hash)
		if err != nil {
			t.Fatalf("NewPasscodeAuthenticator() error = %v", err)
		}
		jwtManager := auth.NewJWTManager("test-secret", time.Hour)
		practiceOpts = append(practiceOpts, connect.WithInterceptors(middleware.RequireAuth(jwtManager)))

		authPath, authHandler := NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, quiet))
		mux.Handle(authPath, authHandler)
	}

	path, handler := NewPracticeServiceHandler(NewPracticeService(practice, monitor, quiet), practiceOpts...)
	mux.Handle(path, handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewClient(http.DefaultClient, server.URL), monitor
}

func call[Req, Res any](t *testing.T, c *Client, method string, req *Req) *Res {
	t.Helper()
	res, err := Call[Req, Res](context.Background(), c, PracticeServiceName, method, req)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return res
}

func TestPracticeServiceFlow(t *testing.T) {
	client, _ := setupTestServer(t, false)

	saved := call[SaveClientRequest, ClientResponse](t, client, "SaveClient", &SaveClientRequest{
		Client: models.Client{FirstName: "Ayşe", LastName: "Yılmaz", Email: "ayse@example.com", SessionRate: 500, TotalSessions: 12},
	})
	id := saved.Client.ID
	if id == "" {
		t.Fatal("SaveClient did not assign an ID")
	}

	done := call[ScheduleAppointmentRequest, AppointmentResponse](t, client, "ScheduleAppointment", &ScheduleAppointmentRequest{
		ClientID: id, Date: "2024-03-07", StartTime: "10:00", EndTime: "11:00", SessionType: "Individual",
	})
	if done.Appointment.Cost != 500 || done.Appointment.ClientName != "Ayşe Yılmaz" {
		t.Errorf("scheduled appointment = %+v", done.Appointment)
	}
	call[SetAppointmentStatusRequest, AppointmentResponse](t, client, "SetAppointmentStatus", &SetAppointmentStatusRequest{
		AppointmentID: done.Appointment.ID, Status: models.StatusCompleted,
	})

	cost := 600.0
	next := call[ScheduleAppointmentRequest, AppointmentResponse](t, client, "ScheduleAppointment", &ScheduleAppointmentRequest{
		ClientID: id, Date: "2024-03-12", StartTime: "10:00", EndTime: "11:00", Cost: &cost,
	})
	call[RescheduleAppointmentRequest, AppointmentResponse](t, client, "RescheduleAppointment", &RescheduleAppointmentRequest{
		AppointmentID: next.Appointment.ID, Date: "2024-03-13", StartTime: "11:00", EndTime: "12:00",
	})

	call[AddPaymentRequest, PaymentResponse](t, client, "AddPayment", &AddPaymentRequest{
		Payment: models.Payment{ClientID: id, Amount: 500, Method: models.MethodCard},
	})

	got := call[ClientRequest, ClientResponse](t, client, "GetClient", &ClientRequest{ClientID: id})
	want := models.Ledger{CompletedSessions: 1, TotalCharges: 1100, TotalPaid: 500, Balance: 600}
	if got.Client.Ledger != want {
		t.Errorf("ledger = %+v, want %+v", got.Client.Ledger, want)
	}
	if got.Client.Progress != 8 || got.Client.UpcomingSessions != 1 {
		t.Errorf("progress/upcoming = %v/%d", got.Client.Progress, got.Client.UpcomingSessions)
	}

	appts := call[ListAppointmentsRequest, AppointmentsResponse](t, client, "ListAppointments", &ListAppointmentsRequest{ClientID: id})
	if len(appts.Appointments) != 2 || appts.Appointments[1].Date != "2024-03-13" {
		t.Errorf("appointments = %+v", appts.Appointments)
	}
	pays := call[ListPaymentsRequest, PaymentsResponse](t, client, "ListPayments", &ListPaymentsRequest{ClientID: id})
	if len(pays.Payments) != 1 {
		t.Errorf("payments = %+v", pays.Payments)
	}

	totals := call[Empty, TotalsResponse](t, client, "GetTotals", &Empty{})
	if totals.Outstanding != 600 || len(totals.Clients) != 1 || totals.Clients[0].Balance != 600 {
		t.Errorf("totals = %+v", totals)
	}

	call[AppointmentRequest, Empty](t, client, "DeleteAppointment", &AppointmentRequest{AppointmentID: next.Appointment.ID})
	got = call[ClientRequest, ClientResponse](t, client, "GetClient", &ClientRequest{ClientID: id})
	if got.Client.TotalCharges != 500 || got.Client.Balance != 0 {
		t.Errorf("ledger after delete = %+v", got.Client.Ledger)
	}

	found := call[SearchClientsRequest, ClientsResponse](t, client, "SearchClients", &SearchClientsRequest{Term: "yılmaz"})
	if len(found.Clients) != 1 {
		t.Errorf("search found %d clients", len(found.Clients))
	}

	call[ClientRequest, Empty](t, client, "DeleteClient", &ClientRequest{ClientID: id})
	list := call[Empty, ClientsResponse](t, client, "ListClients", &Empty{})
	if list.Clients == nil || len(list.Clients) != 0 {
		t.Errorf("clients after delete = %#v, want empty list", list.Clients)
	}
	totals = call[Empty, TotalsResponse](t, client, "GetTotals", &Empty{})
	if totals.OrphanedAppointments != 1 || totals.OrphanedPayments != 1 {
		t.Errorf("orphans = %d/%d", totals.OrphanedAppointments, totals.OrphanedPayments)
	}
}

func TestPracticeServiceErrorCodes(t *testing.T) {
	client, _ := setupTestServer(t, false)
	ctx := context.Background()

	saved := call[SaveClientRequest, ClientResponse](t, client, "SaveClient", &SaveClientRequest{
		Client: models.Client{FirstName: "Ayşe", TotalSessions: 4},
	})

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{"unknown client", func() error {
			_, err := Call[ClientRequest, ClientResponse](ctx, client, PracticeServiceName, "GetClient", &ClientRequest{ClientID: "nope"})
			return err
		}, connect.CodeNotFound},
		{"missing client id", func() error {
			_, err := Call[ClientRequest, ClientResponse](ctx, client, PracticeServiceName, "GetClient", &ClientRequest{})
			return err
		}, connect.CodeInvalidArgument},
		{"invalid client", func() error {
			_, err := Call[SaveClientRequest, ClientResponse](ctx, client, PracticeServiceName, "SaveClient", &SaveClientRequest{})
			return err
		}, connect.CodeInvalidArgument},
		{"update unknown client", func() error {
			_, err := Call[SaveClientRequest, ClientResponse](ctx, client, PracticeServiceName, "SaveClient",
				&SaveClientRequest{Client: models.Client{ID: "nope", FirstName: "A", TotalSessions: 1}})
			return err
		}, connect.CodeNotFound},
		{"invalid status", func() error {
			_, err := Call[SetAppointmentStatusRequest, AppointmentResponse](ctx, client, PracticeServiceName, "SetAppointmentStatus",
				&SetAppointmentStatusRequest{AppointmentID: "nope", Status: "postponed"})
			return err
		}, connect.CodeInvalidArgument},
		{"unknown appointment", func() error {
			_, err := Call[AppointmentRequest, Empty](ctx, client, PracticeServiceName, "DeleteAppointment", &AppointmentRequest{AppointmentID: "nope"})
			return err
		}, connect.CodeNotFound},
		{"negative payment", func() error {
			_, err := Call[AddPaymentRequest, PaymentResponse](ctx, client, PracticeServiceName, "AddPayment",
				&AddPaymentRequest{Payment: models.Payment{ClientID: saved.Client.ID, Amount: -5}})
			return err
		}, connect.CodeInvalidArgument},
		{"unknown procedure", func() error {
			_, err := Call[Empty, Empty](ctx, client, PracticeServiceName, "DropDatabase", &Empty{})
			return err
		}, connect.CodeUnimplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connect.CodeOf(tt.call()); got != tt.want {
				t.Errorf("code = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetConnectivity(t *testing.T) {
	client, monitor := setupTestServer(t, false)

	status := call[SetConnectivityRequest, SyncStatusResponse](t, client, "SetConnectivity", &SetConnectivityRequest{Online: false})
	if status.Online || monitor.Online() {
		t.Errorf("still online after offline report: %+v", status)
	}
	if status.Pending == nil {
		t.Error("pending should be an empty list, not null")
	}

	status = call[SetConnectivityRequest, SyncStatusResponse](t, client, "SetConnectivity", &SetConnectivityRequest{Online: true})
	if !status.Online {
		t.Errorf("status = %+v, want online", status)
	}
	status = call[Empty, SyncStatusResponse](t, client, "GetSyncStatus", &Empty{})
	if !status.Online || len(status.Pending) != 0 {
		t.Errorf("GetSyncStatus = %+v", status)
	}
}

func TestAuthRequired(t *testing.T) {
	client, _ := setupTestServer(t, true)
	ctx := context.Background()

	_, err := Call[Empty, ClientsResponse](ctx, client, PracticeServiceName, "ListClients", &Empty{})
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("anonymous call code = %v, want unauthenticated", connect.CodeOf(err))
	}

	if _, err := client.Login(ctx, "wrong-passcode"); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("wrong passcode code = %v, want unauthenticated", connect.CodeOf(err))
	}
	if _, err := client.Login(ctx, ""); connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("empty passcode code = %v, want invalid argument", connect.CodeOf(err))
	}

	authed, err := client.Login(ctx, testPasscode)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := Call[Empty, ClientsResponse](ctx, authed, PracticeServiceName, "ListClients", &Empty{}); err != nil {
		t.Errorf("authenticated call error = %v", err)
	}
}
