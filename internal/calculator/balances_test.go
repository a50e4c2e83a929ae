package calculator

import (
	"testing"

	"github.com/mmynk/clinicbook/internal/models"
)

func TestPracticeTotals(t *testing.T) {
	clients := []models.Client{
		{ID: "2", FirstName: "Mehmet", LastName: "Kaya"},
		{ID: "1", FirstName: "Ayse", LastName: "Yilmaz"},
		{ID: "3", FirstName: "Can", LastName: "Demir"},
	}
	appointments := []models.Appointment{
		appt("a1", "1", 500, models.StatusCompleted),
		appt("a2", "1", 500, models.StatusScheduled),
		appt("a3", "2", 600, models.StatusCompleted),
		appt("a4", "gone", 700, models.StatusCompleted),
	}
	payments := []models.Payment{
		pay("p1", "1", 400),
		pay("p2", "2", 800),
		pay("p3", "gone", 50),
	}

	totals := PracticeTotals(clients, appointments, payments)

	if totals.TotalCharges != 1600 {
		t.Errorf("TotalCharges = %v, want 1600", totals.TotalCharges)
	}
	if totals.TotalPaid != 1200 {
		t.Errorf("TotalPaid = %v, want 1200", totals.TotalPaid)
	}
	if totals.Outstanding != 600 {
		t.Errorf("Outstanding = %v, want 600", totals.Outstanding)
	}
	if totals.Credit != 200 {
		t.Errorf("Credit = %v, want 200", totals.Credit)
	}
	if totals.OrphanedAppointments != 1 || totals.OrphanedPayments != 1 {
		t.Errorf("orphans = %d/%d, want 1/1", totals.OrphanedAppointments, totals.OrphanedPayments)
	}

	wantOrder := []string{"Ayse Yilmaz", "Can Demir", "Mehmet Kaya"}
	if len(totals.Clients) != len(wantOrder) {
		t.Fatalf("got %d client balances, want %d", len(totals.Clients), len(wantOrder))
	}
	for i, name := range wantOrder {
		if totals.Clients[i].ClientName != name {
			t.Errorf("Clients[%d] = %q, want %q", i, totals.Clients[i].ClientName, name)
		}
	}

	ayse := totals.Clients[0]
	if ayse.Balance != 600 || ayse.CompletedSessions != 1 {
		t.Errorf("Ayse ledger = %+v", ayse.Ledger)
	}
	if totals.Clients[1].Ledger != (models.Ledger{}) {
		t.Errorf("client without records should have zero ledger, got %+v", totals.Clients[1].Ledger)
	}
}

func TestPracticeTotalsEmpty(t *testing.T) {
	totals := PracticeTotals(nil, nil, nil)
	if totals.TotalCharges != 0 || totals.TotalPaid != 0 || len(totals.Clients) != 0 {
		t.Errorf("expected empty totals, got %+v", totals)
	}
}
