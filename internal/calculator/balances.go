package calculator

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicbook/internal/models"
)

// ClientBalance is the ledger of one client, as reported in practice totals.
type ClientBalance struct {
	ClientID   string
	ClientName string
	models.Ledger
}

// Totals aggregates the ledgers of every client of the practice.
type Totals struct {
	TotalCharges float64
	TotalPaid    float64
	Outstanding  float64 // Sum of positive balances (owed to the practice)
	Credit       float64 // Sum of negative balances, as a positive amount
	Clients      []ClientBalance

	// Orphaned records reference a client that no longer exists.
	// They belong to no ledger and are only counted here.
	OrphanedAppointments int
	OrphanedPayments     int
}

// PracticeTotals computes the ledger of every client and aggregates them.
//
// Algorithm:
// - Each client: Recompute over the full collections
// - Outstanding: sum of balances above zero
// - Credit: sum of balances below zero (negated)
// - Clients are listed by name, then ID
func PracticeTotals(clients []models.Client, appointments []models.Appointment, payments []models.Payment) Totals {
	known := make(map[string]bool, len(clients))
	for _, c := range clients {
		known[c.ID] = true
	}

	var t Totals
	charges, paid := decimal.Zero, decimal.Zero
	outstanding, credit := decimal.Zero, decimal.Zero

	for _, c := range clients {
		l := Recompute(c.ID, appointments, payments)
		t.Clients = append(t.Clients, ClientBalance{
			ClientID:   c.ID,
			ClientName: c.FullName(),
			Ledger:     l,
		})

		charges = charges.Add(decimal.NewFromFloat(l.TotalCharges))
		paid = paid.Add(decimal.NewFromFloat(l.TotalPaid))
		balance := decimal.NewFromFloat(l.Balance)
		if balance.IsPositive() {
			outstanding = outstanding.Add(balance)
		} else if balance.IsNegative() {
			credit = credit.Sub(balance)
		}
	}

	for _, a := range appointments {
		if !known[a.ClientID] {
			t.OrphanedAppointments++
		}
	}
	for _, p := range payments {
		if !known[p.ClientID] {
			t.OrphanedPayments++
		}
	}

	sort.SliceStable(t.Clients, func(i, j int) bool {
		ni, nj := strings.ToLower(t.Clients[i].ClientName), strings.ToLower(t.Clients[j].ClientName)
		if ni != nj {
			return ni < nj
		}
		return t.Clients[i].ClientID < t.Clients[j].ClientID
	})

	t.TotalCharges = charges.InexactFloat64()
	t.TotalPaid = paid.InexactFloat64()
	t.Outstanding = outstanding.InexactFloat64()
	t.Credit = credit.InexactFloat64()
	return t
}
