package calculator

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicbook/internal/models"
)

// Recompute derives the ledger of one client from the full, unfiltered
// appointment and payment collections.
//
// Algorithm:
// - Charges: sum of cost over every appointment of the client, whatever its status
// - Paid: sum of amount over every payment of the client
// - Balance: charges - paid, never clamped (negative = credit)
// - Completed sessions: appointments with status completed
//
// Sums are accumulated in decimal so the result does not depend on the order
// of the input. An unknown client yields a zero ledger.
func Recompute(clientID string, appointments []models.Appointment, payments []models.Payment) models.Ledger {
	charges := decimal.Zero
	paid := decimal.Zero
	completed := 0

	for _, a := range appointments {
		if a.ClientID != clientID {
			continue
		}
		charges = charges.Add(decimal.NewFromFloat(a.Cost))
		if a.Status == models.StatusCompleted {
			completed++
		}
	}

	for _, p := range payments {
		if p.ClientID != clientID {
			continue
		}
		paid = paid.Add(decimal.NewFromFloat(p.Amount))
	}

	l := models.Ledger{
		CompletedSessions: completed,
		TotalCharges:      charges.InexactFloat64(),
		TotalPaid:         paid.InexactFloat64(),
	}
	// Subtract the rounded totals so Balance == TotalCharges - TotalPaid holds exactly.
	l.Balance = l.TotalCharges - l.TotalPaid
	return l
}

// Progress returns the completion of a session plan as a whole percentage.
// A plan without sessions has no progress.
func Progress(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed) / float64(total) * 100)
}

// UpcomingSessions counts the client's scheduled appointments dated today or later.
func UpcomingSessions(clientID string, appointments []models.Appointment, today time.Time) int {
	day := today.Format(models.DateLayout)
	n := 0
	for _, a := range appointments {
		if a.ClientID == clientID && a.Status == models.StatusScheduled && a.Date >= day {
			n++
		}
	}
	return n
}
