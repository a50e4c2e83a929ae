package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmynk/clinicbook/internal/calculator"
	"github.com/mmynk/clinicbook/internal/models"
)

// Statement renders the account statement of one client: its sessions, its
// payments and the ledger summary. Records of other clients are ignored.
func Statement(c models.Client, appts []models.Appointment, payments []models.Payment, f Formatter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Statement: %s\n\n", c.FullName())
	if contact := joinNonEmpty(" · ", c.Email, c.Phone); contact != "" {
		fmt.Fprintf(&b, "%s\n\n", contact)
	}
	fmt.Fprintf(&b, "Session rate: %s · Plan: %d sessions\n\n", f.Format(c.SessionRate), c.TotalSessions)

	var own []models.Appointment
	for _, a := range appts {
		if a.ClientID == c.ID {
			own = append(own, a)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		if own[i].Date != own[j].Date {
			return own[i].Date < own[j].Date
		}
		return own[i].StartTime < own[j].StartTime
	})

	b.WriteString("## Sessions\n\n")
	if len(own) == 0 {
		b.WriteString("No sessions.\n\n")
	} else {
		b.WriteString("| # | Date | Time | Type | Status | Cost |\n")
		b.WriteString("|---|------|------|------|--------|-----:|\n")
		for _, a := range own {
			fmt.Fprintf(&b, "| %d | %s | %s–%s | %s | %s | %s |\n",
				a.SessionNumber, a.Date, a.StartTime, a.EndTime, cell(a.SessionType), a.Status, f.Format(a.Cost))
		}
		b.WriteString("\n")
	}

	var paid []models.Payment
	for _, p := range payments {
		if p.ClientID == c.ID {
			paid = append(paid, p)
		}
	}
	sort.SliceStable(paid, func(i, j int) bool { return paid[i].Date < paid[j].Date })

	b.WriteString("## Payments\n\n")
	if len(paid) == 0 {
		b.WriteString("No payments.\n\n")
	} else {
		b.WriteString("| Date | Method | Reference | Amount |\n")
		b.WriteString("|------|--------|-----------|-------:|\n")
		for _, p := range paid {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.Date, p.Method, cell(p.Reference), f.Format(p.Amount))
		}
		b.WriteString("\n")
	}

	l := calculator.Recompute(c.ID, appts, payments)
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Completed sessions: %d of %d (%.0f%%)\n",
		l.CompletedSessions, c.TotalSessions, calculator.Progress(l.CompletedSessions, c.TotalSessions))
	fmt.Fprintf(&b, "- Total charges: %s\n", f.Format(l.TotalCharges))
	fmt.Fprintf(&b, "- Total paid: %s\n", f.Format(l.TotalPaid))
	fmt.Fprintf(&b, "- %s\n", balanceLine(l.Balance, f))

	return b.String()
}

// Roster renders the balance of every client followed by the practice totals.
func Roster(t calculator.Totals, f Formatter) string {
	var b strings.Builder

	b.WriteString("# Clients\n\n")
	if len(t.Clients) == 0 {
		b.WriteString("No clients.\n\n")
	} else {
		b.WriteString("| Client | ID | Completed | Charges | Paid | Balance |\n")
		b.WriteString("|--------|----|----------:|--------:|-----:|--------:|\n")
		for _, c := range t.Clients {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
				cell(c.ClientName), c.ClientID, c.CompletedSessions,
				f.Format(c.TotalCharges), f.Format(c.TotalPaid), f.Format(c.Balance))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Practice\n\n")
	fmt.Fprintf(&b, "- Total charges: %s\n", f.Format(t.TotalCharges))
	fmt.Fprintf(&b, "- Total paid: %s\n", f.Format(t.TotalPaid))
	fmt.Fprintf(&b, "- Outstanding: %s\n", f.Format(t.Outstanding))
	fmt.Fprintf(&b, "- Credit held: %s\n", f.Format(t.Credit))
	if t.OrphanedAppointments > 0 || t.OrphanedPayments > 0 {
		fmt.Fprintf(&b, "- Records of deleted clients: %d appointments, %d payments\n",
			t.OrphanedAppointments, t.OrphanedPayments)
	}
	return b.String()
}

func balanceLine(balance float64, f Formatter) string {
	switch {
	case balance > 0:
		return "Balance due: " + f.Format(balance)
	case balance < 0:
		return "In credit: " + f.Format(-balance)
	default:
		return "Settled"
	}
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
