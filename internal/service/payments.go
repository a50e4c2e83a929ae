package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmynk/clinicbook/internal/models"
	"github.com/mmynk/clinicbook/internal/storage"
)

// AddPayment records a payment from an existing client. The ID is always
// assigned here; the date defaults to today and the method to cash.
func (p *Practice) AddPayment(ctx context.Context, pay models.Payment) (models.Payment, error) {
	if pay.Amount <= 0 {
		return models.Payment{}, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if pay.Method == "" {
		pay.Method = models.MethodCash
	}
	if !pay.Method.Valid() {
		return models.Payment{}, fmt.Errorf("%w: %w %q", ErrInvalidPayment, models.ErrUnknownMethod, pay.Method)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pay.Date == "" {
		pay.Date = p.now().Format(models.DateLayout)
	}
	if !validDate(pay.Date) {
		return models.Payment{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidPayment, pay.Date)
	}
	if p.clientIndex(pay.ClientID) < 0 {
		return models.Payment{}, fmt.Errorf("%w: %s", ErrClientNotFound, pay.ClientID)
	}

	pay.ID = p.newID()
	p.payments = append(p.payments, pay)
	p.refresh(pay.ClientID)
	p.persist(ctx, storage.KeyPayments, storage.KeyClients)

	p.logger.Info("Payment recorded", "payment_id", pay.ID, "client_id", pay.ClientID, "amount", pay.Amount)
	return pay, nil
}

// Payments returns the payments of a client, newest first. Payments on the
// same day are ordered by most recently recorded. An empty clientID returns
// every payment.
func (p *Practice) Payments(clientID string) []models.Payment {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []models.Payment
	for i := len(p.payments) - 1; i >= 0; i-- {
		if pay := p.payments[i]; clientID == "" || pay.ClientID == clientID {
			out = append(out, pay)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
