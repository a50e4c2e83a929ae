package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clinicbook/internal/calculator"
	"github.com/mmynk/clinicbook/internal/connectivity"
	"github.com/mmynk/clinicbook/internal/metrics"
	"github.com/mmynk/clinicbook/internal/models"
	"github.com/mmynk/clinicbook/internal/storage"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidClient       = errors.New("invalid client")
	ErrInvalidAppointment  = errors.New("invalid appointment")
	ErrInvalidPayment      = errors.New("invalid payment")
)

// Practice owns the client, appointment and payment collections of the clinic.
//
// Every operation runs to completion under one lock: mutate, recompute the
// ledger of each affected client, then persist the affected collections.
// A client's Ledger is therefore never observable in a stale state.
type Practice struct {
	mu      sync.Mutex
	store   *storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	monitor *connectivity.Monitor
	now     func() time.Time
	newID   func() string
	seed    bool
	// readOnly disables every write to the store.
	readOnly bool

	clients      models.Clients
	appointments models.Appointments
	payments     models.Payments

	// pending holds the keys whose last save failed.
	pending map[string]bool
}

// Option configures a Practice.
type Option func(*Practice)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Practice) { p.logger = logger }
}

// WithMetrics counts ledger recomputations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Practice) { p.metrics = m }
}

// WithMonitor sets the connectivity monitor reported by SyncStatus and
// watched by WatchConnectivity.
func WithMonitor(m *connectivity.Monitor) Option {
	return func(p *Practice) { p.monitor = m }
}

// WithSampleData makes Load install the sample roster when no clients are persisted.
func WithSampleData(enabled bool) Option {
	return func(p *Practice) { p.seed = enabled }
}

// WithReadOnly makes the Practice never write to its store. Repaired ledgers
// live in memory only; use it for reports over a store another process owns.
func WithReadOnly() Option {
	return func(p *Practice) { p.readOnly = true }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Practice) { p.now = now }
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(p *Practice) { p.newID = newID }
}

// NewPractice creates an empty Practice persisting through store.
// Call Load before use to restore persisted state.
func NewPractice(store *storage.Store, opts ...Option) *Practice {
	p := &Practice{
		store:   store,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		pending: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load restores the collections from storage. Absent or unreadable entries
// start empty. When enabled, the sample roster is installed only if none of
// the three entries could be read, so it never replaces readable records.
// Every ledger is then recomputed, repairing any entry that lagged behind
// its appointments or payments.
func (p *Practice) Load(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clients, hasClients := storage.Load[models.Clients](ctx, p.store, storage.KeyClients)
	appointments, hasAppointments := storage.Load[models.Appointments](ctx, p.store, storage.KeyAppointments)
	payments, hasPayments := storage.Load[models.Payments](ctx, p.store, storage.KeyPayments)

	p.clients = nonNil(clients)
	p.appointments = nonNil(appointments)
	p.payments = nonNil(payments)

	if p.seed && !hasClients && !hasAppointments && !hasPayments {
		p.clients, p.appointments, p.payments = sampleData(p.newID, p.now())
		p.refreshAll()
		p.persist(ctx, storage.KeyClients, storage.KeyAppointments, storage.KeyPayments)
		p.logger.Info("Installed sample data", "clients", len(p.clients))
		return
	}

	if changed := p.refreshAll(); changed > 0 {
		p.logger.Info("Repaired stale ledgers", "clients", changed)
		p.persist(ctx, storage.KeyClients)
	}
	p.logger.Info("Practice loaded",
		"clients", len(p.clients),
		"appointments", len(p.appointments),
		"payments", len(p.payments),
	)
}

// Clients returns every client, ordered as registered.
func (p *Practice) Clients() []models.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Client(nil), p.clients...)
}

// Client returns one client.
func (p *Practice) Client(id string) (models.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.clientIndex(id)
	if i < 0 {
		return models.Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}
	return p.clients[i], nil
}

// SearchClients returns the clients whose full name or email contains term,
// ignoring case, or whose phone number contains term. An empty term matches all.
func (p *Practice) SearchClients(term string) []models.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	lower := strings.ToLower(term)
	var out []models.Client
	for _, c := range p.clients {
		if strings.Contains(strings.ToLower(c.FirstName+" "+c.LastName), lower) ||
			strings.Contains(strings.ToLower(c.Email), lower) ||
			strings.Contains(c.Phone, term) {
			out = append(out, c)
		}
	}
	return out
}

// AddClient registers a new client. The ID and registration time are assigned
// when missing; ledger fields in c are ignored.
func (p *Practice) AddClient(ctx context.Context, c models.Client) (models.Client, error) {
	if err := validateClient(c); err != nil {
		return models.Client{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c.ID == "" {
		c.ID = p.newID()
	} else if p.clientIndex(c.ID) >= 0 {
		return models.Client{}, fmt.Errorf("%w: id %s already exists", ErrInvalidClient, c.ID)
	}
	if c.RegistrationDate == "" {
		c.RegistrationDate = p.now().UTC().Format(time.RFC3339)
	}
	c.Ledger = models.Ledger{}

	p.clients = append(p.clients, c)
	p.refresh(c.ID)
	p.persist(ctx, storage.KeyClients)

	p.logger.Info("Client added", "client_id", c.ID)
	return p.clients[len(p.clients)-1], nil
}

// UpdateClient replaces the profile of an existing client. Ledger fields in c
// are ignored and the registration time is kept when c leaves it unset.
func (p *Practice) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	if err := validateClient(c); err != nil {
		return models.Client{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.clientIndex(c.ID)
	if i < 0 {
		return models.Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, c.ID)
	}
	if c.RegistrationDate == "" {
		c.RegistrationDate = p.clients[i].RegistrationDate
	}
	p.clients[i] = c
	p.refresh(c.ID)
	p.persist(ctx, storage.KeyClients)

	p.logger.Info("Client updated", "client_id", c.ID)
	return p.clients[i], nil
}

// DeleteClient removes a client. Its appointments and payments are kept: they
// no longer count towards any ledger but stay in storage.
func (p *Practice) DeleteClient(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.clientIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}
	p.clients = append(p.clients[:i], p.clients[i+1:]...)
	p.persist(ctx, storage.KeyClients)

	p.logger.Info("Client deleted", "client_id", id)
	return nil
}

// ClientOverview is a client with its session-plan figures.
type ClientOverview struct {
	models.Client
	Progress         float64 `json:"progress"` // Completed sessions as a percentage of the plan
	UpcomingSessions int     `json:"upcomingSessions"`
}

// Overview returns the client with its plan progress and upcoming session count.
func (p *Practice) Overview(id string) (ClientOverview, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.clientIndex(id)
	if i < 0 {
		return ClientOverview{}, fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}
	c := p.clients[i]
	return ClientOverview{
		Client:           c,
		Progress:         calculator.Progress(c.CompletedSessions, c.TotalSessions),
		UpcomingSessions: calculator.UpcomingSessions(id, p.appointments, p.now()),
	}, nil
}

// Totals aggregates the ledgers of the whole practice.
func (p *Practice) Totals() calculator.Totals {
	p.mu.Lock()
	defer p.mu.Unlock()
	return calculator.PracticeTotals(p.clients, p.appointments, p.payments)
}

// RecomputeAll recomputes every ledger and persists the clients when one changed.
// It returns the number of clients whose ledger was stale.
func (p *Practice) RecomputeAll(ctx context.Context) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed := p.refreshAll()
	if changed > 0 {
		p.persist(ctx, storage.KeyClients)
	}
	return changed
}

// Snapshot returns copies of the three collections.
func (p *Practice) Snapshot() (models.Clients, models.Appointments, models.Payments) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append(models.Clients{}, p.clients...),
		append(models.Appointments{}, p.appointments...),
		append(models.Payments{}, p.payments...)
}

// Reset removes every persisted entry and empties the collections.
func (p *Practice) Reset(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readOnly {
		return false
	}
	p.clients = models.Clients{}
	p.appointments = models.Appointments{}
	p.payments = models.Payments{}
	p.pending = make(map[string]bool)
	return p.store.Clear(ctx)
}

// clientIndex returns the position of the client or -1. Callers hold p.mu.
func (p *Practice) clientIndex(id string) int {
	for i, c := range p.clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// refresh recomputes the ledger of the given clients. Unknown IDs are skipped.
func (p *Practice) refresh(clientIDs ...string) {
	for _, id := range clientIDs {
		if i := p.clientIndex(id); i >= 0 {
			p.clients[i].Ledger = calculator.Recompute(id, p.appointments, p.payments)
			p.metrics.Recomputed(1)
		}
	}
}

// refreshAll recomputes every ledger and returns how many changed.
func (p *Practice) refreshAll() int {
	changed := 0
	for i := range p.clients {
		l := calculator.Recompute(p.clients[i].ID, p.appointments, p.payments)
		if l != p.clients[i].Ledger {
			changed++
		}
		p.clients[i].Ledger = l
	}
	p.metrics.Recomputed(len(p.clients))
	return changed
}

func validateClient(c models.Client) error {
	switch {
	case strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidClient)
	case c.SessionRate < 0:
		return fmt.Errorf("%w: session rate must not be negative", ErrInvalidClient)
	case c.TotalSessions <= 0:
		return fmt.Errorf("%w: total sessions must be positive", ErrInvalidClient)
	case c.BirthDate != "" && !validDate(c.BirthDate):
		return fmt.Errorf("%w: birth date %q is not YYYY-MM-DD", ErrInvalidClient, c.BirthDate)
	case c.RegistrationDate != "" && !validTimestamp(c.RegistrationDate):
		return fmt.Errorf("%w: registration date %q is not a date or RFC 3339 timestamp", ErrInvalidClient, c.RegistrationDate)
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func validTimestamp(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	return validDate(s)
}

func validTime(s string) bool {
	_, err := time.Parse(models.TimeLayout, s)
	return err == nil
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

// sortAppointments orders by date, then start time.
func sortAppointments(as []models.Appointment) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].Date != as[j].Date {
			return as[i].Date < as[j].Date
		}
		return as[i].StartTime < as[j].StartTime
	})
}
