package service

import (
	"context"
	"sort"

	"github.com/mmynk/clinicbook/internal/storage"
)

// SyncStatus reports connectivity and the collections not yet persisted.
type SyncStatus struct {
	Online  bool
	Pending []string
}

// persist saves the named collections. A failed save leaves the key pending
// until a later save of the same key succeeds. Callers hold p.mu.
func (p *Practice) persist(ctx context.Context, keys ...string) {
	if p.readOnly {
		return
	}
	for _, key := range keys {
		var value any
		switch key {
		case storage.KeyClients:
			value = p.clients
		case storage.KeyAppointments:
			value = p.appointments
		case storage.KeyPayments:
			value = p.payments
		default:
			continue
		}

		if p.store.Save(ctx, key, value) {
			delete(p.pending, key)
		} else {
			p.pending[key] = true
		}
	}
}

// Resync saves every pending collection again and returns the keys still pending.
func (p *Practice) Resync(ctx context.Context) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := p.pendingKeys()
	if len(keys) == 0 {
		return nil
	}
	p.persist(ctx, keys...)

	left := p.pendingKeys()
	p.logger.Info("Resync finished", "retried", keys, "pending", left)
	return left
}

// SyncStatus returns the current sync state. Without a monitor the practice
// is considered online.
func (p *Practice) SyncStatus() SyncStatus {
	online := true
	if p.monitor != nil {
		online = p.monitor.Online()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return SyncStatus{Online: online, Pending: p.pendingKeys()}
}

// WatchConnectivity resyncs pending collections each time the monitor reports
// the device back online. It returns when ctx is done or the monitor closes.
func (p *Practice) WatchConnectivity(ctx context.Context) {
	if p.monitor == nil {
		return
	}
	events, cancel := p.monitor.Subscribe(4)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-events:
			if !ok {
				return
			}
			p.logger.Info("Connectivity changed", "online", s.Online)
			if s.Online {
				p.Resync(ctx)
			}
		}
	}
}

func (p *Practice) pendingKeys() []string {
	keys := make([]string, 0, len(p.pending))
	for k := range p.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
