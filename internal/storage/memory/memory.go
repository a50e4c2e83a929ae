// Package memory provides an in-process implementation of storage.Backend.
//
// Entries live only as long as the process. A byte quota can be set to
// reproduce the write failures of a full browser storage area.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/clinicbook/internal/storage"
)

// Ensure Backend implements storage.Backend
var _ storage.Backend = (*Backend)(nil)

// Backend is a map-backed key/value store.
type Backend struct {
	mu      sync.Mutex
	entries map[string][]byte
	quota   int // total bytes of keys and values; 0 means unlimited
	closed  bool
}

// New creates an empty Backend. quota limits the total size of keys and
// values; zero or less disables the limit.
func New(quota int) *Backend {
	if quota < 0 {
		quota = 0
	}
	return &Backend{entries: make(map[string][]byte), quota: quota}
}

// Get returns a copy of the entry under key.
func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, storage.ErrClosed
	}
	v, ok := b.entries[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of value, failing with storage.ErrQuotaExceeded when
// the quota would be exceeded. A failed Put leaves the previous entry intact.
func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return storage.ErrClosed
	}
	if b.quota > 0 {
		size := b.sizeLocked() + len(key) + len(value)
		if old, ok := b.entries[key]; ok {
			size -= len(key) + len(old)
		}
		if size > b.quota {
			return storage.ErrQuotaExceeded
		}
	}
	b.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the entry under key.
func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return storage.ErrClosed
	}
	delete(b.entries, key)
	return nil
}

// Clear removes every entry.
func (b *Backend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return storage.ErrClosed
	}
	b.entries = make(map[string][]byte)
	return nil
}

// Close discards the entries. Later calls fail with storage.ErrClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.entries = nil
	return nil
}

// Size returns the bytes used by keys and values.
func (b *Backend) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sizeLocked()
}

func (b *Backend) sizeLocked() int {
	n := 0
	for k, v := range b.entries {
		n += len(k) + len(v)
	}
	return n
}
