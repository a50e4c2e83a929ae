// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

// Collection keys. Each collection is persisted as an independent entry;
// there is no atomicity across keys.
const (
	KeyClients      = "clients"
	KeyAppointments = "appointments"
	KeyPayments     = "payments"
)

var (
	// ErrNotFound is returned by a Backend when a key has no entry.
	ErrNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned by a Backend that refuses a write for lack of space.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrClosed is returned by a Backend used after Close.
	ErrClosed = errors.New("storage closed")
)

// Backend defines the raw key/value operations of a durable store.
// This abstraction allows swapping storage backends (SQLite, BoltDB, memory)
// without changing the application layer.
type Backend interface {
	// Get returns the raw text stored under key.
	// Returns ErrNotFound if the key has no entry.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous entry.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the entry under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}
