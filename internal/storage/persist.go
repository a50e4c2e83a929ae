package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mmynk/clinicbook/internal/metrics"
)

// Validator is implemented by values that can check their own structure
// after decoding. Load treats a value failing validation as absent.
type Validator interface {
	Validate() error
}

// Store persists JSON-encoded values on top of a Backend.
//
// No failure crosses this boundary: write errors are logged and reported as
// false, unreadable entries are logged and reported as absent. The in-memory
// state of the caller stays the source of truth when persistence fails.
type Store struct {
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report storage anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics counts every operation and its outcome.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a Store writing to backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save encodes value and writes it under key.
// It returns false if the value could not be persisted.
func (s *Store) Save(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Storage encode failed", "key", key, "error", err)
		s.metrics.StorageOp("save", false)
		return false
	}

	if err := s.backend.Put(ctx, key, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.logger.Warn("Storage quota exceeded", "key", key, "size", len(data))
		} else {
			s.logger.Error("Storage write failed", "key", key, "error", err)
		}
		s.metrics.StorageOp("save", false)
		return false
	}

	s.logger.Debug("Saved entry", "key", key, "size", len(data))
	s.metrics.StorageOp("save", true)
	return true
}

// Load reads the entry under key and decodes it as a T.
// The second result is false ("absent") when the entry is missing, cannot be
// decoded, decodes to null, or fails validation.
func Load[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var v T
	data, ok := s.read(ctx, key)
	if !ok {
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("Ignoring corrupt entry", "key", key, "error", err)
		s.metrics.StorageOp("load", false)
		var zero T
		return zero, false
	}
	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			s.logger.Warn("Ignoring malformed entry", "key", key, "error", err)
			s.metrics.StorageOp("load", false)
			var zero T
			return zero, false
		}
	}

	s.metrics.StorageOp("load", true)
	return v, true
}

// read returns the raw entry under key, or false when there is nothing usable.
func (s *Store) read(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug("No entry", "key", key)
		s.metrics.StorageOp("load", true)
		return nil, false
	}
	if err != nil {
		s.logger.Error("Storage read failed", "key", key, "error", err)
		s.metrics.StorageOp("load", false)
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		s.logger.Warn("Ignoring null entry", "key", key)
		s.metrics.StorageOp("load", false)
		return nil, false
	}
	return data, true
}

// Delete removes the entry under key. It returns false on failure.
func (s *Store) Delete(ctx context.Context, key string) bool {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Error("Storage delete failed", "key", key, "error", err)
		s.metrics.StorageOp("delete", false)
		return false
	}
	s.metrics.StorageOp("delete", true)
	return true
}

// Clear removes every entry. It returns false on failure.
func (s *Store) Clear(ctx context.Context) bool {
	if err := s.backend.Clear(ctx); err != nil {
		s.logger.Error("Storage clear failed", "error", err)
		s.metrics.StorageOp("clear", false)
		return false
	}
	s.logger.Info("Storage cleared")
	s.metrics.StorageOp("clear", true)
	return true
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
