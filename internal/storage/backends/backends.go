// Package backends opens the storage backend selected by configuration.
package backends

import (
	"fmt"

	"github.com/mmynk/clinicbook/internal/config"
	"github.com/mmynk/clinicbook/internal/storage"
	"github.com/mmynk/clinicbook/internal/storage/boltdb"
	"github.com/mmynk/clinicbook/internal/storage/memory"
	"github.com/mmynk/clinicbook/internal/storage/sqlite"
)

// Open returns the backend named by cfg.Backend. The caller closes it.
func Open(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.DBPath())
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendBolt:
		s, err := boltdb.New(cfg.DBPath())
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return memory.New(cfg.StorageQuota), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
