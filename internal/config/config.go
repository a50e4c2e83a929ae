// Package config reads the server and CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

type Config struct {
	Port          int
	DataDir       string
	Backend       string
	StorageQuota  int
	StaticPath    string
	LogLevel      string
	JWTSecret     string
	PasscodeHash  string
	TokenTTL      time.Duration
	Currency      string
	SeedSample    bool
	ProbeURL      string
	ProbeInterval time.Duration
}

// Load reads the configuration from the environment after applying the given
// dotenv files, ".env" when none are named. Missing files are skipped and
// variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error
	cfg := &Config{
		Port:          getInt("PORT", 8080, &errs),
		DataDir:       getEnv("DATA_DIR", "./data"),
		Backend:       strings.ToLower(getEnv("BACKEND", BackendSQLite)),
		StorageQuota:  getInt("STORAGE_QUOTA", 0, &errs),
		StaticPath:    getEnv("STATIC_PATH", "../frontend/static"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		PasscodeHash:  getEnv("PASSCODE_HASH", ""),
		TokenTTL:      getDuration("TOKEN_TTL", 12*time.Hour, &errs),
		Currency:      strings.ToUpper(getEnv("CURRENCY", "USD")),
		SeedSample:    getBool("SEED_SAMPLE_DATA", true, &errs),
		ProbeURL:      getEnv("PROBE_URL", ""),
		ProbeInterval: getDuration("PROBE_INTERVAL", 30*time.Second, &errs),
	}

	switch cfg.Backend {
	case BackendSQLite, BackendBolt, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("BACKEND: unknown backend %q", cfg.Backend))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", cfg.Port))
	}
	if cfg.StorageQuota < 0 {
		errs = append(errs, fmt.Errorf("STORAGE_QUOTA: must not be negative"))
	}
	if cfg.ProbeURL != "" && cfg.ProbeInterval <= 0 {
		errs = append(errs, fmt.Errorf("PROBE_INTERVAL: must be positive"))
	}
	if cfg.AuthEnabled() && cfg.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET: required when PASSCODE_HASH is set"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address of the server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AuthEnabled reports whether practice calls require a session token.
func (c *Config) AuthEnabled() bool {
	return c.PasscodeHash != ""
}

// DBPath is the database file of the selected backend. It is empty for the
// memory backend.
func (c *Config) DBPath() string {
	switch c.Backend {
	case BackendSQLite:
		return filepath.Join(c.DataDir, "clinic.db")
	case BackendBolt:
		return filepath.Join(c.DataDir, "clinic.bolt")
	default:
		return ""
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func getBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
