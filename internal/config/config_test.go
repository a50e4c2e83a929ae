package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"PORT", "DATA_DIR", "BACKEND", "STORAGE_QUOTA", "STATIC_PATH", "LOG_LEVEL",
	"JWT_SECRET", "PASSCODE_HASH", "TOKEN_TTL", "CURRENCY", "SEED_SAMPLE_DATA",
	"PROBE_URL", "PROBE_INTERVAL",
}

// clearEnv blanks every variable Load reads; blank values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 || cfg.Backend != BackendSQLite || cfg.Currency != "USD" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.SeedSample {
		t.Error("SeedSample should default to true")
	}
	if cfg.TokenTTL != 12*time.Hour || cfg.ProbeInterval != 30*time.Second {
		t.Errorf("durations = %v, %v", cfg.TokenTTL, cfg.ProbeInterval)
	}
	if cfg.AuthEnabled() {
		t.Error("auth should be disabled without a passcode hash")
	}
	if got, want := cfg.DBPath(), filepath.Join("data", "clinic.db"); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND", "Bolt")
	t.Setenv("DATA_DIR", "/var/lib/clinic")
	t.Setenv("CURRENCY", "try")
	t.Setenv("SEED_SAMPLE_DATA", "false")
	t.Setenv("TOKEN_TTL", "1h30m")

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 || cfg.Backend != BackendBolt || cfg.Currency != "TRY" || cfg.SeedSample {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("TokenTTL = %v", cfg.TokenTTL)
	}
	if got := cfg.DBPath(); got != "/var/lib/clinic/clinic.bolt" {
		t.Errorf("DBPath() = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad port", env: map[string]string{"PORT": "eighty"}, wantErr: "PORT"},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}, wantErr: "PORT"},
		{name: "unknown backend", env: map[string]string{"BACKEND": "postgres"}, wantErr: "BACKEND"},
		{name: "bad duration", env: map[string]string{"TOKEN_TTL": "soon"}, wantErr: "TOKEN_TTL"},
		{name: "bad bool", env: map[string]string{"SEED_SAMPLE_DATA": "maybe"}, wantErr: "SEED_SAMPLE_DATA"},
		{name: "negative quota", env: map[string]string{"STORAGE_QUOTA": "-1"}, wantErr: "STORAGE_QUOTA"},
		{name: "hash without secret", env: map[string]string{"PASSCODE_HASH": "$2a$10$x"}, wantErr: "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(noEnvFile(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// Unset so the file may provide them; t.Setenv restores the originals.
	os.Unsetenv("PORT")
	os.Unsetenv("CURRENCY")
	t.Setenv("BACKEND", "memory")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=7070\nCURRENCY=EUR\nBACKEND=sqlite\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 7070 || cfg.Currency != "EUR" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, environment should win over the file", cfg.Backend)
	}
	if cfg.DBPath() != "" {
		t.Errorf("memory backend should have no DBPath, got %q", cfg.DBPath())
	}
}
