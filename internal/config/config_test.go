package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: https://example.com/api/v3
  api_key: test-key
database:
  driver: sqlite
  path: /tmp/trades.db
tracker:
  lookback_days: 14
  min_trade_amount: 5000
  alert_large_trade_amount: 100000
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://example.com/api/v3" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Database.Path != "/tmp/trades.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Tracker.LookbackDays != 14 {
		t.Errorf("Tracker.LookbackDays = %d, want 14", cfg.Tracker.LookbackDays)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_FMP_KEY", "secret123")

	yaml := `
api:
  api_key: ${TEST_FMP_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.APIKey != "secret123" {
		t.Errorf("API.APIKey = %q, want %q", cfg.API.APIKey, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
api:
  api_key: test-key
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Tracker.LookbackDays != DefaultLookbackDays {
		t.Errorf("Tracker.LookbackDays = %d", cfg.Tracker.LookbackDays)
	}
	if cfg.Tracker.AlertOnSectorChanges == nil || !*cfg.Tracker.AlertOnSectorChanges {
		t.Error("AlertOnSectorChanges should default to enabled")
	}
}

func TestLoadWithDefaults_ExplicitToggleKept(t *testing.T) {
	yaml := `
api:
  api_key: test-key
tracker:
  alert_on_sector_changes: false
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Tracker.AlertOnSectorChanges == nil || *cfg.Tracker.AlertOnSectorChanges {
		t.Error("explicit false toggle was overwritten by the default")
	}
}

func TestValidate(t *testing.T) {
	base := `
api:
  api_key: test-key
`
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"defaults are valid", base, false},
		{"missing api key", "api: {}\n", true},
		{
			"unknown driver",
			base + "database:\n  driver: mysql\n",
			true,
		},
		{
			"postgres without host",
			base + "database:\n  driver: postgres\n  name: db\n  user: u\n",
			true,
		},
		{
			"alert threshold below ingestion minimum",
			base + "tracker:\n  min_trade_amount: 10000\n  alert_large_trade_amount: 500\n",
			true,
		},
		{
			"cluster minimum too small",
			base + "tracker:\n  cluster_min_politicians: 1\n",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.yaml)
			_, err := LoadAndValidate(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadAndValidate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
