package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendJSON {
		t.Fatalf("backend = %q, want %q", cfg.Storage.Backend, BackendJSON)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.Currency = "USD"
	cfg.Storage.Backend = BackendSQLite
	cfg.Budget.NearLimitPercent = 90
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "flowtrack"), 0o755); err != nil {
		t.Fatal(err)
	}
	file := "[storage]\nbackend = \"sqlite\"\n[log]\nlevel = \"warn\"\n"
	if err := os.WriteFile(ConfigPath(), []byte(file), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FLOWTRACK_BACKEND", "json")
	t.Setenv("FLOWTRACK_DATA_FILE", "/tmp/x.json")
	t.Setenv("FLOWTRACK_DAEMON_INTERVAL", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "json" {
		t.Fatalf("env should win over file, backend = %q", cfg.Storage.Backend)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("file value lost, level = %q", cfg.Log.Level)
	}
	if cfg.DataFilePath() != "/tmp/x.json" {
		t.Fatalf("DataFilePath = %q", cfg.DataFilePath())
	}
	if cfg.Daemon.IntervalSec != 60 {
		t.Fatalf("bad int env should keep default, got %d", cfg.Daemon.IntervalSec)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "flowtrack"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(), []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("Load err = %v, want parsing error", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "postgres"
	cfg.Budget.NearLimitPercent = 0
	cfg.Daemon.IntervalSec = -1
	cfg.Log.Level = "chatty"
	cfg.General.Currency = "XYZ"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"postgres", "near_limit_percent", "interval_sec", "chatty", "XYZ"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	if got := cfg.DataFilePath(); got != filepath.Join("/data", "flowtrack", "ledger.json") {
		t.Fatalf("DataFilePath = %q", got)
	}
	if got := cfg.SQLitePath(); got != filepath.Join("/data", "flowtrack", "ledger.db") {
		t.Fatalf("SQLitePath = %q", got)
	}
}
