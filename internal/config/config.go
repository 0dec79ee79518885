package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/flowtrack/internal/log"
)

// Backend names accepted in [storage].
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all flowtrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Budget     BudgetConfig     `toml:"budget"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataFile       string `toml:"data_file,omitempty"`
	Currency       string `toml:"currency"`
	CurrencyPrefix string `toml:"currency_prefix,omitempty"`
}

// StorageConfig selects where the ledger snapshot lives.
type StorageConfig struct {
	Backend    string `toml:"backend"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// BudgetConfig holds budget tracking settings.
type BudgetConfig struct {
	NearLimitPercent float64 `toml:"near_limit_percent"`
}

// DaemonConfig holds settings for `flowtrack daemon`.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
}

// Interval returns the recurring-post poll interval.
func (d DaemonConfig) Interval() time.Duration {
	return time.Duration(d.IntervalSec) * time.Second
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "IDR",
		},
		Storage: StorageConfig{
			Backend: BackendJSON,
		},
		Budget: BudgetConfig{
			NearLimitPercent: 80,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8787",
			IntervalSec: 60,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flowtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "flowtrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "flowtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "flowtrack")
}

// DataFilePath returns the JSON snapshot path.
func (c Config) DataFilePath() string {
	if c.General.DataFile != "" {
		return c.General.DataFile
	}
	return filepath.Join(DataDir(), "ledger.json")
}

// SQLitePath returns the SQLite database path.
func (c Config) SQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(DataDir(), "ledger.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.General.DataFile = getEnv("FLOWTRACK_DATA_FILE", c.General.DataFile)
	c.General.Currency = getEnv("FLOWTRACK_CURRENCY", c.General.Currency)
	c.Storage.Backend = getEnv("FLOWTRACK_BACKEND", c.Storage.Backend)
	c.Storage.SQLitePath = getEnv("FLOWTRACK_SQLITE_PATH", c.Storage.SQLitePath)
	c.Log.Level = getEnv("FLOWTRACK_LOG_LEVEL", c.Log.Level)
	c.Daemon.Addr = getEnv("FLOWTRACK_DAEMON_ADDR", c.Daemon.Addr)
	c.Daemon.IntervalSec = getEnvInt("FLOWTRACK_DAEMON_INTERVAL", c.Daemon.IntervalSec)
}

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var problems []string

	backends := []string{BackendJSON, BackendSQLite}
	if !slices.Contains(backends, c.Storage.Backend) {
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of %v", c.Storage.Backend, backends))
	}
	if p := c.Budget.NearLimitPercent; p <= 0 || p > 100 {
		problems = append(problems, fmt.Sprintf("invalid near_limit_percent %g: must be in (0, 100]", p))
	}
	if c.Daemon.IntervalSec <= 0 {
		problems = append(problems, fmt.Sprintf("invalid daemon interval_sec %d: must be positive", c.Daemon.IntervalSec))
	}
	if strings.TrimSpace(c.Daemon.Addr) == "" {
		problems = append(problems, "daemon addr cannot be empty")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if _, ok := LookupCurrency(c.General.Currency); !ok {
		problems = append(problems, fmt.Sprintf("unknown currency %q", c.General.Currency))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
