// Package cmd implements the flowtrack CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var (
	flagVerbose  bool
	flagDataFile string
	flagBackend  string
	flagToday    string
)

// Set by loadSettings before any command runs.
var (
	appCfg   config.Config
	currency config.Currency
	logger   = log.Discard()
)

var rootCmd = &cobra.Command{
	Use:               "flowtrack",
	Short:             "Personal income and expense ledger",
	Long:              "Track income and expenses, monthly budgets and recurring transactions.",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runStats,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagDataFile, "data-file", "", "Ledger JSON file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: json or sqlite (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Pretend today is this date (YYYY-MM-DD)")
	_ = rootCmd.PersistentFlags().MarkHidden("today")
}

// loadSettings reads .env, the config file and flag overrides, then sets
// up logging.
func loadSettings(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDataFile != "" {
		cfg.General.DataFile = flagDataFile
	}
	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if flagToday != "" {
		if _, err := model.ParseDate(flagToday); err != nil {
			return fmt.Errorf("--today: %w", err)
		}
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger = log.New(log.Config{
		Level:     level,
		Component: log.ComponentCLI,
		Output:    os.Stderr,
		JSON:      cfg.Log.JSON,
	})
	log.SetDefault(logger)

	appCfg = cfg
	currency = cfg.ResolveCurrency()
	return nil
}

func today() model.Date {
	if flagToday != "" {
		return model.MustParseDate(flagToday)
	}
	return model.Today()
}

// openBook loads the ledger from the configured backend. A snapshot that
// could not be read is reported on stderr and the ledger starts empty.
func openBook() (*pipeline.Book, error) {
	b, err := pipeline.Open(appCfg, logger)
	if err != nil {
		return nil, err
	}
	if b.Load.Status == ledger.LoadCorrupt {
		fmt.Fprintf(os.Stderr, "  Warning: %s could not be read (%v); starting with an empty ledger\n", b.Where, b.Load.Err)
		fmt.Fprintf(os.Stderr, "  The unreadable data will be kept alongside it on the next save.\n")
	}
	return b, nil
}

// withBook runs fn against the ledger and saves it afterwards when fn
// reports a change.
func withBook(fn func(b *pipeline.Book) (changed bool, err error)) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	changed, err := fn(b)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := b.Save(); err != nil {
		return fmt.Errorf("saving ledger to %s: %w", b.Where, err)
	}
	if b.Backup != "" {
		fmt.Fprintf(os.Stderr, "  Unreadable data moved to %s\n", b.Backup)
	}
	return nil
}

// findRecord parses an ID argument and looks the record up.
func findRecord(l *ledger.Ledger, arg string) (*ledger.Record, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q", arg)
	}
	r, ok := l.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("transaction #%d not found", id)
	}
	return r, nil
}
