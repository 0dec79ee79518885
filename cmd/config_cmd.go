package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// runConfig prints the effective settings, after env and flag overrides.
func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency:   %s", currency.Code)
	if currency.Prefix != "" {
		fmt.Printf(" (%s)", currency.Prefix)
	}
	fmt.Println()
	fmt.Printf("    Data file:  %s\n", cfg.DataFilePath())
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend:    %s\n", cfg.Storage.Backend)
	if cfg.Storage.Backend == config.BackendSQLite {
		fmt.Printf("    Database:   %s\n", cfg.SQLitePath())
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Near limit: %.0f%%\n", cfg.Budget.NearLimitPercent)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:    %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:   %s\n", cfg.Daemon.Interval())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:      %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:      %s\n", cfg.Log.Level)
	fmt.Printf("    JSON:       %v\n", cfg.Log.JSON)
	fmt.Println()

	fmt.Println("  Run `flowtrack setup` to reconfigure.")
	return nil
}
