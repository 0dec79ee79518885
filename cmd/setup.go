package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file, not appCfg, so flag overrides are not persisted.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	saved, err := tui.RunSetup(&cfg)
	if err != nil {
		return fmt.Errorf("setup form: %w", err)
	}
	if !saved {
		fmt.Println("  Setup cancelled, nothing changed.")
		return nil
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `flowtrack setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
