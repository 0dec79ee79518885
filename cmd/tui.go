package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
	"github.com/theirongolddev/flowtrack/internal/tui"
	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The alt screen owns the terminal, so -v logs go to a file instead.
	tuiLogger := log.Discard()
	if flagVerbose {
		path := filepath.Join(config.DataDir(), "tui.log")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		tuiLogger = log.New(log.Config{
			Level:     slog.LevelDebug,
			Component: log.ComponentTUI,
			Output:    f,
			JSON:      appCfg.Log.JSON,
		})
	}

	cfg := appCfg
	app := tui.NewApp(tui.Options{
		Config:    cfg,
		Open:      func() (*pipeline.Book, error) { return pipeline.Open(cfg, tuiLogger) },
		Today:     today,
		Logger:    tuiLogger,
		NeedSetup: !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
