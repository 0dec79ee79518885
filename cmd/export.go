package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/export"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var (
	flagExportFormat string
	flagExportOutput string
	flagImportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ledger as CSV or JSON",
	Example: `  flowtrack export > ledger.csv
  flowtrack export --format json -o backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add transactions from a CSV or JSON export, skipping duplicates",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "csv", "csv or json")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Write to file instead of stdout")
	importCmd.Flags().StringVarP(&flagImportFormat, "format", "f", "", "csv or json (default from file extension)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format := strings.ToLower(flagExportFormat)
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown export format %q: want csv or json", flagExportFormat)
	}

	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	var w io.Writer = os.Stdout
	if flagExportOutput != "" {
		f, err := os.Create(flagExportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOutput, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	n := b.Ledger.Len()
	if format == "csv" {
		if n, err = export.WriteCSV(w, b.Ledger.All()); err != nil {
			return err
		}
	} else if err := b.Ledger.WriteSnapshot(w); err != nil {
		return err
	}

	logger.Debug("exported", log.FieldOperation, log.OpExport, log.FieldCount, n, log.FieldPath, flagExportOutput)
	if flagExportOutput != "" {
		fmt.Fprintf(os.Stderr, "  Wrote %d transactions to %s\n", n, flagExportOutput)
	}
	return nil
}

func runImport(_ *cobra.Command, args []string) error {
	path := args[0]
	format := strings.ToLower(flagImportFormat)
	if format == "" {
		format = "csv"
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			format = "json"
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var snap ledger.Snapshot
	switch format {
	case "csv":
		snap, err = export.ReadCSV(f)
	case "json":
		snap, err = ledger.DecodeSnapshot(f)
	default:
		return fmt.Errorf("unknown import format %q: want csv or json", flagImportFormat)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	return withBook(func(b *pipeline.Book) (bool, error) {
		res := pipeline.Merge(b.Ledger, snap)
		fmt.Printf("  Imported %d transactions (%d duplicates skipped", res.Added, res.Duplicates)
		if res.Invalid > 0 {
			fmt.Printf(", %d invalid", res.Invalid)
		}
		fmt.Println(")")
		return res.Added > 0, nil
	})
}
