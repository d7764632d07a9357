package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"sheetcharts/domain/core"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/config"
	"sheetcharts/internal/container"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options shared by every subcommand
type globalOptions struct {
	jsonOutput bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "sheetcharts-cli",
		Short: "Inspect spreadsheets and compute chart data locally",
		Long: `Run the sheetcharts aggregation engine against local .csv, .xlsx, .xlsm
and .parquet files without a database.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !opts.verbose {
				log.SetOutput(io.Discard)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of a table")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show component logs")

	rootCmd.AddCommand(
		newColumnsCmd(opts),
		newAggregateCmd(opts),
		newHistogramCmd(opts),
		newBoxplotCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
		newSampleCmd(),
	)
	return rootCmd
}

// session is an in-memory container holding one loaded file
type session struct {
	*container.Container
	userID    core.ID
	datasetID core.ID
}

// openFile parses path through the same upload pipeline the server uses
func openFile(ctx context.Context, path string) (*session, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.InitInMemory(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	result, err := c.DatasetService.Upload(ctx, &dataset.Upload{
		UserID:   core.DefaultUserID,
		Filename: filepath.Base(path),
		Content:  content,
	})
	if err != nil {
		return nil, err
	}
	return &session{Container: c, userID: core.DefaultUserID, datasetID: result.Dataset.ID}, nil
}

// printTable writes rows as a bordered table, or as JSON when asked
func printTable(w io.Writer, opts *globalOptions, value interface{}, header []string, rows [][]string) error {
	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
