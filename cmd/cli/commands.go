package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sheetcharts/domain/chart"
	"sheetcharts/internal/aggregate"
	"sheetcharts/internal/testkit"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newColumnsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <file>",
		Short: "List columns with their detected types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			columns, err := s.DatasetService.Columns(cmd.Context(), s.userID, s.datasetID)
			if err != nil {
				return err
			}

			rows := make([][]string, len(columns))
			for i, col := range columns {
				rows[i] = []string{
					strconv.Itoa(col.Index),
					col.Name,
					string(col.Type),
					strconv.Itoa(col.NonEmpty),
					strconv.Itoa(col.MissingCount),
					strconv.Itoa(col.UniqueCount),
				}
			}
			return printTable(cmd.OutOrStdout(), opts, columns,
				[]string{"#", "Column", "Type", "Non-empty", "Missing", "Unique"}, rows)
		},
	}
}

func newAggregateCmd(opts *globalOptions) *cobra.Command {
	var groupBy, field, function string
	var limit int

	cmd := &cobra.Command{
		Use:   "aggregate <file>",
		Short: "Group rows by one column and reduce another",
		Long: `Group rows by one column and reduce another per group.

Functions: sum, avg (average), count, max, min, median, std (stddev).
Unknown names fall back to sum.

Example: sheetcharts-cli aggregate sales.xlsx --group-by Region --field Revenue --func avg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows, err := s.ChartService.Aggregate(cmd.Context(), s.userID, s.datasetID, aggregate.GroupRequest{
				GroupBy:     groupBy,
				ValueColumn: field,
				Function:    function,
				Limit:       limit,
			})
			if err != nil {
				return err
			}

			out := make([][]string, len(rows))
			for i, r := range rows {
				out[i] = []string{r.Label, formatFloat(r.Value)}
			}
			return printTable(cmd.OutOrStdout(), opts, rows,
				[]string{groupBy, fmt.Sprintf("%s(%s)", aggregate.ParseFunction(function), field)}, out)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Column whose values form the groups")
	cmd.Flags().StringVar(&field, "field", "", "Column to aggregate")
	cmd.Flags().StringVar(&function, "func", "sum", "Aggregate function")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only use the first N rows (0 = all)")
	return cmd
}

func newHistogramCmd(opts *globalOptions) *cobra.Command {
	var column string
	var bins, limit int

	cmd := &cobra.Command{
		Use:   "histogram <file>",
		Short: "Bin a numeric column into equal-width buckets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows, err := s.ChartService.Aggregate(cmd.Context(), s.userID, s.datasetID, aggregate.StatRequest{
				Column:   column,
				Kind:     aggregate.StatHistogram,
				BinCount: bins,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			out := make([][]string, len(rows))
			for i, r := range rows {
				out[i] = []string{r.Range, strconv.Itoa(r.Count), strings.Repeat("#", r.Count)}
			}
			return printTable(cmd.OutOrStdout(), opts, rows, []string{"Range", "Count", ""}, out)
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Numeric column to bin")
	cmd.Flags().IntVar(&bins, "bins", aggregate.DefaultBinCount, "Number of bins")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only use the first N rows (0 = all)")
	return cmd
}

func newBoxplotCmd(opts *globalOptions) *cobra.Command {
	var column string
	var limit int

	cmd := &cobra.Command{
		Use:   "boxplot <file>",
		Short: "Five-number summary with Tukey fences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows, err := s.ChartService.Aggregate(cmd.Context(), s.userID, s.datasetID, aggregate.StatRequest{
				Column: column,
				Kind:   aggregate.StatBoxplot,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			b := rows[0].BoxStats
			out := [][]string{
				{"min", formatFloat(b.Min)},
				{"q1", formatFloat(b.Q1)},
				{"median", formatFloat(b.Median)},
				{"q3", formatFloat(b.Q3)},
				{"max", formatFloat(b.Max)},
				{"mean", formatFloat(b.Mean)},
				{"outliers", strconv.Itoa(b.OutlierCount)},
				{"method", b.Method},
			}
			return printTable(cmd.OutOrStdout(), opts, rows[0], []string{"Statistic", column}, out)
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Numeric column to summarize")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only use the first N rows (0 = all)")
	return cmd
}

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Descriptive statistics for a numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			summary, err := s.DatasetService.Summary(cmd.Context(), s.userID, s.datasetID, column)
			if err != nil {
				return err
			}

			out := [][]string{
				{"count", strconv.Itoa(summary.Count)},
				{"sum", formatFloat(summary.Sum)},
				{"mean", formatFloat(summary.Mean)},
				{"median", formatFloat(summary.Median)},
				{"std", formatFloat(summary.StdDev)},
				{"min", formatFloat(summary.Min)},
				{"q1", formatFloat(summary.Q1)},
				{"q3", formatFloat(summary.Q3)},
				{"max", formatFloat(summary.Max)},
				{"range", formatFloat(summary.Range)},
			}
			return printTable(cmd.OutOrStdout(), opts, summary, []string{"Statistic", column}, out)
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Numeric column")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var cfg chart.Config
	var chartType, formats, outDir string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a chart to png, xlsx, csv or pdf files",
		Long: `Render a chart to one or more formats. Formats are rendered concurrently.

Example: sheetcharts-cli export sales.csv --type bar --x Region --y Revenue --func sum --format png,xlsx --out charts/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := chart.ParseType(chartType)
			if !ok {
				return fmt.Errorf("unsupported chart type %q", chartType)
			}
			cfg.Type = t

			var wanted []chart.ExportFormat
			for _, name := range strings.Split(formats, ",") {
				f, ok := chart.ParseExportFormat(name)
				if !ok {
					return fmt.Errorf("unsupported format %q", strings.TrimSpace(name))
				}
				wanted = append(wanted, f)
			}

			s, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", outDir, err)
			}

			written := make([]string, len(wanted))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, format := range wanted {
				i, format := i, format
				g.Go(func() error {
					out, err := s.ChartService.ExportAdhoc(ctx, s.userID, s.datasetID, cfg, format)
					if err != nil {
						return err
					}
					path := filepath.Join(outDir, out.Filename)
					if err := os.WriteFile(path, out.Content, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", path, err)
					}
					written[i] = path
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			rows := make([][]string, len(written))
			for i, path := range written {
				rows[i] = []string{string(wanted[i]), path}
			}
			return printTable(cmd.OutOrStdout(), opts, written, []string{"Format", "File"}, rows)
		},
	}

	cmd.Flags().StringVar(&chartType, "type", "bar", "Chart type: bar, line, area, pie, doughnut, scatter, histogram, boxplot")
	cmd.Flags().StringVar(&cfg.XColumn, "x", "", "X axis column")
	cmd.Flags().StringVar(&cfg.YColumn, "y", "", "Y axis column")
	cmd.Flags().StringVar(&cfg.Column, "column", "", "Column for histogram and boxplot charts")
	cmd.Flags().StringVar(&cfg.AggregateFunction, "func", "", "Group and reduce with this function")
	cmd.Flags().StringVar(&cfg.Title, "title", "", "Chart title")
	cmd.Flags().IntVar(&cfg.BinCount, "bins", 0, "Histogram bins")
	cmd.Flags().IntVar(&cfg.Limit, "limit", 0, "Only use the first N rows (0 = all)")
	cmd.Flags().StringVar(&formats, "format", "png", "Comma-separated formats")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var rows int
	var seed int64
	var out string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic sales sheet for trying the other commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultSalesConfig()
			cfg.Rows = rows
			cfg.Seed = seed
			content, err := testkit.NewSalesDataGenerator(cfg).GenerateCSV()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			return os.WriteFile(out, content, 0o644)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 200, "Number of data rows")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().StringVar(&out, "out", "-", "Output file, or - for stdout")
	return cmd
}
