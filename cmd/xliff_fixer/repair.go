package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/xliff-fixer/internal/ingestion"
	"github.com/jonathan/xliff-fixer/internal/observability"
	"github.com/jonathan/xliff-fixer/internal/repair"
	"github.com/jonathan/xliff-fixer/internal/schemas"
	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var repairCmd = &cobra.Command{
	Use:   "repair FILE|GLOB...",
	Short: "Repair XLIFF/XML files",
	Long:  "Repairs each file with the chosen strategy and writes <name>_fixed<ext> next to it (or into --out) when the result is valid XML. Arguments may be doublestar globs such as 'locales/**/*.xlf'.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRepair,
}

var (
	repairStrategy    string
	repairOutputDir   string
	repairReportPath  string
	repairAPIKey      string
	repairConcurrency int
)

func init() {
	repairCmd.Flags().StringVarP(&repairStrategy, "strategy", "s", string(types.StrategyHeuristic), "Repair strategy: heuristic or ai")
	repairCmd.Flags().StringVarP(&repairOutputDir, "out", "o", "", "Output directory (defaults to each input file's directory)")
	repairCmd.Flags().StringVar(&repairReportPath, "report", "", "Path to write a JSON repair report")
	repairCmd.Flags().StringVar(&repairAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	repairCmd.Flags().IntVarP(&repairConcurrency, "concurrency", "c", 0, "Files repaired in parallel")

	rootCmd.AddCommand(repairCmd)
}

// batchOptions controls a repairFiles run.
type batchOptions struct {
	Strategy    types.Strategy
	OutputDir   string
	Concurrency int
	// OnLog also receives each repair log line. It may be called concurrently.
	OnLog func(types.LogEntry)
}

func runRepair(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if repairAPIKey != "" {
		cfg.APIKey = repairAPIKey
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = repairConcurrency
	}

	strategy, ok := types.ParseStrategy(repairStrategy)
	if !ok {
		return fmt.Errorf("invalid --strategy %q: must be heuristic or ai", repairStrategy)
	}
	if strategy == types.StrategyAI && cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required for --strategy ai")
	}

	files, err := ingestion.ExpandPaths(args)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	report, err := repairFiles(cmd.Context(), newService(cfg), files, batchOptions{
		Strategy:    strategy,
		OutputDir:   repairOutputDir,
		Concurrency: cfg.Concurrency,
	}, logger)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report, cfg.Verbose)

	if repairReportPath != "" {
		if err := writeReport(repairReportPath, report); err != nil {
			return err
		}
		logger.Info().Str("path", repairReportPath).Msg("report written")
	}

	if !report.AllValid() {
		return fmt.Errorf("%d of %d file(s) are still invalid XML", countInvalid(report), len(report.Files))
	}
	return nil
}

// repairFiles repairs files concurrently and returns their entries in argument order.
// Valid results are written to disk; the first read or AI failure cancels the batch.
func repairFiles(ctx context.Context, service *repair.Service, files []string, opts batchOptions, logger zerolog.Logger) (*types.RepairReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	entries := make([]types.ReportEntry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range files {
		g.Go(func() error {
			content, meta, err := ingestion.ReadFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			fileLogger := logger.With().Str("file", meta.Filename).Logger()
			result, err := service.Repair(gctx, repair.Input{
				Content:  content,
				Filename: meta.Filename,
				Strategy: opts.Strategy,
				OnLog: func(entry types.LogEntry) {
					fileLogger.Debug().Str("level", string(entry.Level)).Msg(entry.Message)
					if opts.OnLog != nil {
						opts.OnLog(entry)
					}
				},
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			entry := types.ReportEntry{
				Filename: path,
				Hash:     meta.Hash,
				Size:     meta.Size,
				Result:   result,
			}
			if result.IsValid {
				outDir := opts.OutputDir
				if outDir == "" {
					outDir = filepath.Dir(path)
				}
				outPath, err := ingestion.WriteOutput(outDir, meta.Filename, result.FixedContent)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				entry.OutputPath = outPath
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.RepairReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Strategy:    opts.Strategy,
		Files:       entries,
	}, nil
}

// writeReport validates the report against its schema and writes it to path.
func writeReport(path string, report *types.RepairReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := schemas.ValidateReport(data); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func printReport(out io.Writer, report *types.RepairReport, verbose bool) {
	printer := observability.NewPrinter(out)
	for _, entry := range report.Files {
		if verbose {
			printer.PrintRepairResult(entry.Filename, &entry.Result)
			continue
		}
		switch {
		case entry.Result.IsValid && !entry.Result.WasModified:
			fmt.Fprintf(out, "%s %s: already valid, written to %s\n", okMark(), entry.Filename, entry.OutputPath)
		case entry.Result.IsValid:
			fmt.Fprintf(out, "%s %s: repaired, written to %s\n", okMark(), entry.Filename, entry.OutputPath)
		default:
			fmt.Fprintf(out, "%s %s: still invalid: %s\n", warnMark(), entry.Filename, entry.Result.Errors[0])
		}
	}
}

func countInvalid(report *types.RepairReport) int {
	n := 0
	for _, f := range report.Files {
		if !f.Result.IsValid {
			n++
		}
	}
	return n
}
