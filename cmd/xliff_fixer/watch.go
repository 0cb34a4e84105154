package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jonathan/xliff-fixer/internal/ingestion"
	"github.com/jonathan/xliff-fixer/internal/observability"
	"github.com/jonathan/xliff-fixer/internal/repair"
	"github.com/jonathan/xliff-fixer/internal/types"
	"github.com/jonathan/xliff-fixer/internal/watch"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Repair XLIFF/XML files as they change",
	Long:  "Watches DIR recursively and repairs every matching file after it is created or written, writing <name>_fixed<ext> like the repair command.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var (
	watchStrategy  string
	watchOutputDir string
	watchPattern   string
	watchDebounce  time.Duration
)

func init() {
	watchCmd.Flags().StringVarP(&watchStrategy, "strategy", "s", string(types.StrategyHeuristic), "Repair strategy: heuristic or ai")
	watchCmd.Flags().StringVarP(&watchOutputDir, "out", "o", "", "Output directory (defaults to each input file's directory)")
	watchCmd.Flags().StringVar(&watchPattern, "pattern", ingestion.DefaultPattern, "Doublestar pattern, relative to DIR, selecting files to repair")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a changed file is repaired")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	strategy, ok := types.ParseStrategy(watchStrategy)
	if !ok {
		return fmt.Errorf("invalid --strategy %q: must be heuristic or ai", watchStrategy)
	}
	if strategy == types.StrategyAI && cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or api_key config entry is required for --strategy ai")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	onChange := newWatchHandler(ctx, newService(cfg), batchOptions{
		Strategy:  strategy,
		OutputDir: watchOutputDir,
	}, cmd.OutOrStdout(), cfg.Verbose, logger)

	w, err := watch.New(args[0], watchPattern, watchDebounce, onChange)
	if err != nil {
		return err
	}

	logger.Info().Str("dir", args[0]).Str("pattern", watchPattern).Msg("watching for changes")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("watch stopped")
	return nil
}

// newWatchHandler returns a callback that repairs the changed file and prints its outcome,
// preceded by the repair's log lines when verbose. Failures are logged so one bad file
// does not stop the watch.
func newWatchHandler(ctx context.Context, service *repair.Service, opts batchOptions, out io.Writer, verbose bool, logger zerolog.Logger) func(watch.Event) {
	var mu sync.Mutex
	if verbose {
		printer := observability.NewPrinter(out)
		opts.OnLog = func(entry types.LogEntry) {
			mu.Lock()
			defer mu.Unlock()
			printer.PrintLog(entry)
		}
	}
	return func(ev watch.Event) {
		logger.Debug().Str("file", ev.Path).Str("op", ev.Op).Msg("change detected")

		report, err := repairFiles(ctx, service, []string{ev.Path}, opts, logger)
		if err != nil {
			logger.Error().Err(err).Str("file", ev.Path).Msg("repair failed")
			return
		}

		mu.Lock()
		defer mu.Unlock()
		printReport(out, report, verbose)
	}
}
