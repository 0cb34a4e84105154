package main

import (
	"os"

	"github.com/jonathan/xliff-fixer/internal/observability"
	"github.com/jonathan/xliff-fixer/internal/server"
	"github.com/jonathan/xliff-fixer/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that accepts uploads, repairs them and serves the fixed files for download.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default 8080 or $PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	logger := observability.NewJSONLogger(os.Stderr, cfg.Verbose)
	if !cfg.RateLimited() {
		logger.Warn().Msg("rate limiting disabled")
	}

	srv := server.New(server.Config{
		Port:           cfg.Port,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Service:        newService(cfg),
		RateLimit:      ratelimit.LoadConfig(cfg.RateLimitEnabled),
		Logger:         &logger,
	})
	if cfg.APIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, AI repair disabled")
	}

	return srv.Start()
}
