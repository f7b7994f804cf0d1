package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/api"
	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/internal/store"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytical reports over HTTP",
	Long: `Start the HTTP API. Every report available on the command line is
exposed as a JSON endpoint under /api. The server runs until
interrupted with Ctrl+C.

Example:
  storepulse serve --host 0.0.0.0 --port 8080`,
	RunE: runServeCmd,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"listen address")
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"listen port")
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if serveHost != "" {
		cfg.Serve.Host = serveHost
	}
	if servePort > 0 {
		cfg.Serve.Port = servePort
	}

	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	server := api.NewServer(store.New(pool), cfg.Serve)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Listen()
	}()

	select {
	case sig := <-sigChan:
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		logging.Info().Msg("Server stopped")
		return nil

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
