package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/geocalc/internal/mcp"
	"github.com/khanglvm/geocalc/internal/version"
)

// NewServeCmd creates the 'serve' command for running the JSON-RPC server.
//
// The server exposes 3 tools via stdio transport:
// geometry_compute, geometry_stats and geometry_shapes.
func NewServeCmd(app *App) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the geocalc MCP server using stdio transport.

This server exposes 3 tools to AI clients:
  - geometry_compute - Compute a 2D or 3D shape and record it
  - geometry_stats   - Statistics over the calculation history
  - geometry_shapes  - Supported shapes and their parameters

With --metrics-addr, Prometheus metrics are served over HTTP at /metrics.`,
		Example: `  # Run directly
  geocalc serve

  # Expose metrics on localhost:9464
  geocalc serve --metrics-addr 127.0.0.1:9464`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, app, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

// runServe starts the server with signal handling.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(cmd *cobra.Command, app *App, metricsAddr string) error {
	tracker, err := app.NewTracker()
	if err != nil {
		return err
	}
	defer tracker.Stop()

	c, err := app.Calculator(tracker, false)
	if err != nil {
		return err
	}
	logger := app.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if metricsAddr != "" {
		shutdown, err := serveMetrics(ctx, app, metricsAddr)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	server := mcp.NewServer(c, mcp.Options{Version: version.Get().Version, Logger: logger})
	err = server.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())

	if ctx.Err() != nil {
		logger.Info().Msg("received signal, shutting down gracefully")
	}
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// serveMetrics starts the /metrics listener and returns its shutdown func.
func serveMetrics(ctx context.Context, app *App, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics().Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger := app.Logger()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics listener stopped")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics listener shutdown")
		}
	}, nil
}
