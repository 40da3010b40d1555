package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaguanLabs/inplace"
	"github.com/ZaguanLabs/inplace/internal/app"
	"github.com/ZaguanLabs/inplace/internal/config"
	"github.com/ZaguanLabs/inplace/relay"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRelayCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the translation relay",
	}
	cmd.AddCommand(newRelayServeCmd(g))
	return cmd
}

func newRelayServeCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the relay over HTTP",
		Long: `Serve the translation relay over HTTP. Clients POST request envelopes
{"name": service, "body": payload} and receive {"message": ...} replies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := app.NewLogger(cfg.Log, g.stderr)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := app.NewRelay(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			ln, err := net.Listen("tcp", cfg.Relay.Listen)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Relay.Listen, err)
			}
			fmt.Fprintf(g.stderr, "Relay listening on %s\n", ln.Addr())

			return serveRelay(ctx, ln, relay.NewServer(rt.Handler, logger), logger)
		},
	}

	f := cmd.Flags()
	f.String("listen", ":8787", "Address to listen on")
	f.String("lang", inplace.DefaultTargetLang, "Target language for relay backends")
	f.String("cache", config.CacheMemory, "Reply cache (none, memory, redis, sqlite)")
	f.Duration("cache-ttl", time.Hour, "Reply cache TTL (0 for no expiry)")
	return cmd
}

// serveRelay serves until ctx is done, then shuts down gracefully.
func serveRelay(ctx context.Context, ln net.Listener, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down relay")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
