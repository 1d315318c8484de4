package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/kdmap"
	"github.com/hupe1980/kdmap/internal/server"
	"github.com/hupe1980/kdmap/prommetrics"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		addr     string
		rps      float64
		burst    int
		inflight int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve nearest-tile queries over HTTP",
		Long: `Starts an HTTP server with the routes

  GET /nearest?x=&y=[&type=]
  GET /knn?x=&y=[&k=][&type=...]
  GET /within?x=&y=&radius=[&type=...]
  GET /bounds
  GET /stats
  GET /metrics   (Prometheus)
  GET /healthz

Requests beyond --rate per second (with --burst) get 429 Too Many Requests,
requests beyond --max-inflight concurrent ones get 503 Service Unavailable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			collector := prommetrics.New("kdmap")
			m, err := a.openMap(cmd, kdmap.WithMetricsCollector(collector))
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Handler: server.New(m, server.Config{
					Rate:        rps,
					Burst:       burst,
					MaxInFlight: inflight,
					Metrics:     collector,
					Logger:      a.logger,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			cmd.Printf("Serving %s (%d tiles) on http://%s\n", m.Name(), m.Len(), ln.Addr())
			return serve(ctx, srv, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Float64Var(&rps, "rate", 0, "requests per second, 0 for unlimited")
	cmd.Flags().IntVar(&burst, "burst", 0, "rate limiter burst, defaults to the rate")
	cmd.Flags().Int64Var(&inflight, "max-inflight", 0, "concurrent request limit, 0 for unlimited")
	return cmd
}

// serve runs srv on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
