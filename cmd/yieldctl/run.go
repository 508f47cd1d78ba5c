package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libyield-go/engine"
)

func newRunCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the distribution keeper and serve metrics until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(e.Metrics(), promhttp.HandlerOpts{}))
				srv := &http.Server{
					Addr:              a.cfg.ListenAddr,
					Handler:           mux,
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.log.WithError(err).Error("metrics endpoint stopped")
					}
				}()
				a.log.WithField("addr", a.cfg.ListenAddr).Info("serving metrics")

				err := e.RunKeeper(ctx, interval)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)

				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", engine.DefaultKeeperInterval, "how often to check for a due sweep")
	return cmd
}
