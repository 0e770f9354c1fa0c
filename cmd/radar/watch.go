package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"FundRadar/internal/model"
	"FundRadar/internal/render"
	"FundRadar/internal/scheduler"
)

type watchFlags struct {
	runNow bool
	format string
}

func newWatchCmd(root *rootFlags) *cobra.Command {
	flags := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the scorecard on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			r, err := render.New(flags.format)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Metrics.Listen != "" {
				srv := serveMetrics(cfg.Metrics.Listen, a.metrics.Handler())
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			// The end bound follows the clock so each run sees the latest prices.
			rangeFn := func(now time.Time) (model.DateRange, error) { return cfg.DateRange(now) }
			opts := render.Options{Rank: true, Weights: cfg.Ranking}
			sched := scheduler.NewScheduler(ctx, a.runner, rangeFn, r, opts, cmd.OutOrStdout())
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if flags.runNow {
				log.Info().Msg("run-now enabled, executing scorecard task")
				sched.RunNowAsync()
			}

			log.Info().Msg("radar is watching. Press Ctrl+C to stop.")
			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.runNow, "run-now", false, "run once immediately before waiting for the schedule")
	cmd.Flags().StringVar(&flags.format, "format", "table", "output format: table or json")
	return cmd
}

func serveMetrics(addr string, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("listen", addr).Msg("metrics endpoint up")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv
}
