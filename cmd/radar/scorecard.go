package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"FundRadar/internal/render"
)

type scorecardFlags struct {
	start  string
	end    string
	format string
	rank   bool
	top    int
	color  bool
}

func newScorecardCmd(root *rootFlags) *cobra.Command {
	flags := &scorecardFlags{}
	cmd := &cobra.Command{
		Use:   "scorecard",
		Short: "Build the scorecard once and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			if flags.start != "" {
				cfg.Range.Start = flags.start
			}
			if cmd.Flags().Changed("end") {
				cfg.Range.End = flags.end
			}
			rng, err := cfg.DateRange(time.Now())
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

			res, err := a.runner.Run(ctx, rng)
			if err != nil {
				return err
			}
			return r.Render(cmd.OutOrStdout(), res, render.Options{
				Rank:       flags.rank,
				Weights:    cfg.Ranking,
				Top:        flags.top,
				Color:      flags.color,
				PrettyJSON: true,
			})
		},
	}
	cmd.Flags().StringVar(&flags.start, "start", "", "first day of the price window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", "", "last day of the price window (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flags.format, "format", "table", "output format: table or json")
	cmd.Flags().BoolVar(&flags.rank, "rank", false, "order rows by combined opportunity score")
	cmd.Flags().IntVar(&flags.top, "top", 0, "print only the first N rows")
	cmd.Flags().BoolVar(&flags.color, "color", isTerminal(os.Stdout), "colorize table output")
	return cmd
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
