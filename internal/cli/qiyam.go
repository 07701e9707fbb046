package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/qiyam"
	"github.com/smokyabdulrahman/noor/internal/ticker"
)

// qiyamPeriod is how often --watch recomputes the plan.
var qiyamPeriod = time.Minute

func (a *app) newQiyamCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "qiyam",
		Short: "Show the night phase before Fajr and suggested acts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runQiyam(cmd, watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Recompute every minute until interrupted")
	return cmd
}

type qiyamJSON struct {
	Phase          qiyam.Phase `json:"phase"`
	Remaining      string      `json:"remaining"`
	Fajr           string      `json:"fajr"`
	LastThirdStart string      `json:"last_third_start"`
	Acts           []qiyam.Act `json:"acts"`
}

func (a *app) runQiyam(cmd *cobra.Command, watch bool) error {
	ctx := cmd.Context()
	view, err := a.loadToday(ctx)
	if err != nil {
		return err
	}
	if err := requireTimings(view.Timings); err != nil {
		return fmt.Errorf("cannot schedule qiyam: %w", err)
	}
	out := cmd.OutOrStdout()

	render := func(now time.Time) error {
		plan, err := qiyam.Schedule(view.Timings.Fajr, view.Timings.Maghrib, now)
		if err != nil {
			return err
		}
		if a.flags.json {
			return printJSON(out, qiyamJSON{
				Phase:          plan.Phase,
				Remaining:      plan.Remaining(),
				Fajr:           plan.Fajr.Format(a.goTimeFormat()),
				LastThirdStart: plan.LastThirdStart.Format(a.goTimeFormat()),
				Acts:           plan.Acts,
			})
		}
		printQiyam(out, plan, a.goTimeFormat())
		return nil
	}

	if !watch {
		return render(view.Now)
	}
	return ticker.New(qiyamPeriod, func(time.Time) {
		if err := render(clock().In(view.TZ)); err != nil {
			log.Warn().Err(err).Msg("qiyam schedule")
		}
	}).Run(ctx)
}

func printQiyam(w io.Writer, p qiyam.Plan, timeFmt string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %s\n", display.Bold("Qiyam"), display.Accent(string(p.Phase)))
	if p.Phase != qiyam.Daytime {
		fmt.Fprintf(w, "  Fajr at %s, in %s\n", p.Fajr.Format(timeFmt), p.Remaining())
		fmt.Fprintf(w, "  Last third of the night from %s\n", p.LastThirdStart.Format(timeFmt))
	}
	fmt.Fprintln(w)
	for _, act := range p.Acts {
		fmt.Fprintf(w, "  %s  %s\n", display.Cyan(fmt.Sprintf("%-14s", act.TimeLabel)), act.Act)
		fmt.Fprintf(w, "  %-14s  %s\n", "", display.Dim(act.Benefit))
	}
	fmt.Fprintln(w)
}
