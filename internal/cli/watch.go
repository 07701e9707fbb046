package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/prayer"
	"github.com/smokyabdulrahman/noor/internal/ticker"
)

// watchPeriod is the countdown refresh rate.
var watchPeriod = time.Second

func (a *app) newWatchCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live countdown to the next prayer",
		Long:  "Redraw the countdown to the next prayer every second until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", prayer.FormatNameAndCountdown, formatHelp)
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, format string) error {
	ctx := cmd.Context()
	view, err := a.loadToday(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	day := view.Now.Format(time.DateOnly)

	tick := func(time.Time) {
		now := clock().In(view.TZ)
		// Timings are per day; refetch once the date rolls over.
		if d := now.Format(time.DateOnly); d != day {
			if fresh, err := a.loadToday(ctx); err == nil {
				view, day = fresh, d
			} else {
				log.Warn().Err(err).Msg("refreshing timings")
			}
		}
		drawWatchLine(out, view, now, format, a.goTimeFormat())
	}

	if err := ticker.New(watchPeriod, tick).Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

func drawWatchLine(w io.Writer, view *dayView, now time.Time, format, timeFmt string) {
	line := "-- " + placeholder
	if requireTimings(view.Timings) == nil {
		win, err := prayer.Window(view.Timings, now)
		if err != nil {
			log.Warn().Err(err).Msg("computing prayer window")
			return
		}
		line = display.ProgressBar(win.Progress, 10) + " " + prayer.FormatWindow(win, format, timeFmt)
	}
	// Clear the line before redrawing so shorter output leaves no residue.
	fmt.Fprint(w, "\r\x1b[K"+line)
}
