package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/prayer"
)

const formatHelp = "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, " +
	"short-name-and-time, short-name-and-remaining, name-and-countdown, full, or a custom Go template " +
	"over .Name .ShortName .Active .Time .Remaining .Countdown .Hours .Minutes .Progress"

func (a *app) newNextCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Print the next prayer on one line, for status bars such as tmux.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runNext(cmd, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", prayer.FormatFull, formatHelp)
	return cmd
}

type nextOutput struct {
	nextJSON
	Active   string  `json:"active"`
	Progress float64 `json:"progress"`
}

func (a *app) runNext(cmd *cobra.Command, format string) error {
	view, err := a.loadToday(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Status bars should never show an error.
	if err := requireTimings(view.Timings); err != nil {
		if a.flags.json {
			return printJSON(out, map[string]string{"error": err.Error()})
		}
		fmt.Fprint(out, "-- "+placeholder)
		return nil
	}

	win, err := prayer.Window(view.Timings, view.Now)
	if err != nil {
		return err
	}

	if a.flags.json {
		return printJSON(out, nextOutput{
			nextJSON: nextJSON{
				Prayer:    strings.ToLower(win.Next),
				Time:      win.NextTime.Format(a.goTimeFormat()),
				Remaining: prayer.FormatRemaining(win.Remaining),
				Countdown: win.Countdown(),
			},
			Active:   strings.ToLower(win.Active),
			Progress: win.Progress,
		})
	}
	fmt.Fprint(out, prayer.FormatWindow(win, format, a.goTimeFormat()))
	return nil
}
