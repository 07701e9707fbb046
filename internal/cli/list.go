package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/prayer"
)

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 || n > 366 {
					return fmt.Errorf("invalid number of days: %q (must be between 1 and 366)", args[0])
				}
				days = n
			}
			return a.runList(cmd, days)
		},
	}
}

func (a *app) newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return a.runList(cmd, 7) },
	}
}

func (a *app) newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return a.runList(cmd, 30) },
	}
}

// listing is a parsed multi-day range in the location's timezone.
type listing struct {
	Loc   location
	TZ    *time.Location
	Today string
	Days  []calendarDay
}

func (a *app) loadListing(cmd *cobra.Command, days int) (*listing, error) {
	ctx := cmd.Context()
	loc, err := a.resolveLocation(ctx)
	if err != nil {
		return nil, err
	}

	now := clock()
	if loc.Timezone != "" {
		now = now.In(zoneFor(loc.Timezone))
	}

	list, err := a.fetchCalendarDays(ctx, now, days, loc)
	if err != nil {
		return nil, err
	}

	tz := zoneFor(loc.Timezone, list[0].Data.Meta.Timezone)
	if local := now.In(tz); !sameDay(local, now) {
		now = local
		if list, err = a.fetchCalendarDays(ctx, now, days, loc); err != nil {
			return nil, err
		}
	}
	return &listing{Loc: loc, TZ: tz, Today: now.In(tz).Format(time.DateOnly), Days: list}, nil
}

type listDayJSON struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Timings map[string]string `json:"timings"`
}

func (a *app) runList(cmd *cobra.Command, days int) error {
	l, err := a.loadListing(cmd, days)
	if err != nil {
		return err
	}
	selected := a.selectedPrayers()
	timeFmt := a.goTimeFormat()
	out := cmd.OutOrStdout()

	tbl := display.NewTable(append([]string{"Date", "Hijri"}, selected...)...)
	var jsonDays []listDayJSON

	for i, cd := range l.Days {
		date := cd.Date.In(l.TZ)
		parsed, err := prayer.ParseTimings(cd.Data.Timings, date, l.TZ, selected)
		if err != nil {
			return err
		}

		row := []string{date.Format("Mon 02 Jan"), shortHijri(cd)}
		timings := make(map[string]string, len(parsed))
		for _, p := range parsed {
			row = append(row, p.Time.Format(timeFmt))
			timings[strings.ToLower(p.Name)] = p.Time.Format(timeFmt)
		}
		tbl.AddRow(row...)
		if date.Format(time.DateOnly) == l.Today {
			tbl.Highlight(i)
		}
		jsonDays = append(jsonDays, listDayJSON{
			Date:    date.Format("02 Jan 2006"),
			Hijri:   cd.Data.Date.Hijri.Format(),
			Timings: timings,
		})
	}

	if a.flags.json {
		return printJSON(out, map[string]any{
			"location": locationJSON{
				Label: l.Loc.Label, City: l.Loc.City, Country: l.Loc.Country,
				Timezone: l.TZ.String(), Latitude: l.Loc.Query.Latitude, Longitude: l.Loc.Query.Longitude,
				Source: l.Loc.Source,
			},
			"days": jsonDays,
		})
	}

	printHeader(out, fmt.Sprintf("Prayer Times, %d Days", days), l.Loc.Label)
	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

// shortHijri renders "12 Ramaḍān", empty when the provider sent no date.
func shortHijri(cd calendarDay) string {
	h := cd.Data.Date.Hijri
	if h.Day == "" || h.Month.En == "" {
		return ""
	}
	return strings.TrimLeft(h.Day, "0") + " " + h.Month.En
}

func printHeader(w io.Writer, title, label string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", display.Bold(title))
	fmt.Fprintf(w, "  %s\n\n", label)
}
