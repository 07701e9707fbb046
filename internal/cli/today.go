package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/api"
	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/hijri"
	"github.com/smokyabdulrahman/noor/internal/prayer"
)

const placeholder = "--:--"

func (a *app) newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer schedule (default command)",
		RunE:  a.runToday,
	}
}

func (a *app) runToday(cmd *cobra.Command, _ []string) error {
	view, err := a.loadToday(cmd.Context())
	if err != nil {
		return err
	}

	selected := a.selectedPrayers()
	status := a.hijriStatus(view.Data.Date.Hijri)

	var (
		prayers []prayer.Prayer
		window  *prayer.WindowResult
	)
	if requireTimings(view.Timings) == nil {
		prayers, err = prayer.ParseTimings(view.Data.Timings, view.Now, view.TZ, selected)
		if err != nil {
			return err
		}
		w, err := prayer.Window(view.Timings, view.Now)
		if err != nil {
			return err
		}
		window = &w
	}

	out := cmd.OutOrStdout()
	if a.flags.json {
		return printJSON(out, a.todayJSON(view, prayers, window, status))
	}
	a.printToday(out, view, selected, prayers, window, status)
	return nil
}

// selectedPrayers is the configured column list, or the six tracked events.
func (a *app) selectedPrayers() []string {
	if a.cfg.Prayers == "" {
		return prayer.DefaultPrayerNames
	}
	names := strings.Split(a.cfg.Prayers, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

func (a *app) printToday(w io.Writer, view *dayView, selected []string, prayers []prayer.Prayer, win *prayer.WindowResult, status hijri.Status) {
	timeFmt := a.goTimeFormat()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", display.Bold("Prayer Times"))
	fmt.Fprintf(w, "  %s\n", view.Loc.Label)
	fmt.Fprintf(w, "  %s\n", view.TZ)
	fmt.Fprintf(w, "  %s\n", formatGregorianDate(view.Now, view.Data.Date))
	if h := view.Data.Date.Hijri.Format(); h != "" {
		fmt.Fprintf(w, "  %s\n", h)
	}
	if status.IsRamadan {
		fmt.Fprintf(w, "  %s\n", display.Green(ramadanLine(status)))
	}
	fmt.Fprintln(w)

	width := 0
	for _, n := range selected {
		width = max(width, len(n))
	}

	if win == nil {
		for _, n := range selected {
			fmt.Fprintf(w, "  %-*s  %s\n", width, n, display.Gray(placeholder))
		}
		fmt.Fprintf(w, "\n  %s\n\n", display.Yellow("Prayer times are unavailable right now."))
		return
	}

	for _, p := range prayers {
		line := fmt.Sprintf("  %-*s  %s", width, p.Name, p.Time.Format(timeFmt))
		switch {
		case p.Name == win.Next && sameMinute(p.Time, win.NextTime):
			fmt.Fprintln(w, display.Accent(line)+display.Accent("  <- next in "+prayer.FormatRemaining(win.Remaining)))
		case p.Name == win.Active && sameMinute(p.Time, win.ActiveTime):
			fmt.Fprintln(w, display.Bold(line)+display.Dim("  now"))
		case p.Time.Before(view.Now):
			fmt.Fprintln(w, display.Dim(line))
		default:
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "\n  %s %3.0f%%  %s → %s  %s\n\n",
		display.ProgressBar(win.Progress, 20), win.Progress, win.Active, win.Next, win.Countdown())
}

func sameMinute(a, b time.Time) bool {
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}

// ramadanLine summarizes the Ramadan status in one line.
func ramadanLine(s hijri.Status) string {
	line := fmt.Sprintf("Ramadan day %d · %s", s.Date.Day, phaseLabel(s.Phase))
	switch {
	case s.IsOddNight:
		line += " · odd night of the last ten"
	case s.IsLastTenNights:
		line += " · last ten nights"
	}
	if s.Forced {
		line += " (forced)"
	}
	return line
}

func phaseLabel(p hijri.Phase) string {
	switch p {
	case hijri.Mercy:
		return "Mercy (days 1-10)"
	case hijri.Forgiveness:
		return "Forgiveness (days 11-20)"
	default:
		return "Refuge from the Fire (days 21-30)"
	}
}

// formatGregorianDate prefers the provider's date over formatting now.
func formatGregorianDate(now time.Time, d api.DateInfo) string {
	g := d.Gregorian
	if g.Day != "" && g.Month.En != "" && g.Year != "" {
		return g.Day + " " + g.Month.En + " " + g.Year
	}
	return now.Format("02 Jan 2006")
}

type locationJSON struct {
	Label     string  `json:"label"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`
}

type nextJSON struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Countdown string `json:"countdown"`
}

type todayJSON struct {
	Location locationJSON      `json:"location"`
	Date     dateJSON          `json:"date"`
	Timings  map[string]string `json:"timings"`
	Active   string            `json:"active,omitempty"`
	Next     *nextJSON         `json:"next,omitempty"`
	Progress float64           `json:"progress"`
	Ramadan  hijri.Status      `json:"ramadan"`
	Error    string            `json:"error,omitempty"`
}

type dateJSON struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri"`
}

func toLocationJSON(view *dayView) locationJSON {
	lat, lon := view.Data.Meta.Latitude, view.Data.Meta.Longitude
	if lat == 0 && lon == 0 {
		lat, lon = view.Loc.Query.Latitude, view.Loc.Query.Longitude
	}
	return locationJSON{
		Label:     view.Loc.Label,
		City:      view.Loc.City,
		Country:   view.Loc.Country,
		Timezone:  view.TZ.String(),
		Latitude:  lat,
		Longitude: lon,
		Source:    view.Loc.Source,
	}
}

func (a *app) todayJSON(view *dayView, prayers []prayer.Prayer, win *prayer.WindowResult, status hijri.Status) todayJSON {
	out := todayJSON{
		Location: toLocationJSON(view),
		Date: dateJSON{
			Gregorian: formatGregorianDate(view.Now, view.Data.Date),
			Hijri:     view.Data.Date.Hijri.Format(),
		},
		Timings: make(map[string]string),
		Ramadan: status,
	}
	for _, p := range prayers {
		out.Timings[strings.ToLower(p.Name)] = p.Time.Format(a.goTimeFormat())
	}
	if win == nil {
		out.Error = prayer.ErrMissingTimings.Error()
		return out
	}
	out.Active = strings.ToLower(win.Active)
	out.Progress = win.Progress
	out.Next = &nextJSON{
		Prayer:    strings.ToLower(win.Next),
		Time:      win.NextTime.Format(a.goTimeFormat()),
		Remaining: prayer.FormatRemaining(win.Remaining),
		Countdown: win.Countdown(),
	}
	return out
}
