package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/prayer"
)

func (a *app) newQueryCmd() *cobra.Command {
	var days string
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query a specific prayer time for today, or across multiple days with --days.\n\n" +
			"Valid prayer names: " + strings.Join(prayer.AllPrayerNames, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], days)
		},
	}
	cmd.Flags().StringVar(&days, "days", "", "Number of days to show (or 'week'/'month')")
	return cmd
}

// parseDays accepts a positive count or the words week and month.
func parseDays(s string) (int, error) {
	switch s {
	case "":
		return 1, nil
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 366 {
		return 0, fmt.Errorf("invalid --days %q: use a number between 1 and 366, 'week' or 'month'", s)
	}
	return n, nil
}

func canonicalPrayer(name string) (string, error) {
	for _, n := range prayer.AllPrayerNames {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown prayer %q; valid names: %s", name, strings.Join(prayer.AllPrayerNames, ", "))
}

func (a *app) runQuery(cmd *cobra.Command, name, daysFlag string) error {
	name, err := canonicalPrayer(name)
	if err != nil {
		return err
	}
	days, err := parseDays(daysFlag)
	if err != nil {
		return err
	}

	l, err := a.loadListing(cmd, days)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	timeFmt := a.goTimeFormat()

	type row struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	var rows []row
	tbl := display.NewTable("Date", name)
	for i, cd := range l.Days {
		date := cd.Date.In(l.TZ)
		parsed, err := prayer.ParseTimings(cd.Data.Timings, date, l.TZ, []string{name})
		if err != nil {
			return err
		}
		t := parsed[0].Time.Format(timeFmt)
		rows = append(rows, row{Date: date.Format(time.DateOnly), Time: t})
		tbl.AddRow(date.Format("Mon 02 Jan"), t)
		if date.Format(time.DateOnly) == l.Today {
			tbl.Highlight(i)
		}
	}

	if a.flags.json {
		return printJSON(out, map[string]any{"prayer": strings.ToLower(name), "days": rows})
	}
	if days == 1 {
		fmt.Fprintf(out, "%s %s\n", name, rows[0].Time)
		return nil
	}
	printHeader(out, fmt.Sprintf("%s, %d Days", name, days), l.Loc.Label)
	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}
