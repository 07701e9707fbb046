package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/hijri"
	"github.com/smokyabdulrahman/noor/internal/momentum"
	"github.com/smokyabdulrahman/noor/internal/store"
)

func (a *app) newRamadanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ramadan",
		Short: "Show the Ramadan phase, last-ten status and today's record",
		Long: "Classify today's hijri date into the Ramadan phases and show the\n" +
			"daily record and momentum. Set force_ramadan to preview outside Ramadan.",
		Args: cobra.NoArgs,
		RunE: a.runRamadan,
	}
}

// momentumService builds the service over s, with the local cache as the
// fallback copy when one is available.
func (a *app) momentumService(s store.Store, user string) *momentum.Service {
	var local momentum.LocalCache
	if c := a.localCache(); c != nil {
		local = c
	}
	return momentum.NewService(s, local, user)
}

type ramadanJSON struct {
	Hijri              string              `json:"hijri"`
	Status             hijri.Status        `json:"status"`
	NightsUntilLastTen int                 `json:"nights_until_last_ten"`
	RemainingOddNights []int               `json:"remaining_odd_nights"`
	Daily              *momentum.DailyStat `json:"daily,omitempty"`
	Momentum           *momentum.Momentum  `json:"momentum,omitempty"`
}

func (a *app) runRamadan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	view, err := a.loadToday(ctx)
	if err != nil {
		return err
	}
	status := a.hijriStatus(view.Data.Date.Hijri)

	out := ramadanJSON{
		Hijri:              view.Data.Date.Hijri.Format(),
		Status:             status,
		NightsUntilLastTen: status.NightsUntilLastTen(),
		RemainingOddNights: status.RemainingOddNights(),
	}
	if status.IsRamadan {
		out.Daily, out.Momentum = a.loadRecords(ctx)
	}

	if a.flags.json {
		return printJSON(cmd.OutOrStdout(), out)
	}
	printRamadan(cmd.OutOrStdout(), out)
	return nil
}

// loadRecords reads today's stat and momentum. Failures are logged and
// leave the record out of the view.
func (a *app) loadRecords(ctx context.Context) (*momentum.DailyStat, *momentum.Momentum) {
	s, user, err := a.openStore(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("records unavailable")
		return nil, nil
	}
	defer closeStore(s)

	svc := a.momentumService(s, user)
	var (
		stat *momentum.DailyStat
		m    *momentum.Momentum
	)
	if d, err := svc.Today(ctx); err == nil {
		stat = &d
	} else {
		log.Warn().Err(err).Msg("daily record unavailable")
	}
	if cur, err := svc.Current(ctx); err == nil {
		m = &cur
	} else {
		log.Warn().Err(err).Msg("momentum unavailable")
	}
	return stat, m
}

func printRamadan(w io.Writer, r ramadanJSON) {
	s := r.Status
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", display.Bold("Ramadan"))
	if r.Hijri != "" {
		fmt.Fprintf(w, "  %s\n", r.Hijri)
	}
	if !s.IsRamadan {
		fmt.Fprintf(w, "  %s\n\n", display.Dim("It is not Ramadan. Set force_ramadan to preview."))
		return
	}

	fmt.Fprintf(w, "  %s\n", display.Green(ramadanLine(s)))
	switch {
	case s.IsLastTenNights:
		fmt.Fprintf(w, "  Odd nights left: %s\n", joinInts(r.RemainingOddNights))
	default:
		fmt.Fprintf(w, "  Last ten nights begin in %d days\n", r.NightsUntilLastTen)
	}

	if d := r.Daily; d != nil {
		fmt.Fprintf(w, "\n  %s\n", display.Bold("Today"))
		fmt.Fprintf(w, "  Fasting    %s\n", check(d.Fasting))
		fmt.Fprintf(w, "  Taraweeh   %s\n", check(d.Taraweeh))
		fmt.Fprintf(w, "  Challenge  %s\n", check(d.ChallengeCompleted))
		fmt.Fprintf(w, "  Quran      %d pages\n", d.QuranPages)
	}
	if m := r.Momentum; m != nil {
		fmt.Fprintln(w)
		printMomentumLine(w, *m)
	}
	fmt.Fprintln(w)
}

func check(b bool) string {
	if b {
		return display.Green("✓")
	}
	return display.Gray("·")
}

func joinInts(ns []int) string {
	if len(ns) == 0 {
		return "none"
	}
	s := fmt.Sprint(ns[0])
	for _, n := range ns[1:] {
		s += fmt.Sprintf(", %d", n)
	}
	return s
}

// degradedNote prints a warning for writes that only reached the local cache.
func degradedNote(w io.Writer, err error) error {
	if errors.Is(err, momentum.ErrPersistenceDegraded) {
		fmt.Fprintf(w, "  %s\n", display.Yellow("Saved on this device only: the store is unreachable."))
		return nil
	}
	return err
}
