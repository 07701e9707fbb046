package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/momentum"
)

func (a *app) newMomentumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "momentum",
		Short: "Show the momentum meter, streak and multiplier",
		Args:  cobra.NoArgs,
		RunE:  a.runMomentumShow,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "award <points>",
		Short: "Add points to the momentum meter",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runMomentumAward,
	})
	return cmd
}

func (a *app) runMomentumShow(cmd *cobra.Command, _ []string) error {
	s, user, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	m, err := a.momentumService(s, user).Current(cmd.Context())
	if err != nil {
		return err
	}
	return a.printMomentum(cmd.OutOrStdout(), m)
}

func (a *app) runMomentumAward(cmd *cobra.Command, args []string) error {
	points, err := strconv.ParseFloat(args[0], 64)
	if err != nil || points < 0 || math.IsNaN(points) || math.IsInf(points, 0) {
		return fmt.Errorf("invalid points %q: want a non-negative number", args[0])
	}

	s, user, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	m, err := a.momentumService(s, user).Award(cmd.Context(), points)
	if err := degradedNote(cmd.ErrOrStderr(), err); err != nil {
		return err
	}
	return a.printMomentum(cmd.OutOrStdout(), m)
}

func (a *app) printMomentum(w io.Writer, m momentum.Momentum) error {
	if a.flags.json {
		return printJSON(w, m)
	}
	fmt.Fprintln(w)
	printMomentumLine(w, m)
	fmt.Fprintln(w)
	return nil
}

func printMomentumLine(w io.Writer, m momentum.Momentum) {
	fmt.Fprintf(w, "  %s  %s %3.0f%%\n", display.Bold("Momentum"), display.ProgressBar(m.Level, 20), m.Level)
	fmt.Fprintf(w, "  Streak %d %s, multiplier x%.1f\n", m.Streak, plural(m.Streak, "day"), m.Multiplier)
	if m.VaultUnlocked {
		fmt.Fprintf(w, "  %s\n", display.Green("Vault unlocked"))
	}
}

func (a *app) newDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show today's fasting, taraweeh, Quran and challenge record",
		Args:  cobra.NoArgs,
		RunE:  a.runDailyShow,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <field> <value>",
		Short: "Update one field of today's record",
		Long: fmt.Sprintf("Update today's record and award momentum points for new progress.\nFields: %s",
			strings.Join(momentum.DailyFields, ", ")),
		Example: "  noor daily set fasting true\n  noor daily set quran_pages 12",
		Args:    cobra.ExactArgs(2),
		RunE:    a.runDailySet,
	})
	return cmd
}

type dailyJSON struct {
	Daily    momentum.DailyStat `json:"daily"`
	Momentum momentum.Momentum  `json:"momentum"`
}

func (a *app) runDailyShow(cmd *cobra.Command, _ []string) error {
	s, user, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	svc := a.momentumService(s, user)
	d, err := svc.Today(cmd.Context())
	if err != nil {
		return err
	}
	m, err := svc.Current(cmd.Context())
	if err != nil {
		return err
	}
	return a.printDaily(cmd.OutOrStdout(), d, m)
}

func (a *app) runDailySet(cmd *cobra.Command, args []string) error {
	s, user, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(s)

	d, m, err := a.momentumService(s, user).UpdateDaily(cmd.Context(), args[0], args[1])
	if err := degradedNote(cmd.ErrOrStderr(), err); err != nil {
		return err
	}
	return a.printDaily(cmd.OutOrStdout(), d, m)
}

func (a *app) printDaily(w io.Writer, d momentum.DailyStat, m momentum.Momentum) error {
	if a.flags.json {
		return printJSON(w, dailyJSON{Daily: d, Momentum: m})
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %s\n\n", display.Bold("Today"), display.Dim(d.Date))
	fmt.Fprintf(w, "  Fasting    %s\n", check(d.Fasting))
	fmt.Fprintf(w, "  Taraweeh   %s\n", check(d.Taraweeh))
	fmt.Fprintf(w, "  Challenge  %s\n", check(d.ChallengeCompleted))
	fmt.Fprintf(w, "  Quran      %d pages\n\n", d.QuranPages)
	printMomentumLine(w, m)
	fmt.Fprintln(w)
	return nil
}
