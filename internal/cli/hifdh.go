package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/display"
	"github.com/smokyabdulrahman/noor/internal/hifdh"
)

func (a *app) newHifdhCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hifdh",
		Short: "Track Quran memorization reviews",
		Long: "Record how each ayah went and schedule the next review on the\n" +
			"1, 3, 7, 14, 30, 90 day ladder. Without a subcommand, lists what is due.",
		Args: cobra.NoArgs,
		RunE: a.runHifdhDue,
	}

	var accuracy float64
	review := &cobra.Command{
		Use:   "review <surah:ayah> <status>",
		Short: "Record a review: memorized, mastered or needs-revision",
		Example: "  noor hifdh review 2:255 mastered\n" +
			"  noor hifdh review 67:1 needs-revision --accuracy 60",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var acc *float64
			if cmd.Flags().Changed("accuracy") {
				acc = &accuracy
			}
			return a.runHifdhReview(cmd, args[0], args[1], acc)
		},
	}
	review.Flags().Float64Var(&accuracy, "accuracy", 0, "Recitation accuracy in percent (0-100)")

	cmd.AddCommand(
		review,
		&cobra.Command{
			Use:   "due",
			Short: "List ayahs due for review",
			Args:  cobra.NoArgs,
			RunE:  a.runHifdhDue,
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Summarize progress by status",
			Args:  cobra.NoArgs,
			RunE:  a.runHifdhStats,
		},
	)
	return cmd
}

func (a *app) hifdhRepo(cmd *cobra.Command) (*hifdh.Repository, func(), error) {
	s, user, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return hifdh.NewRepository(s, user), func() { closeStore(s) }, nil
}

func (a *app) runHifdhReview(cmd *cobra.Command, ayah, status string, accuracy *float64) error {
	key, err := hifdh.ParseKey(ayah)
	if err != nil {
		return err
	}
	st, err := hifdh.ParseStatus(status)
	if err != nil {
		return err
	}

	repo, done, err := a.hifdhRepo(cmd)
	if err != nil {
		return err
	}
	defer done()

	p, err := repo.Record(cmd.Context(), key, st, accuracy, clock())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.flags.json {
		return printJSON(w, p)
	}
	fmt.Fprintf(w, "  %s  %s, next review %s (in %d %s)\n",
		display.Bold(p.Key.String()), statusColor(p.Status), p.NextReview.Format("Mon 2 Jan"), p.Interval, plural(p.Interval, "day"))
	return nil
}

func (a *app) runHifdhDue(cmd *cobra.Command, _ []string) error {
	repo, done, err := a.hifdhRepo(cmd)
	if err != nil {
		return err
	}
	defer done()

	due, err := repo.Due(cmd.Context(), clock())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.flags.json {
		if due == nil {
			due = []hifdh.AyahProgress{}
		}
		return printJSON(w, due)
	}
	if len(due) == 0 {
		fmt.Fprintln(w, "  Nothing due for review.")
		return nil
	}
	printDue(w, due)
	return nil
}

func printDue(w io.Writer, due []hifdh.AyahProgress) {
	t := display.NewTable("Ayah", "Status", "Due since", "Interval", "Accuracy")
	for _, p := range due {
		acc := "-"
		if p.Accuracy != nil {
			acc = strconv.FormatFloat(*p.Accuracy, 'f', -1, 64) + "%"
		}
		t.AddRow(p.Key.String(), string(p.Status), p.NextReview.Format("2006-01-02"), fmt.Sprintf("%dd", p.Interval), acc)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, t.Render())
	fmt.Fprintln(w)
}

func (a *app) runHifdhStats(cmd *cobra.Command, _ []string) error {
	repo, done, err := a.hifdhRepo(cmd)
	if err != nil {
		return err
	}
	defer done()

	all, err := repo.All(cmd.Context())
	if err != nil {
		return err
	}
	sum := hifdh.Summarize(all, clock())

	w := cmd.OutOrStdout()
	if a.flags.json {
		return printJSON(w, sum)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %d %s tracked, %d due\n\n", display.Bold("Hifdh"), sum.Total, plural(sum.Total, "ayah"), sum.Due)
	for _, st := range []hifdh.Status{hifdh.Learning, hifdh.Memorized, hifdh.NeedsRevision, hifdh.Mastered} {
		fmt.Fprintf(w, "  %-16s %d\n", st, sum.ByKind[st])
	}
	fmt.Fprintln(w)
	return nil
}

func statusColor(s hifdh.Status) string {
	switch s {
	case hifdh.Mastered:
		return display.Green(string(s))
	case hifdh.NeedsRevision:
		return display.Yellow(string(s))
	}
	return string(s)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
