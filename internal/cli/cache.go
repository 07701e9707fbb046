package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoCache = errors.New("cache directory unavailable")

func (a *app) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c := a.localCache()
				if c == nil {
					return errNoCache
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Delete expired and unreadable entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c := a.localCache()
				if c == nil {
					return errNoCache
				}
				n, err := c.Prune()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired cache file(s).\n", n)
				return nil
			},
		},
	)
	return cmd
}
