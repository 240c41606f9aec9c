// Stats command for the ladder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show todo counts per status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "stats:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		stats, err := store.Stats()
		if err != nil {
			fail("stats", err)
		}

		if flagJSON {
			printJSON(stats)
			return nil
		}

		renderStats(os.Stdout, stats)
		return nil
	},
}
