// Resequence command for the ladder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resequenceCmd = &cobra.Command{
	Use:   "resequence",
	Short: "Repair active ranks after external edits or crashes",
	Long: `Resequence rewrites active ranks so they run 1..N again, keeping the
existing order. Normal commands never need this; run it when a command
reports a rank sequence violation, or after editing the database by hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "resequence:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		report, err := store.Resequence()
		if err != nil {
			fail("resequence", err)
		}

		if flagJSON {
			printJSON(report)
			return nil
		}

		if report.Repaired {
			fmt.Printf("Repaired %d rank(s).\n", report.GapsFound)
		} else {
			fmt.Println("Ranks already dense; nothing to repair.")
		}
		return nil
	},
}
