// Reorder command for the ladder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <id>...",
	Short: "Reorder the whole active ladder",
	Long: `Reorder takes the complete new order of active todo IDs, top first:
the first ID gets rank 1, the second rank 2, and so on.

Every active todo must appear exactly once; a partial or duplicated list
is rejected and nothing changes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "reorder:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		assignment := make(map[string]int, len(args))
		for i, id := range args {
			assignment[id] = i + 1
		}
		if len(assignment) != len(args) {
			fmt.Fprintln(os.Stderr, "reorder: the same ID appears more than once")
			os.Exit(exitUserError)
		}

		if err := store.Reorder(assignment); err != nil {
			fail("reorder", err)
		}

		fmt.Printf("Reordered %d todo(s)\n", len(args))
		return nil
	},
}
