// Done command for the ladder CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/types"
)

var doneRank int

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Flip a todo between active and completed",
	Long: `Done completes an active todo, closing the rank gap it leaves behind.
Run on a completed todo it moves the todo back to active, which requires
--rank to say where it re-enters the ladder.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todoID := args[0]

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "done:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		var rank *int
		if cmd.Flags().Changed("rank") {
			rank = &doneRank
		}

		todo, err := store.ToggleCompleted(todoID, rank)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				failNotFound(todoID)
			}
			if errors.Is(err, types.ErrRankRequired) {
				fmt.Fprintln(os.Stderr, "done: this todo is completed; pass --rank to place it back on the ladder")
				os.Exit(exitUserError)
			}
			fail("done", err)
		}

		if flagJSON {
			printJSON(todo)
			return nil
		}

		if r, ok := todo.Placement.Rank(); ok {
			fmt.Printf("Reactivated #%d: %s\n", r, todo.Title)
		} else {
			fmt.Printf("Completed: %s\n", todo.Title)
		}
		return nil
	},
}

func init() {
	doneCmd.Flags().IntVar(&doneRank, "rank", 0, "rank to re-enter the ladder at (reactivation only)")
}
