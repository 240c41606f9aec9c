// Archive command for the ladder CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/types"
)

var archiveRank int

var archiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Flip a todo between active and archived",
	Long: `Archive shelves an active todo, closing the rank gap it leaves behind.
Run on an archived todo it moves the todo back to active, which requires
--rank to say where it re-enters the ladder.

Completed todos cannot be archived here; move them with update --status.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todoID := args[0]

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "archive:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		var rank *int
		if cmd.Flags().Changed("rank") {
			rank = &archiveRank
		}

		todo, err := store.ToggleArchived(todoID, rank)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				failNotFound(todoID)
			}
			if errors.Is(err, types.ErrRankRequired) {
				fmt.Fprintln(os.Stderr, "archive: this todo is archived; pass --rank to place it back on the ladder")
				os.Exit(exitUserError)
			}
			fail("archive", err)
		}

		if flagJSON {
			printJSON(todo)
			return nil
		}

		if r, ok := todo.Placement.Rank(); ok {
			fmt.Printf("Reactivated #%d: %s\n", r, todo.Title)
		} else {
			fmt.Printf("Archived: %s\n", todo.Title)
		}
		return nil
	},
}

func init() {
	archiveCmd.Flags().IntVar(&archiveRank, "rank", 0, "rank to re-enter the ladder at (reactivation only)")
}
