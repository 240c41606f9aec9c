// Update command for the ladder CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/types"
)

var (
	updateTitle       string
	updateDescription string
	updateDue         string
	updateClearDue    bool
	updateStatus      string
	updateRank        int
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update todo fields, status, or rank",
	Long: `Update applies any combination of field edits, a status move, and a
rank change to one todo in a single transaction.

Moving a completed or archived todo back to active requires --rank. A rank
past the end of the ladder is clamped to the last position.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todoID := args[0]
		flags := cmd.Flags()

		patch := types.Patch{}
		if flags.Changed("title") {
			patch.Title = &updateTitle
		}
		if flags.Changed("description") {
			patch.Description = &updateDescription
		}
		if flags.Changed("due") {
			due, err := parseDue(updateDue)
			if err != nil {
				fmt.Fprintln(os.Stderr, "update:", err)
				os.Exit(exitUserError)
			}
			patch.DueDate = due
		}
		if updateClearDue {
			patch.ClearDueDate = true
		}
		if flags.Changed("status") {
			status, err := parseStatusFlag(updateStatus)
			if err != nil {
				fmt.Fprintln(os.Stderr, "update:", err)
				os.Exit(exitUserError)
			}
			patch.Status = &status
		}
		if flags.Changed("rank") {
			patch.Rank = &updateRank
		}

		if patch.IsZero() {
			fmt.Fprintln(os.Stderr, "update: nothing to change (provide at least one flag)")
			os.Exit(exitUserError)
		}

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "update:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		todo, err := store.Update(todoID, patch)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				failNotFound(todoID)
			}
			if errors.Is(err, types.ErrRankRequired) {
				fmt.Fprintln(os.Stderr, "update: moving this todo to active needs --rank")
				os.Exit(exitUserError)
			}
			fail("update", err)
		}

		if flagJSON {
			printJSON(todo)
		} else {
			fmt.Printf("Updated %s\n", todo.TodoID)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "set the title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "set the description")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "set the due date (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "remove the due date")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "move to status (active, completed, archived)")
	updateCmd.Flags().IntVar(&updateRank, "rank", 0, "place at this active rank")
}
