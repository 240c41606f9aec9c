// Add command for the ladder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/types"
)

var (
	addTitle       string
	addDescription string
	addDue         string
	addRank        int
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new todo to the active ladder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := types.Draft{
			Title:       addTitle,
			Description: addDescription,
		}
		if addDue != "" {
			due, err := parseDue(addDue)
			if err != nil {
				fmt.Fprintln(os.Stderr, "add:", err)
				os.Exit(exitUserError)
			}
			draft.DueDate = due
		}

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "add:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		rank := addRank
		if !cmd.Flags().Changed("rank") {
			// No rank given: append below every current active todo.
			stats, err := store.Stats()
			if err != nil {
				fail("add", err)
			}
			rank = stats.Active + 1
		}

		todo, err := store.Create(draft, rank)
		if err != nil {
			fail("add", err)
		}

		if flagJSON {
			printJSON(todo)
		} else {
			r, _ := todo.Placement.Rank()
			fmt.Printf("Added #%d: %s (%s)\n", r, todo.Title, shortID(todo.TodoID))
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "todo title (required)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "todo description")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&addRank, "rank", 0, "insert at this rank (default: append at the bottom)")

	addCmd.MarkFlagRequired("title")
}
