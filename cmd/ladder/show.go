// Show command for the ladder CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Display a todo with full details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todoID := args[0]

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "show:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		todo, err := store.Get(todoID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				failNotFound(todoID)
			}
			fail("show", err)
		}

		if flagJSON {
			printJSON(todo)
			return nil
		}

		renderTodo(os.Stdout, todo)
		return nil
	},
}
