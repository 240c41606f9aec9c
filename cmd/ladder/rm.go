// Rm command for the ladder CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/types"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todoID := args[0]

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "rm:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		if err := store.Delete(todoID); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				failNotFound(todoID)
			}
			fail("rm", err)
		}

		fmt.Printf("Deleted %s\n", todoID)
		return nil
	},
}
