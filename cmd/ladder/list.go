// List command for the ladder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/pkg/types"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos, active ladder first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		var todos []*types.Todo
		switch listStatus {
		case "", "all":
			todos, err = store.All()
		default:
			status, perr := parseStatusFlag(listStatus)
			if perr != nil {
				fmt.Fprintln(os.Stderr, "list:", perr)
				os.Exit(exitUserError)
			}
			todos, err = store.ByStatus(status)
		}
		if err != nil {
			fail("list", err)
		}

		if flagJSON {
			printJSON(todos)
			return nil
		}

		renderTodoList(os.Stdout, todos)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (active, completed, archived)")
}
