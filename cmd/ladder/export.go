// Export command for the ladder CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/internal/jsonl"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all todos as JSON Lines",
	Long: `Export writes every todo as one JSON object per line, active ladder
first in rank order. With --out the file is written atomically; without
it the lines go to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		todos, err := store.All()
		if err != nil {
			fail("export", err)
		}

		records := make([]json.RawMessage, 0, len(todos))
		for _, todo := range todos {
			data, err := json.Marshal(todo)
			if err != nil {
				fmt.Fprintln(os.Stderr, "export: marshal todo:", err)
				os.Exit(exitSysError)
			}
			records = append(records, data)
		}

		if exportOut == "" {
			for _, rec := range records {
				fmt.Println(string(rec))
			}
			return nil
		}

		if err := jsonl.Write(exportOut, records); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		fmt.Printf("Exported %d todo(s) to %s\n", len(records), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
}
