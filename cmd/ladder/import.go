// Import command for the ladder CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/internal/jsonl"
	"github.com/rankwise/ladder/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load todos from a JSON Lines file",
	Long: `Import reads a file in the export format and adds every todo to the
store. Imported todos get fresh IDs and timestamps; titles, descriptions,
due dates, and placements are preserved.

Active rows keep their relative order and land below any todos already on
the ladder. The whole file is validated before anything is written, and a
resequence pass afterwards guarantees the ladder ends up dense even if the
file was edited by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := jsonl.Read(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitUserError)
		}

		incoming := make([]types.Todo, 0, len(records))
		for i, rec := range records {
			var todo types.Todo
			if err := json.Unmarshal(rec, &todo); err != nil {
				fmt.Fprintf(os.Stderr, "import: record %d: %s\n", i+1, err)
				os.Exit(exitUserError)
			}
			if strings.TrimSpace(todo.Title) == "" {
				fmt.Fprintf(os.Stderr, "import: record %d: title must not be empty\n", i+1)
				os.Exit(exitUserError)
			}
			if todo.Placement.IsZero() {
				fmt.Fprintf(os.Stderr, "import: record %d: placement is required\n", i+1)
				os.Exit(exitUserError)
			}
			incoming = append(incoming, todo)
		}

		// Active rows first in rank order; each lands at the next free
		// position, so relative order survives even when the file carries
		// gaps or duplicate ranks. Non-active rows keep file order.
		sort.SliceStable(incoming, func(i, j int) bool {
			ri, iActive := incoming[i].Placement.Rank()
			rj, jActive := incoming[j].Placement.Rank()
			if iActive != jActive {
				return iActive
			}
			return ri < rj
		})

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		stats, err := store.Stats()
		if err != nil {
			fail("import", err)
		}
		activeNow := stats.Active

		imported := 0
		importedActive := 0
		for _, todo := range incoming {
			draft := types.Draft{
				Title:       todo.Title,
				Description: todo.Description,
				DueDate:     todo.DueDate,
			}

			switch todo.Placement.Status() {
			case types.StatusActive:
				activeNow++
				if _, err := store.Create(draft, activeNow); err != nil {
					fail("import", err)
				}
				importedActive++
			case types.StatusCompleted:
				created, err := store.Create(draft, activeNow+1)
				if err != nil {
					fail("import", err)
				}
				if _, err := store.ToggleCompleted(created.TodoID, nil); err != nil {
					fail("import", err)
				}
			case types.StatusArchived:
				created, err := store.Create(draft, activeNow+1)
				if err != nil {
					fail("import", err)
				}
				if _, err := store.ToggleArchived(created.TodoID, nil); err != nil {
					fail("import", err)
				}
			}
			imported++
		}

		report, err := store.Resequence()
		if err != nil {
			fail("import", err)
		}

		fmt.Printf("Imported %d todo(s) (%d active)\n", imported, importedActive)
		if report.Repaired {
			fmt.Printf("Resequenced %d rank(s).\n", report.GapsFound)
		}
		return nil
	},
}
