// Text rendering for ladder CLI commands.
package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rankwise/ladder/pkg/types"
)

// renderTodoList writes the human-readable todo table with a count footer.
func renderTodoList(w io.Writer, todos []*types.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(w, "No todos found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tSTATUS\tTITLE\tDUE")
	fmt.Fprintln(tw, "----\t--\t------\t-----\t---")

	for _, todo := range todos {
		rank := "-"
		if r, ok := todo.Placement.Rank(); ok {
			rank = strconv.Itoa(r)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rank, shortID(todo.TodoID), todo.Placement.Status(), todo.Title, formatDue(todo.DueDate))
	}

	tw.Flush()
	fmt.Fprintf(w, "\nTotal: %d todo(s)\n", len(todos))
}

// renderStats writes the per-partition counts.
func renderStats(w io.Writer, stats types.Stats) {
	fmt.Fprintf(w, "Total:     %d\n", stats.Total)
	fmt.Fprintf(w, "Active:    %d\n", stats.Active)
	fmt.Fprintf(w, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(w, "Archived:  %d\n", stats.Archived)
}

// renderTodo writes the full details of one todo.
func renderTodo(w io.Writer, todo *types.Todo) {
	fmt.Fprintf(w, "ID:        %s\n", todo.TodoID)
	fmt.Fprintf(w, "Title:     %s\n", todo.Title)
	fmt.Fprintf(w, "Status:    %s\n", todo.Placement.Status())
	if rank, ok := todo.Placement.Rank(); ok {
		fmt.Fprintf(w, "Rank:      %d\n", rank)
	}
	if todo.DueDate != nil {
		fmt.Fprintf(w, "Due:       %s\n", formatDue(todo.DueDate))
	}
	fmt.Fprintf(w, "Created:   %s\n", todo.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated:   %s\n", todo.UpdatedAt.Format("2006-01-02 15:04:05"))
	if todo.Description != "" {
		fmt.Fprintf(w, "\n%s\n", todo.Description)
	}
}
