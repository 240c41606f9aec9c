// Shared helpers for ladder CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rankwise/ladder/pkg/memory"
	"github.com/rankwise/ladder/pkg/sqlite"
	"github.com/rankwise/ladder/pkg/types"
)

// attachStore resolves the data directory, creates the configured backend,
// and attaches it. The caller must defer store.Detach().
func attachStore() (types.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	backend := configBackend
	if backend == "" {
		backend = defaultBackend
	}

	cfg := types.Config{
		Backend: backend,
		DataDir: dataDir,
	}

	var store types.Store
	switch cfg.Backend {
	case types.BackendMemory:
		store = memory.NewBackend()
	default:
		// Unknown backend names are rejected by Attach.
		store = sqlite.NewBackend()
	}

	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return store, nil
}

// userErrors are the sentinels caused by bad input rather than a failing
// system; they map to exitUserError.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidTitle,
	types.ErrStatusUnknown,
	types.ErrInvalidStatusFlip,
	types.ErrRankRequired,
	types.ErrInvalidRank,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
}

// isUserError reports whether err should exit with exitUserError.
func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail prints the error with a command prefix and exits with the user or
// system exit code.
func fail(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, err)
	if isUserError(err) {
		os.Exit(exitUserError)
	}
	os.Exit(exitSysError)
}

// failNotFound prints the standard not-found message and exits.
func failNotFound(id string) {
	fmt.Fprintf(os.Stderr, "todo %q not found\n", id)
	os.Exit(exitUserError)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal JSON:", err)
		os.Exit(exitSysError)
	}
	fmt.Println(string(out))
}

// shortID truncates a todo ID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// dueDateLayout is the date-only form accepted by --due flags.
const dueDateLayout = "2006-01-02"

// parseDue parses a --due flag value as YYYY-MM-DD or RFC3339.
func parseDue(s string) (*time.Time, error) {
	if t, err := time.Parse(dueDateLayout, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid due date %q (expected YYYY-MM-DD or RFC3339)", s)
}

// formatDue renders a due date for table display, empty when unset.
func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dueDateLayout)
}

// parseStatusFlag validates a --status flag value.
func parseStatusFlag(s string) (types.Status, error) {
	status := types.Status(s)
	if !types.IsValidStatus(status) {
		return "", fmt.Errorf("unknown status %q (valid: active, completed, archived)", s)
	}
	return status, nil
}
