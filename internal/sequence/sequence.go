// Package sequence implements the pure rank arithmetic shared by the store
// backends: landing-rank clamping for inserts, permutation validation for
// batch reorder, and the density audit over a set of active ranks.
package sequence

import (
	"fmt"

	"github.com/rankwise/ladder/pkg/types"
)

// MaxShiftDepth bounds how many occupied ranks a single insert may walk
// before giving up. A healthy list never reaches it: ranks are dense, so the
// walk ends at the first vacant rank, at worst the top of the list. Hitting
// the ceiling means the stored sequence is corrupted and needs Resequence.
const MaxShiftDepth = 1000

// Clamp returns the landing rank for inserting into count active todos.
// Requested ranks past the end land at count+1, an append. The caller
// rejects requested < 1 before clamping.
func Clamp(requested, count int) int {
	if requested > count+1 {
		return count + 1
	}
	return requested
}

// CheckDense verifies that ranks form exactly 1..len(ranks).
// Returns ErrInvariantViolation naming the first defect found.
func CheckDense(ranks []int) error {
	n := len(ranks)
	seen := make([]bool, n+1)
	for _, r := range ranks {
		if r < 1 || r > n {
			return fmt.Errorf("rank %d outside 1..%d: %w", r, n, types.ErrInvariantViolation)
		}
		if seen[r] {
			return fmt.Errorf("duplicate rank %d: %w", r, types.ErrInvariantViolation)
		}
		seen[r] = true
	}
	return nil
}

// CheckAssignment verifies that assignment maps exactly the ids in activeIDs
// onto a permutation of 1..len(activeIDs). Returns ErrInvalidRank naming a
// defect; with several defects the one reported follows map iteration order.
func CheckAssignment(assignment map[string]int, activeIDs []string) error {
	n := len(activeIDs)
	if len(assignment) != n {
		return fmt.Errorf("assignment covers %d todos, active set has %d: %w",
			len(assignment), n, types.ErrInvalidRank)
	}
	active := make(map[string]bool, n)
	for _, id := range activeIDs {
		active[id] = true
	}
	seen := make([]bool, n+1)
	for id, rank := range assignment {
		if !active[id] {
			return fmt.Errorf("todo %s is not active: %w", id, types.ErrInvalidRank)
		}
		if rank < 1 || rank > n {
			return fmt.Errorf("rank %d outside 1..%d: %w", rank, n, types.ErrInvalidRank)
		}
		if seen[rank] {
			return fmt.Errorf("duplicate rank %d: %w", rank, types.ErrInvalidRank)
		}
		seen[rank] = true
	}
	return nil
}
