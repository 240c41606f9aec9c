// Unit tests for the sequencing engine: batch reorder, resequence repair,
// behavior over corrupted rank states, and rank density across random
// operation sequences.
package sqlite

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankwise/ladder/pkg/types"
)

// breakRanks writes raw rank values directly, bypassing the engine. Pass
// nil to null a rank out. Simulates out-of-band edits and crash leftovers.
func breakRanks(t *testing.T, b *Backend, ranks map[string]any) {
	t.Helper()
	for id, rank := range ranks {
		_, err := b.db.Exec("UPDATE todos SET rank = ? WHERE todo_id = ?", rank, id)
		require.NoError(t, err)
	}
}

// rawRank reads a rank straight from the table.
func rawRank(t *testing.T, b *Backend, id string) any {
	t.Helper()
	var rank any
	require.NoError(t, b.db.QueryRow("SELECT rank FROM todos WHERE todo_id = ?", id).Scan(&rank))
	return rank
}

func TestReorderRoundTrip(t *testing.T) {
	b := setupBackend(t)
	titles := []string{"a", "b", "c", "d", "e"}
	ids := make(map[string]string, len(titles))
	for i, title := range titles {
		ids[title] = mustCreate(t, b, title, i+1).TodoID
	}

	// Reverse the list.
	assignment := map[string]int{
		ids["a"]: 5, ids["b"]: 4, ids["c"]: 3, ids["d"]: 2, ids["e"]: 1,
	}
	require.NoError(t, b.Reorder(assignment))

	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, activeTitles(t, b))
	requireDense(t, b)
}

func TestReorderIdentity(t *testing.T) {
	b := setupBackend(t)
	a := mustCreate(t, b, "a", 1)
	c := mustCreate(t, b, "b", 2)

	require.NoError(t, b.Reorder(map[string]int{a.TodoID: 1, c.TodoID: 2}))
	assert.Equal(t, []string{"a", "b"}, activeTitles(t, b))
}

func TestReorderRejectsBadAssignments(t *testing.T) {
	b := setupBackend(t)
	a := mustCreate(t, b, "a", 1)
	bb := mustCreate(t, b, "b", 2)
	c := mustCreate(t, b, "c", 3)

	tests := []struct {
		name       string
		assignment map[string]int
	}{
		{
			name:       "missing todo",
			assignment: map[string]int{a.TodoID: 1, bb.TodoID: 2},
		},
		{
			name:       "unknown todo",
			assignment: map[string]int{a.TodoID: 1, bb.TodoID: 2, "ghost": 3},
		},
		{
			name:       "duplicate ranks",
			assignment: map[string]int{a.TodoID: 1, bb.TodoID: 1, c.TodoID: 2},
		},
		{
			name:       "rank out of range",
			assignment: map[string]int{a.TodoID: 1, bb.TodoID: 2, c.TodoID: 4},
		},
		{
			name:       "rank zero",
			assignment: map[string]int{a.TodoID: 0, bb.TodoID: 1, c.TodoID: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Reorder(tt.assignment)
			assert.ErrorIs(t, err, types.ErrInvalidRank)
			// Rejected before any write: order unchanged.
			assert.Equal(t, []string{"a", "b", "c"}, activeTitles(t, b))
		})
	}
}

func TestReorderEmptySet(t *testing.T) {
	b := setupBackend(t)
	require.NoError(t, b.Reorder(map[string]int{}))
}

func TestResequenceHealthyReportsNothing(t *testing.T) {
	b := setupBackend(t)
	mustCreate(t, b, "a", 1)
	mustCreate(t, b, "b", 2)

	report, err := b.Resequence()
	require.NoError(t, err)
	assert.Equal(t, types.RepairReport{Repaired: false, GapsFound: 0}, report)
}

func TestResequenceRepairsGaps(t *testing.T) {
	b := setupBackend(t)
	a := mustCreate(t, b, "a", 1)
	bb := mustCreate(t, b, "b", 2)
	c := mustCreate(t, b, "c", 3)

	breakRanks(t, b, map[string]any{a.TodoID: 10, bb.TodoID: 20, c.TodoID: 30})

	report, err := b.Resequence()
	require.NoError(t, err)
	assert.Equal(t, types.RepairReport{Repaired: true, GapsFound: 3}, report)
	assert.Equal(t, []string{"a", "b", "c"}, activeTitles(t, b))
	requireDense(t, b)

	// Idempotent: a second run finds nothing to repair.
	report, err = b.Resequence()
	require.NoError(t, err)
	assert.Equal(t, types.RepairReport{Repaired: false, GapsFound: 0}, report)
}

func TestResequencePreservesRankOrder(t *testing.T) {
	b := setupBackend(t)
	a := mustCreate(t, b, "a", 1)
	bb := mustCreate(t, b, "b", 2)
	c := mustCreate(t, b, "c", 3)

	// Scatter the ranks out of creation order.
	breakRanks(t, b, map[string]any{a.TodoID: 7, bb.TodoID: 2, c.TodoID: 5})

	report, err := b.Resequence()
	require.NoError(t, err)
	// b keeps rank 2; a and c move.
	assert.Equal(t, types.RepairReport{Repaired: true, GapsFound: 2}, report)
	assert.Equal(t, []string{"b", "c", "a"}, activeTitles(t, b))
	requireDense(t, b)
}

func TestResequenceRepairsMissingRank(t *testing.T) {
	b := setupBackend(t)
	a := mustCreate(t, b, "a", 1)
	mustCreate(t, b, "b", 2)
	mustCreate(t, b, "c", 3)

	breakRanks(t, b, map[string]any{a.TodoID: nil})

	report, err := b.Resequence()
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	// The unranked todo sorts last; the others close up.
	assert.Equal(t, []string{"b", "c", "a"}, activeTitles(t, b))
	requireDense(t, b)
}

func TestResequenceRepairsDuplicates(t *testing.T) {
	b := setupBackend(t)
	a := mustCreate(t, b, "a", 1)
	bb := mustCreate(t, b, "b", 2)
	c := mustCreate(t, b, "c", 3)

	breakRanks(t, b, map[string]any{a.TodoID: 1, bb.TodoID: 1, c.TodoID: 2})

	report, err := b.Resequence()
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	// Ties on rank resolve by creation order: a stays first.
	assert.Equal(t, []string{"a", "b", "c"}, activeTitles(t, b))
	requireDense(t, b)
}

// A mutation over a gapped sequence fails its post-condition audit and must
// roll back wholesale, leaving the corrupted state for Resequence.
func TestMutationOverGapRollsBack(t *testing.T) {
	b := setupBackend(t)
	a := mustCreate(t, b, "a", 1)
	bb := mustCreate(t, b, "b", 2)

	breakRanks(t, b, map[string]any{bb.TodoID: 3})

	_, err := b.Create(types.Draft{Title: "x"}, 10)
	assert.ErrorIs(t, err, types.ErrInvariantViolation)

	// Nothing committed: the raw ranks still show the original gap.
	assert.EqualValues(t, 1, rawRank(t, b, a.TodoID))
	assert.EqualValues(t, 3, rawRank(t, b, bb.TodoID))

	report, err := b.Resequence()
	require.NoError(t, err)
	assert.Equal(t, types.RepairReport{Repaired: true, GapsFound: 1}, report)
	requireDense(t, b)
}

// A duplicate rank makes the bump shift two rows onto one target, which the
// partial unique index rejects; the engine surfaces that as ErrRankConflict.
func TestDuplicateRankSurfacesConflict(t *testing.T) {
	b := setupBackend(t)
	mustCreate(t, b, "a", 1)
	bb := mustCreate(t, b, "b", 2)

	breakRanks(t, b, map[string]any{bb.TodoID: 1})

	_, err := b.Create(types.Draft{Title: "x"}, 1)
	assert.ErrorIs(t, err, types.ErrRankConflict)
}

func TestRankDensityUnderRandomOps(t *testing.T) {
	b := setupBackend(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 250; i++ {
		all, err := b.All()
		require.NoError(t, err)

		var active, dormant []*types.Todo
		for _, todo := range all {
			if todo.Placement.Active() {
				active = append(active, todo)
			} else {
				dormant = append(dormant, todo)
			}
		}

		op := rng.Intn(10)
		switch {
		case op < 4 || len(all) == 0:
			rank := 1 + rng.Intn(len(active)+2)
			_, err := b.Create(types.Draft{Title: fmt.Sprintf("todo-%d", i)}, rank)
			require.NoError(t, err)

		case op < 5:
			victim := all[rng.Intn(len(all))]
			require.NoError(t, b.Delete(victim.TodoID))

		case op < 7 && len(active) > 0:
			target := active[rng.Intn(len(active))]
			if rng.Intn(2) == 0 {
				_, err = b.ToggleCompleted(target.TodoID, nil)
			} else {
				_, err = b.ToggleArchived(target.TodoID, nil)
			}
			require.NoError(t, err)

		case op < 8 && len(dormant) > 0:
			target := dormant[rng.Intn(len(dormant))]
			rank := 1 + rng.Intn(len(active)+1)
			_, err := b.Update(target.TodoID, types.Patch{
				Status: statusPtr(types.StatusActive),
				Rank:   &rank,
			})
			require.NoError(t, err)

		case op < 9 && len(active) > 1:
			target := active[rng.Intn(len(active))]
			rank := 1 + rng.Intn(len(active))
			_, err := b.Update(target.TodoID, types.Patch{Rank: &rank})
			require.NoError(t, err)

		default:
			perm := rng.Perm(len(active))
			assignment := make(map[string]int, len(active))
			for idx, todo := range active {
				assignment[todo.TodoID] = perm[idx] + 1
			}
			require.NoError(t, b.Reorder(assignment))
		}

		requireDense(t, b)
	}

	// The engine never needed repair along the way.
	report, err := b.Resequence()
	require.NoError(t, err)
	assert.Equal(t, types.RepairReport{Repaired: false, GapsFound: 0}, report)
}
