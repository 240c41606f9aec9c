// Equivalence tests: the memory and SQLite backends must be drop-in
// substitutes, so an identical operation sequence against both has to
// produce identical observable state and identical error classes.
package memory

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankwise/ladder/internal/sqlite"
	"github.com/rankwise/ladder/pkg/types"
)

// harness drives one store, tracking its ids by stable title so the same
// logical operation can target both stores.
type harness struct {
	name    string
	store   types.Store
	byTitle map[string]string
}

func newHarnesses(t *testing.T) []*harness {
	t.Helper()

	mem := NewBackend()
	require.NoError(t, mem.Attach(types.Config{Backend: types.BackendMemory}))
	t.Cleanup(func() { mem.Detach() })

	sq := sqlite.NewBackend()
	require.NoError(t, sq.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { sq.Detach() })

	return []*harness{
		{name: "memory", store: mem, byTitle: map[string]string{}},
		{name: "sqlite", store: sq, byTitle: map[string]string{}},
	}
}

// errClass folds an error to its sentinel for cross-store comparison.
func errClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrNotFound):
		return "not-found"
	case errors.Is(err, types.ErrInvalidID):
		return "invalid-id"
	case errors.Is(err, types.ErrStatusUnknown):
		return "status-unknown"
	case errors.Is(err, types.ErrRankRequired):
		return "rank-required"
	case errors.Is(err, types.ErrInvalidRank):
		return "invalid-rank"
	case errors.Is(err, types.ErrInvalidTitle):
		return "invalid-title"
	case errors.Is(err, types.ErrInvalidStatusFlip):
		return "invalid-flip"
	default:
		return "other: " + err.Error()
	}
}

// view renders the observable state: every todo as title/placement in All()
// order.
func view(t *testing.T, s types.Store) []string {
	t.Helper()
	all, err := s.All()
	require.NoError(t, err)
	out := make([]string, 0, len(all))
	for _, todo := range all {
		out = append(out, todo.Title+"/"+todo.Placement.String())
	}
	return out
}

func TestBackendsAgreeUnderRandomOps(t *testing.T) {
	stores := newHarnesses(t)
	canonical := stores[0]
	rng := rand.New(rand.NewSource(7))

	// pick returns a random existing title, or a ghost one in ten.
	pick := func() string {
		if len(canonical.byTitle) == 0 || rng.Intn(10) == 0 {
			return "ghost"
		}
		titles := make([]string, 0, len(canonical.byTitle))
		for title := range canonical.byTitle {
			titles = append(titles, title)
		}
		return titles[rng.Intn(len(titles))]
	}

	for i := 0; i < 150; i++ {
		active, err := canonical.store.Active()
		require.NoError(t, err)
		n := len(active)

		var classes []string
		switch rng.Intn(12) {
		case 0, 1, 2:
			title := fmt.Sprintf("t%03d", i)
			rank := rng.Intn(n + 3) // 0 is invalid on purpose
			for _, h := range stores {
				todo, err := h.store.Create(types.Draft{Title: title}, rank)
				classes = append(classes, errClass(err))
				if err == nil {
					h.byTitle[title] = todo.TodoID
				}
			}

		case 3:
			title := pick()
			for _, h := range stores {
				err := h.store.Delete(h.byTitle[title])
				classes = append(classes, errClass(err))
				if err == nil {
					delete(h.byTitle, title)
				}
			}

		case 4, 5:
			title := pick()
			var rank *int
			if rng.Intn(2) == 0 {
				r := 1 + rng.Intn(n+1)
				rank = &r
			}
			// Both stores must run the same flip; draw it once.
			flipCompleted := rng.Intn(2) == 0
			for _, h := range stores {
				if flipCompleted {
					_, err = h.store.ToggleCompleted(h.byTitle[title], rank)
				} else {
					_, err = h.store.ToggleArchived(h.byTitle[title], rank)
				}
				classes = append(classes, errClass(err))
			}

		case 6, 7:
			title := pick()
			patch := types.Patch{}
			if rng.Intn(2) == 0 {
				s := []types.Status{types.StatusActive, types.StatusCompleted, types.StatusArchived}[rng.Intn(3)]
				patch.Status = &s
			}
			if rng.Intn(2) == 0 {
				r := 1 + rng.Intn(n+1)
				patch.Rank = &r
			}
			if rng.Intn(3) == 0 {
				fresh := title + "-renamed"
				patch.Title = &fresh
			}
			for _, h := range stores {
				updated, err := h.store.Update(h.byTitle[title], patch)
				classes = append(classes, errClass(err))
				if err == nil && patch.Title != nil {
					delete(h.byTitle, title)
					h.byTitle[updated.Title] = updated.TodoID
				}
			}

		case 8:
			// Full random permutation, occasionally broken on purpose.
			breakIt := n > 0 && rng.Intn(4) == 0
			perm := rng.Perm(n)
			for _, h := range stores {
				hActive, err := h.store.Active()
				require.NoError(t, err)
				assignment := make(map[string]int, len(hActive))
				for idx, todo := range hActive {
					assignment[todo.TodoID] = perm[idx] + 1
				}
				if breakIt {
					for id := range assignment {
						delete(assignment, id)
						break
					}
				}
				classes = append(classes, errClass(h.store.Reorder(assignment)))
			}

		default:
			var reports []types.RepairReport
			for _, h := range stores {
				report, err := h.store.Resequence()
				classes = append(classes, errClass(err))
				reports = append(reports, report)
			}
			assert.Equal(t, reports[0], reports[1], "repair reports diverged")
		}

		require.Equal(t, classes[0], classes[1], "error classes diverged at op %d", i)
		assert.Equal(t, view(t, stores[0].store), view(t, stores[1].store), "state diverged at op %d", i)

		memStats, err := stores[0].store.Stats()
		require.NoError(t, err)
		sqStats, err := stores[1].store.Stats()
		require.NoError(t, err)
		assert.Equal(t, memStats, sqStats, "stats diverged at op %d", i)
	}
}
