// Package memory implements an in-memory storage backend with the same
// contract as the SQLite backend: same operations, same invariants, same
// error conditions. Used for tests and ephemeral runs; nothing survives
// Detach.
//
// Active order is held as a slice of ids, so rank i+1 is position i and
// density is structural. Every mutation builds the next state fully, audits
// it, and only then swaps it in; a failed call leaves the old state behind.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rankwise/ladder/internal/sequence"
	"github.com/rankwise/ladder/pkg/types"
)

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// Backend implements the Store interface over process memory.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	state    state
}

// state is one immutable-by-convention snapshot of all todos.
type state struct {
	todos map[string]*types.Todo // canonical copies by id
	order []string               // active ids; index i holds rank i+1
}

// NewBackend creates a new in-memory backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach initializes the backend. The DataDir is not used; todos live in
// memory only. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	b.config = config
	b.state = state{todos: make(map[string]*types.Todo)}
	b.attached = true

	log.Debug().Msg("memory backend attached")
	return nil
}

// Detach drops all todos. Idempotent. After Detach, all operations return
// ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	b.state = state{}
	b.attached = false
	log.Debug().Msg("memory backend detached")
	return nil
}

// generateUUID generates a new UUID v7 for todo IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// cloneTodo copies a todo so callers and internal state never share memory.
func cloneTodo(t *types.Todo) *types.Todo {
	cp := *t
	if t.DueDate != nil {
		due := *t.DueDate
		cp.DueDate = &due
	}
	return &cp
}

// snapshot deep-copies the current state for mutation.
func (s state) snapshot() state {
	next := state{
		todos: make(map[string]*types.Todo, len(s.todos)),
		order: make([]string, len(s.order)),
	}
	for id, todo := range s.todos {
		next.todos[id] = cloneTodo(todo)
	}
	copy(next.order, s.order)
	return next
}

// insertActive places id at the landing rank, shifting the tail up.
// The caller clamps landing into 1..len(order)+1 first.
func (s *state) insertActive(id string, landing int) {
	i := landing - 1
	s.order = append(s.order, "")
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = id
}

// removeActive drops id from the active order if present, closing its gap,
// and reports whether it was there.
func (s *state) removeActive(id string) bool {
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return true
		}
	}
	return false
}

// refreshPlacements rewrites every ordered todo's placement to match its
// position. Non-active todos are untouched; their placements carry no rank
// by construction.
func (s *state) refreshPlacements() error {
	for i, id := range s.order {
		placement, err := types.PlaceActive(i + 1)
		if err != nil {
			return err
		}
		s.todos[id].Placement = placement
	}
	return nil
}

// audit verifies the candidate state before it replaces the live one:
// every ordered id exists, is active, and ranks form exactly 1..N.
func (s state) audit() error {
	ranks := make([]int, 0, len(s.order))
	for _, id := range s.order {
		todo, ok := s.todos[id]
		if !ok {
			return types.ErrInvariantViolation
		}
		rank, ok := todo.Placement.Rank()
		if !ok {
			return types.ErrInvariantViolation
		}
		ranks = append(ranks, rank)
	}
	return sequence.CheckDense(ranks)
}
