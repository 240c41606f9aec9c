// This file implements the todo mutation and query surface for the memory
// backend, mirroring the SQLite backend's semantics exactly.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rankwise/ladder/internal/sequence"
	"github.com/rankwise/ladder/pkg/types"
)

// Create inserts a new active todo at the given rank. The landing rank is
// the requested one clamped into 1..N+1; the tail of the order shifts up.
func (b *Backend) Create(draft types.Draft, rank int) (*types.Todo, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if rank < 1 {
		return nil, fmt.Errorf("rank %d: %w", rank, types.ErrInvalidRank)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	next := b.state.snapshot()
	landing := sequence.Clamp(rank, len(next.order))
	now := time.Now().UTC()
	id := generateUUID()
	todo := &types.Todo{
		TodoID:      id,
		Title:       draft.Title,
		Description: draft.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if draft.DueDate != nil {
		due := *draft.DueDate
		todo.DueDate = &due
	}
	next.todos[id] = todo
	next.insertActive(id, landing)

	if err := next.refreshPlacements(); err != nil {
		return nil, err
	}
	if err := next.audit(); err != nil {
		return nil, err
	}
	b.state = next

	log.Debug().Str("op", "create").Str("todo", id).Int("rank", landing).Msg("todo created")
	return cloneTodo(todo), nil
}

// Update applies patch to one todo, running the same status transition
// table as the SQLite backend. The whole call lands or nothing does.
func (b *Backend) Update(id string, patch types.Patch) (*types.Todo, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, types.ErrInvalidTitle
	}
	if patch.Status != nil && !types.IsValidStatus(*patch.Status) {
		return nil, fmt.Errorf("status %q: %w", *patch.Status, types.ErrStatusUnknown)
	}
	if patch.Rank != nil && *patch.Rank < 1 {
		return nil, fmt.Errorf("rank %d: %w", *patch.Rank, types.ErrInvalidRank)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if _, ok := b.state.todos[id]; !ok {
		return nil, types.ErrNotFound
	}

	next := b.state.snapshot()
	todo := next.todos[id]

	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		todo.DueDate = &due
	} else if patch.ClearDueDate {
		todo.DueDate = nil
	}

	newStatus := todo.Placement.Status()
	if patch.Status != nil {
		newStatus = *patch.Status
	}
	wasActive := todo.Placement.Active()
	willBeActive := newStatus == types.StatusActive

	switch {
	case wasActive && willBeActive:
		if patch.Rank != nil {
			oldRank, _ := todo.Placement.Rank()
			if *patch.Rank != oldRank {
				next.removeActive(id)
				landing := sequence.Clamp(*patch.Rank, len(next.order))
				next.insertActive(id, landing)
			}
		}

	case wasActive && !willBeActive:
		next.removeActive(id)
		todo.Placement = placementFor(newStatus)

	case !wasActive && willBeActive:
		if patch.Rank == nil {
			return nil, types.ErrRankRequired
		}
		landing := sequence.Clamp(*patch.Rank, len(next.order))
		next.insertActive(id, landing)

	default:
		// Neither side is active; a supplied rank has nothing to place.
		todo.Placement = placementFor(newStatus)
	}

	todo.UpdatedAt = time.Now().UTC()
	if err := next.refreshPlacements(); err != nil {
		return nil, err
	}
	if err := next.audit(); err != nil {
		return nil, err
	}
	b.state = next

	log.Debug().Str("op", "update").Str("todo", id).Str("placement", todo.Placement.String()).Msg("todo updated")
	return cloneTodo(todo), nil
}

// Delete removes a todo, closing the rank gap if it was active.
func (b *Backend) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	if _, ok := b.state.todos[id]; !ok {
		return types.ErrNotFound
	}

	next := b.state.snapshot()
	next.removeActive(id)
	delete(next.todos, id)

	if err := next.refreshPlacements(); err != nil {
		return err
	}
	if err := next.audit(); err != nil {
		return err
	}
	b.state = next

	log.Debug().Str("op", "delete").Str("todo", id).Msg("todo deleted")
	return nil
}

// ToggleCompleted flips one todo between active and completed.
func (b *Backend) ToggleCompleted(id string, rank *int) (*types.Todo, error) {
	return b.toggle(id, rank, types.StatusCompleted)
}

// ToggleArchived flips one todo between active and archived.
func (b *Backend) ToggleArchived(id string, rank *int) (*types.Todo, error) {
	return b.toggle(id, rank, types.StatusArchived)
}

// toggle implements both two-state flips; a todo in the third partition is
// rejected.
func (b *Backend) toggle(id string, rank *int, other types.Status) (*types.Todo, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if rank != nil && *rank < 1 {
		return nil, fmt.Errorf("rank %d: %w", *rank, types.ErrInvalidRank)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	current, ok := b.state.todos[id]
	if !ok {
		return nil, types.ErrNotFound
	}

	next := b.state.snapshot()
	todo := next.todos[id]

	switch current.Placement.Status() {
	case types.StatusActive:
		next.removeActive(id)
		todo.Placement = placementFor(other)

	case other:
		if rank == nil {
			return nil, types.ErrRankRequired
		}
		landing := sequence.Clamp(*rank, len(next.order))
		next.insertActive(id, landing)

	default:
		return nil, fmt.Errorf("todo %s is %s: %w", id, current.Placement.Status(), types.ErrInvalidStatusFlip)
	}

	todo.UpdatedAt = time.Now().UTC()
	if err := next.refreshPlacements(); err != nil {
		return nil, err
	}
	if err := next.audit(); err != nil {
		return nil, err
	}
	b.state = next

	log.Debug().Str("op", "toggle").Str("todo", id).Str("placement", todo.Placement.String()).Msg("todo toggled")
	return cloneTodo(todo), nil
}

// Reorder applies a caller-computed rank assignment covering the whole
// active set, validated as a permutation of 1..N before anything changes.
func (b *Backend) Reorder(assignment map[string]int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	if err := sequence.CheckAssignment(assignment, b.state.order); err != nil {
		return err
	}

	next := b.state.snapshot()
	newOrder := make([]string, len(assignment))
	for id, rank := range assignment {
		newOrder[rank-1] = id
	}
	next.order = newOrder

	now := time.Now().UTC()
	for id := range assignment {
		next.todos[id].UpdatedAt = now
	}
	if err := next.refreshPlacements(); err != nil {
		return err
	}
	if err := next.audit(); err != nil {
		return err
	}
	b.state = next

	log.Debug().Str("op", "reorder").Int("todos", len(assignment)).Msg("active todos reordered")
	return nil
}

// Resequence rewrites active placements that disagree with the order. The
// order slice is the source of truth, so normally there is nothing to do;
// repairs only ever follow in-process placement corruption.
func (b *Backend) Resequence() (types.RepairReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.RepairReport{}, types.ErrStoreDetached
	}

	next := b.state.snapshot()
	now := time.Now().UTC()
	var report types.RepairReport
	for i, id := range next.order {
		want := i + 1
		if rank, ok := next.todos[id].Placement.Rank(); ok && rank == want {
			continue
		}
		placement, err := types.PlaceActive(want)
		if err != nil {
			return types.RepairReport{}, err
		}
		next.todos[id].Placement = placement
		next.todos[id].UpdatedAt = now
		report.GapsFound++
	}
	if report.GapsFound > 0 {
		report.Repaired = true
	}

	if err := next.audit(); err != nil {
		return types.RepairReport{}, err
	}
	b.state = next

	log.Info().Bool("repaired", report.Repaired).Int("gaps", report.GapsFound).Msg("resequence finished")
	return report, nil
}

// Get returns a copy of the todo with the given id.
func (b *Backend) Get(id string) (*types.Todo, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	todo, ok := b.state.todos[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return cloneTodo(todo), nil
}

// All returns every todo: active first ordered by rank, then the rest
// newest first.
func (b *Backend) All() ([]*types.Todo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	results := b.activeLocked()
	var rest []*types.Todo
	for _, todo := range b.state.todos {
		if !todo.Placement.Active() {
			rest = append(rest, cloneTodo(todo))
		}
	}
	sortNewestFirst(rest)
	return append(results, rest...), nil
}

// ByStatus returns the todos in one partition. Active todos are ordered by
// rank; completed and archived newest first.
func (b *Backend) ByStatus(status types.Status) ([]*types.Todo, error) {
	if !types.IsValidStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, types.ErrStatusUnknown)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	if status == types.StatusActive {
		return b.activeLocked(), nil
	}
	results := []*types.Todo{}
	for _, todo := range b.state.todos {
		if todo.Placement.Status() == status {
			results = append(results, cloneTodo(todo))
		}
	}
	sortNewestFirst(results)
	return results, nil
}

// Active returns the active todos ordered by rank.
func (b *Backend) Active() ([]*types.Todo, error) {
	return b.ByStatus(types.StatusActive)
}

// Completed returns the completed todos, newest first.
func (b *Backend) Completed() ([]*types.Todo, error) {
	return b.ByStatus(types.StatusCompleted)
}

// Archived returns the archived todos, newest first.
func (b *Backend) Archived() ([]*types.Todo, error) {
	return b.ByStatus(types.StatusArchived)
}

// Stats returns todo counts per partition.
func (b *Backend) Stats() (types.Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Stats{}, types.ErrStoreDetached
	}

	var stats types.Stats
	for _, todo := range b.state.todos {
		switch todo.Placement.Status() {
		case types.StatusActive:
			stats.Active++
		case types.StatusCompleted:
			stats.Completed++
		case types.StatusArchived:
			stats.Archived++
		}
		stats.Total++
	}
	return stats, nil
}

// activeLocked clones the active todos in rank order.
// The caller must hold b.mu.
func (b *Backend) activeLocked() []*types.Todo {
	results := make([]*types.Todo, 0, len(b.state.order))
	for _, id := range b.state.order {
		results = append(results, cloneTodo(b.state.todos[id]))
	}
	return results
}

// placementFor maps a non-active status to its placement.
func placementFor(status types.Status) types.Placement {
	if status == types.StatusArchived {
		return types.PlaceArchived()
	}
	return types.PlaceCompleted()
}

// sortNewestFirst orders todos by creation time, newest first, with the
// time-ordered id breaking same-second ties.
func sortNewestFirst(todos []*types.Todo) {
	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].TodoID > todos[j].TodoID
	})
}
