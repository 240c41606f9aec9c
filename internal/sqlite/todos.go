// This file implements the todos table accessor for the SQLite backend:
// hydration between rows and *types.Todo, the mutation surface, and the
// query surface. Rank arithmetic lives in sequence.go.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rankwise/ladder/internal/sequence"
	"github.com/rankwise/ladder/pkg/types"
)

// todoColumns is the column list every todo SELECT uses, in hydrate order.
const todoColumns = "todo_id, title, description, status, rank, due_date, created_at, updated_at"

// Create inserts a new active todo at the given rank inside one transaction.
// The landing rank is the requested one clamped into 1..N+1; todos at or
// above it shift up by one first, so the insert lands on a vacant rank.
func (b *Backend) Create(draft types.Draft, rank int) (*types.Todo, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if rank < 1 {
		return nil, fmt.Errorf("rank %d: %w", rank, types.ErrInvalidRank)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := activeCount(tx)
	if err != nil {
		return nil, err
	}
	landing := sequence.Clamp(rank, count)
	if err := bumpUp(tx, landing); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	id := generateUUID()
	_, err = tx.Exec(
		"INSERT INTO todos (todo_id, title, description, status, rank, due_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, draft.Title, draft.Description, string(types.StatusActive), landing,
		nullableTimeString(draft.DueDate), nowStr, nowStr,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting todo: %w", mapRankErr(err))
	}

	if err := auditActiveTx(tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo: %w", err)
	}

	placement, err := types.PlaceActive(landing)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("op", "create").Str("todo", id).Int("rank", landing).Msg("todo created")
	return &types.Todo{
		TodoID:      id,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Placement:   placement,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update applies patch to one todo inside a single transaction, running the
// status transition over (old status, new status, rank change):
//
//	active -> active, same rank      plain field update
//	active -> active, new rank       gap-close at old rank, bump at new
//	active -> completed/archived     gap-close; rank discarded
//	completed/archived -> active     rank required; bump at target
//	completed/archived -> same side  no sequencing; rank stays absent
//
// A failure at any step aborts the whole call with no partial effect.
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

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getTodoTx(tx, id)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if patch.Title != nil {
		title = *patch.Title
	}
	description := current.Description
	if patch.Description != nil {
		description = *patch.Description
	}
	dueDate := current.DueDate
	if patch.DueDate != nil {
		dueDate = patch.DueDate
	} else if patch.ClearDueDate {
		dueDate = nil
	}

	newStatus := current.Placement.Status()
	if patch.Status != nil {
		newStatus = *patch.Status
	}
	wasActive := current.Placement.Active()
	willBeActive := newStatus == types.StatusActive
	nowStr := time.Now().UTC().Format(time.RFC3339)

	switch {
	case wasActive && willBeActive:
		oldRank, _ := current.Placement.Rank()
		newRank := oldRank
		if patch.Rank != nil && *patch.Rank != oldRank {
			newRank, err = moveActiveTx(tx, id, oldRank, *patch.Rank)
			if err != nil {
				return nil, err
			}
		}
		_, err = tx.Exec(
			"UPDATE todos SET title = ?, description = ?, due_date = ?, rank = ?, updated_at = ? WHERE todo_id = ?",
			title, description, nullableTimeString(dueDate), newRank, nowStr, id,
		)

	case wasActive && !willBeActive:
		// The leaver drops out of the active set first; then the bulk
		// shift closes its gap.
		oldRank, _ := current.Placement.Rank()
		_, err = tx.Exec(
			"UPDATE todos SET title = ?, description = ?, due_date = ?, status = ?, rank = NULL, updated_at = ? WHERE todo_id = ?",
			title, description, nullableTimeString(dueDate), string(newStatus), nowStr, id,
		)
		if err == nil {
			err = closeGap(tx, oldRank)
		}

	case !wasActive && willBeActive:
		if patch.Rank == nil {
			return nil, types.ErrRankRequired
		}
		count, cerr := activeCount(tx)
		if cerr != nil {
			return nil, cerr
		}
		landing := sequence.Clamp(*patch.Rank, count)
		if err := bumpUp(tx, landing); err != nil {
			return nil, err
		}
		_, err = tx.Exec(
			"UPDATE todos SET title = ?, description = ?, due_date = ?, status = ?, rank = ?, updated_at = ? WHERE todo_id = ?",
			title, description, nullableTimeString(dueDate), string(types.StatusActive), landing, nowStr, id,
		)

	default:
		// Neither side is active: a supplied rank has nothing to place,
		// so it is ignored and the rank column stays absent.
		_, err = tx.Exec(
			"UPDATE todos SET title = ?, description = ?, due_date = ?, status = ?, updated_at = ? WHERE todo_id = ?",
			title, description, nullableTimeString(dueDate), string(newStatus), nowStr, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("updating todo %s: %w", id, mapRankErr(err))
	}

	updated, err := getTodoTx(tx, id)
	if err != nil {
		return nil, err
	}
	if err := auditActiveTx(tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}

	log.Debug().Str("op", "update").Str("todo", id).Str("placement", updated.Placement.String()).Msg("todo updated")
	return updated, nil
}

// Delete removes a todo. If it was active, the gap its rank leaves behind
// is closed in the same transaction.
func (b *Backend) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getTodoTx(tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM todos WHERE todo_id = ?", id); err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	if rank, ok := current.Placement.Rank(); ok {
		if err := closeGap(tx, rank); err != nil {
			return err
		}
	}

	if err := auditActiveTx(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deletion: %w", err)
	}

	log.Debug().Str("op", "delete").Str("todo", id).Msg("todo deleted")
	return nil
}

// ToggleCompleted flips one todo between active and completed. Toggling is a
// two-state flip: archived todos are rejected, completed<->archived moves go
// through Update.
func (b *Backend) ToggleCompleted(id string, rank *int) (*types.Todo, error) {
	return b.toggle(id, rank, types.StatusCompleted)
}

// ToggleArchived flips one todo between active and archived, with the same
// rules as ToggleCompleted.
func (b *Backend) ToggleArchived(id string, rank *int) (*types.Todo, error) {
	return b.toggle(id, rank, types.StatusArchived)
}

// toggle implements both two-state flips. other is the non-active side of
// the flip; a todo sitting in the remaining third partition is rejected.
func (b *Backend) toggle(id string, rank *int, other types.Status) (*types.Todo, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if rank != nil && *rank < 1 {
		return nil, fmt.Errorf("rank %d: %w", *rank, types.ErrInvalidRank)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getTodoTx(tx, id)
	if err != nil {
		return nil, err
	}
	nowStr := time.Now().UTC().Format(time.RFC3339)

	switch current.Placement.Status() {
	case types.StatusActive:
		oldRank, _ := current.Placement.Rank()
		_, err = tx.Exec(
			"UPDATE todos SET status = ?, rank = NULL, updated_at = ? WHERE todo_id = ?",
			string(other), nowStr, id,
		)
		if err == nil {
			err = closeGap(tx, oldRank)
		}

	case other:
		if rank == nil {
			return nil, types.ErrRankRequired
		}
		count, cerr := activeCount(tx)
		if cerr != nil {
			return nil, cerr
		}
		landing := sequence.Clamp(*rank, count)
		if err := bumpUp(tx, landing); err != nil {
			return nil, err
		}
		_, err = tx.Exec(
			"UPDATE todos SET status = ?, rank = ?, updated_at = ? WHERE todo_id = ?",
			string(types.StatusActive), landing, nowStr, id,
		)

	default:
		return nil, fmt.Errorf("todo %s is %s: %w", id, current.Placement.Status(), types.ErrInvalidStatusFlip)
	}
	if err != nil {
		return nil, fmt.Errorf("toggling todo %s: %w", id, mapRankErr(err))
	}

	updated, err := getTodoTx(tx, id)
	if err != nil {
		return nil, err
	}
	if err := auditActiveTx(tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing toggle: %w", err)
	}

	log.Debug().Str("op", "toggle").Str("todo", id).Str("placement", updated.Placement.String()).Msg("todo toggled")
	return updated, nil
}

// Reorder applies a caller-computed rank assignment covering the whole
// active set. The assignment is validated as a permutation of 1..N over
// exactly the active ids before anything is written.
func (b *Backend) Reorder(assignment map[string]int) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids, err := activeIDs(tx)
	if err != nil {
		return err
	}
	if err := sequence.CheckAssignment(assignment, ids); err != nil {
		return err
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	if err := applyAssignment(tx, assignment, nowStr); err != nil {
		return err
	}

	if err := auditActiveTx(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}

	log.Debug().Str("op", "reorder").Int("todos", len(assignment)).Msg("active todos reordered")
	return nil
}

// Resequence rewrites active ranks to close gaps and duplicates left by
// out-of-band edits. Recovery only; the normal write path never needs it.
func (b *Backend) Resequence() (types.RepairReport, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.RepairReport{}, types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return types.RepairReport{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	nowStr := time.Now().UTC().Format(time.RFC3339)
	report, err := resequenceTx(tx, nowStr)
	if err != nil {
		return types.RepairReport{}, err
	}

	if err := auditActiveTx(tx); err != nil {
		return types.RepairReport{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.RepairReport{}, fmt.Errorf("committing resequence: %w", err)
	}

	log.Info().Bool("repaired", report.Repaired).Int("gaps", report.GapsFound).Msg("resequence finished")
	return report, nil
}

// Get retrieves a todo by ID and hydrates the row to *types.Todo.
func (b *Backend) Get(id string) (*types.Todo, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	row := b.db.QueryRow("SELECT "+todoColumns+" FROM todos WHERE todo_id = ?", id)
	todo, err := hydrateTodo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return todo, nil
}

// All returns every todo: active first ordered by rank, then the rest
// newest first.
func (b *Backend) All() ([]*types.Todo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	// Stored timestamps have second precision; the UUID v7 id breaks ties
	// in creation order.
	query := "SELECT " + todoColumns + " FROM todos" +
		" ORDER BY (status = 'active') DESC, CASE WHEN status = 'active' THEN rank END ASC, created_at DESC, todo_id DESC"
	return b.fetchTodos(query)
}

// ByStatus returns the todos in one partition. Active todos are ordered by
// rank ascending; completed and archived by creation time, newest first.
func (b *Backend) ByStatus(status types.Status) ([]*types.Todo, error) {
	if !types.IsValidStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, types.ErrStatusUnknown)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	order := "created_at DESC, todo_id DESC"
	if status == types.StatusActive {
		order = "rank ASC"
	}
	query := "SELECT " + todoColumns + " FROM todos WHERE status = ? ORDER BY " + order
	return b.fetchTodos(query, string(status))
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

	rows, err := b.db.Query("SELECT status, COUNT(*) FROM todos GROUP BY status")
	if err != nil {
		return types.Stats{}, fmt.Errorf("counting todos: %w", err)
	}
	defer rows.Close()

	var stats types.Stats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return types.Stats{}, fmt.Errorf("scanning count: %w", err)
		}
		switch types.Status(status) {
		case types.StatusActive:
			stats.Active = count
		case types.StatusCompleted:
			stats.Completed = count
		case types.StatusArchived:
			stats.Archived = count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return types.Stats{}, fmt.Errorf("iterating counts: %w", err)
	}
	return stats, nil
}

// fetchTodos runs a todo SELECT and hydrates every row.
// Returns an empty slice, not nil, when nothing matches.
func (b *Backend) fetchTodos(query string, args ...any) ([]*types.Todo, error) {
	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching todos: %w", err)
	}
	defer rows.Close()

	results := []*types.Todo{}
	for rows.Next() {
		todo, err := hydrateTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating todo: %w", err)
		}
		results = append(results, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return results, nil
}

// getTodoTx reads one todo inside a transaction.
// Returns ErrNotFound if no row has the id.
func getTodoTx(tx *sql.Tx, id string) (*types.Todo, error) {
	row := tx.QueryRow("SELECT "+todoColumns+" FROM todos WHERE todo_id = ?", id)
	todo, err := hydrateTodo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return todo, nil
}

// scanner abstracts sql.Row and sql.Rows for shared hydration.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateTodo converts one row into a *types.Todo. An active row without a
// rank is corrupted and surfaces ErrInvariantViolation; a leftover rank on a
// non-active row (out-of-band edit) is dropped silently, matching the
// discard-on-leaving-active policy.
func hydrateTodo(s scanner) (*types.Todo, error) {
	var (
		t           types.Todo
		description sql.NullString
		status      string
		rank        sql.NullInt64
		dueDate     sql.NullString
		createdAt   string
		updatedAt   string
	)
	if err := s.Scan(&t.TodoID, &t.Title, &description, &status, &rank, &dueDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.Description = description.String

	switch types.Status(status) {
	case types.StatusActive:
		if !rank.Valid {
			return nil, fmt.Errorf("active todo %s without rank: %w", t.TodoID, types.ErrInvariantViolation)
		}
		placement, err := types.PlaceActive(int(rank.Int64))
		if err != nil {
			return nil, fmt.Errorf("active todo %s: %w", t.TodoID, err)
		}
		t.Placement = placement
	case types.StatusCompleted:
		t.Placement = types.PlaceCompleted()
	case types.StatusArchived:
		t.Placement = types.PlaceArchived()
	default:
		return nil, fmt.Errorf("todo %s status %q: %w", t.TodoID, status, types.ErrStatusUnknown)
	}

	if dueDate.Valid {
		due, err := time.Parse(time.RFC3339, dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("parsing due_date: %w", err)
		}
		t.DueDate = &due
	}

	var err error
	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

// nullableTimeString renders an optional timestamp for storage.
// Returns nil for a NULL column when t is nil.
func nullableTimeString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
