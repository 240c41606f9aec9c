// This file implements the rank arithmetic that runs inside mutation
// transactions: bump-insert, gap-close, batch assignment, and resequence.
//
// SQLite checks the partial unique index per row, in scan order, so bulk
// rank shifts cannot be written directly. Upward shifts walk far-to-near in
// single-row updates that always land on a vacant rank; downward and batch
// shifts stage through negated ranks and flip the signs in a second update.
// Either way no statement ever writes a duplicate positive rank, and
// nothing outside the transaction sees the intermediate states.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rankwise/ladder/internal/sequence"
	"github.com/rankwise/ladder/pkg/types"
)

// activeCount returns the number of active todos.
func activeCount(tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRow("SELECT COUNT(*) FROM todos WHERE status = ?", string(types.StatusActive)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting active todos: %w", err)
	}
	return n, nil
}

// activeIDs returns the ids of all active todos ordered by rank.
func activeIDs(tx *sql.Tx) ([]string, error) {
	rows, err := tx.Query(
		"SELECT todo_id FROM todos WHERE status = ? ORDER BY rank ASC",
		string(types.StatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("listing active todos: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning active todo: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating active todos: %w", err)
	}
	return ids, nil
}

// bumpUp frees the landing rank by shifting the contiguous run of occupied
// ranks starting there up by one. Far-to-near: the farthest occupant moves
// first, so every single-row update lands on a vacant rank. The walk is
// capped at sequence.MaxShiftDepth; exceeding the cap means the stored
// sequence is corrupted and surfaces ErrInvariantViolation.
func bumpUp(tx *sql.Tx, landing int) error {
	rows, err := tx.Query(
		"SELECT rank FROM todos WHERE status = ? AND rank >= ? ORDER BY rank ASC",
		string(types.StatusActive), landing,
	)
	if err != nil {
		return fmt.Errorf("scanning ranks from %d: %w", landing, err)
	}
	defer rows.Close()

	var ranks []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return fmt.Errorf("scanning rank: %w", err)
		}
		ranks = append(ranks, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating ranks: %w", err)
	}

	// Length of the contiguous run occupying landing, landing+1, ...
	// The run ends at the first vacancy; ranks past it are untouched.
	run := 0
	for _, r := range ranks {
		if r != landing+run {
			break
		}
		run++
		if run > sequence.MaxShiftDepth {
			return fmt.Errorf("bump walk at rank %d exceeded %d shifts: %w",
				landing, sequence.MaxShiftDepth, types.ErrInvariantViolation)
		}
	}

	for i := run - 1; i >= 0; i-- {
		from := landing + i
		if _, err := tx.Exec(
			"UPDATE todos SET rank = ? WHERE status = ? AND rank = ?",
			from+1, string(types.StatusActive), from,
		); err != nil {
			return fmt.Errorf("shifting rank %d: %w", from, mapRankErr(err))
		}
	}
	return nil
}

// closeGap restores density after the active todo at rank gone left the
// set: every active rank above gone shifts down by one. The set {gone+1..N}
// maps onto {gone..N-1} without touching any unshifted rank.
func closeGap(tx *sql.Tx, gone int) error {
	if _, err := tx.Exec(
		"UPDATE todos SET rank = -(rank - 1) WHERE status = ? AND rank > ?",
		string(types.StatusActive), gone,
	); err != nil {
		return fmt.Errorf("staging gap close at %d: %w", gone, mapRankErr(err))
	}
	if _, err := tx.Exec(
		"UPDATE todos SET rank = -rank WHERE status = ? AND rank < 0",
		string(types.StatusActive),
	); err != nil {
		return fmt.Errorf("finishing gap close at %d: %w", gone, mapRankErr(err))
	}
	return nil
}

// moveActiveTx repositions one active todo away from oldRank toward the
// requested rank. The mover steps out of the rank sequence first (rank
// NULL, status untouched), its old gap closes, then the landing rank is
// freed. The caller writes the final rank. Returns the landing rank,
// clamped against the rest of the active set.
func moveActiveTx(tx *sql.Tx, id string, oldRank, requested int) (int, error) {
	if _, err := tx.Exec("UPDATE todos SET rank = NULL WHERE todo_id = ?", id); err != nil {
		return 0, fmt.Errorf("unranking todo %s: %w", id, err)
	}
	if err := closeGap(tx, oldRank); err != nil {
		return 0, err
	}
	count, err := activeCount(tx)
	if err != nil {
		return 0, err
	}
	// count still includes the mover, so the clamp runs against count-1.
	landing := sequence.Clamp(requested, count-1)
	if err := bumpUp(tx, landing); err != nil {
		return 0, err
	}
	return landing, nil
}

// applyAssignment writes an already validated full-permutation assignment.
// Every row stages to its negated target rank, then one update flips the
// signs back.
func applyAssignment(tx *sql.Tx, assignment map[string]int, now string) error {
	for id, rank := range assignment {
		if _, err := tx.Exec(
			"UPDATE todos SET rank = ?, updated_at = ? WHERE todo_id = ? AND status = ?",
			-rank, now, id, string(types.StatusActive),
		); err != nil {
			return fmt.Errorf("staging rank %d for todo %s: %w", rank, id, mapRankErr(err))
		}
	}
	if _, err := tx.Exec(
		"UPDATE todos SET rank = -rank WHERE status = ? AND rank < 0",
		string(types.StatusActive),
	); err != nil {
		return fmt.Errorf("finishing reorder: %w", mapRankErr(err))
	}
	return nil
}

// resequenceTx rewrites active ranks to 1..N in scan order: current rank,
// then created_at, then todo_id, with missing ranks sorted last. Only rows
// whose rank differs from their position are written.
func resequenceTx(tx *sql.Tx, now string) (types.RepairReport, error) {
	rows, err := tx.Query(
		"SELECT todo_id, rank FROM todos WHERE status = ? ORDER BY (rank IS NULL) ASC, rank ASC, created_at ASC, todo_id ASC",
		string(types.StatusActive),
	)
	if err != nil {
		return types.RepairReport{}, fmt.Errorf("scanning active todos: %w", err)
	}
	defer rows.Close()

	type slot struct {
		id   string
		rank sql.NullInt64
	}
	var slots []slot
	for rows.Next() {
		var s slot
		if err := rows.Scan(&s.id, &s.rank); err != nil {
			return types.RepairReport{}, fmt.Errorf("scanning active todo: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return types.RepairReport{}, fmt.Errorf("iterating active todos: %w", err)
	}

	var report types.RepairReport
	for i, s := range slots {
		want := i + 1
		if s.rank.Valid && int(s.rank.Int64) == want {
			continue
		}
		if _, err := tx.Exec(
			"UPDATE todos SET rank = ?, updated_at = ? WHERE todo_id = ?",
			-want, now, s.id,
		); err != nil {
			return types.RepairReport{}, fmt.Errorf("staging rank %d for todo %s: %w", want, s.id, mapRankErr(err))
		}
		report.GapsFound++
	}

	if report.GapsFound > 0 {
		if _, err := tx.Exec(
			"UPDATE todos SET rank = -rank WHERE status = ? AND rank < 0",
			string(types.StatusActive),
		); err != nil {
			return types.RepairReport{}, fmt.Errorf("finishing resequence: %w", mapRankErr(err))
		}
		report.Repaired = true
	}
	return report, nil
}

// auditActiveTx verifies, before a mutation commits, that active ranks form
// exactly 1..N. A failure aborts the transaction with ErrInvariantViolation.
func auditActiveTx(tx *sql.Tx) error {
	rows, err := tx.Query("SELECT rank FROM todos WHERE status = ?", string(types.StatusActive))
	if err != nil {
		return fmt.Errorf("auditing active ranks: %w", err)
	}
	defer rows.Close()

	var ranks []int
	for rows.Next() {
		var rank sql.NullInt64
		if err := rows.Scan(&rank); err != nil {
			return fmt.Errorf("scanning rank: %w", err)
		}
		if !rank.Valid {
			return fmt.Errorf("active todo without rank: %w", types.ErrInvariantViolation)
		}
		ranks = append(ranks, int(rank.Int64))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating ranks: %w", err)
	}
	return sequence.CheckDense(ranks)
}

// mapRankErr converts a unique-index rejection on idx_todos_active_rank into
// ErrRankConflict, the retryable concurrent-writer signal. Everything else
// passes through unchanged.
func mapRankErr(err error) error {
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%v: %w", err, types.ErrRankConflict)
	}
	return err
}

// isUniqueConstraintError reports whether err is a SQLite unique constraint
// rejection. modernc.org/sqlite surfaces it only through the message text.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
