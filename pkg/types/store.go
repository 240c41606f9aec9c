package types

import "errors"

// Store defines the backend-agnostic surface for todos. Callers attach to a
// backend, mutate and query todos, and detach when done. Every mutation is
// atomic: on error nothing is written, and after every successful call the
// active ranks form exactly 1..N with no gaps or duplicates.
type Store interface {
	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, all other operations return ErrStoreDetached.
	Detach() error

	// Create inserts a new active todo at the given rank. Ranks below 1
	// are rejected with ErrInvalidRank; ranks beyond count+1 land at
	// count+1. Todos at or above the landing rank shift up by one.
	Create(draft Draft, rank int) (*Todo, error)

	// Update applies patch to the todo with the given id in a single
	// transaction. Moving a non-active todo to active without a rank
	// returns ErrRankRequired. Returns ErrNotFound if no todo has the id.
	Update(id string, patch Patch) (*Todo, error)

	// Delete removes the todo with the given id. Deleting an active todo
	// closes the rank gap it leaves behind.
	Delete(id string) error

	// ToggleCompleted flips a todo between active and completed.
	// Completing discards the rank and closes its gap; reactivating
	// requires rank, otherwise ErrRankRequired. Archived todos are
	// rejected with ErrInvalidStatusFlip.
	ToggleCompleted(id string, rank *int) (*Todo, error)

	// ToggleArchived flips a todo between active and archived, with the
	// same rank rules as ToggleCompleted. Completed todos are rejected.
	ToggleArchived(id string, rank *int) (*Todo, error)

	// Reorder applies a complete rank assignment to the active set. The
	// assignment must map exactly the active todo IDs onto a permutation
	// of 1..count; otherwise ErrInvalidRank and nothing is written.
	Reorder(assignment map[string]int) error

	// Resequence rewrites active ranks to close gaps or duplicates left by
	// external edits or crashes. Safe to run on a healthy store.
	Resequence() (RepairReport, error)

	// Get returns the todo with the given id, or ErrNotFound.
	Get(id string) (*Todo, error)

	// All returns every todo: active first ordered by rank, then the rest
	// newest first.
	All() ([]*Todo, error)

	// ByStatus returns the todos in one partition. Active todos are
	// ordered by rank; completed and archived newest first.
	ByStatus(status Status) ([]*Todo, error)

	// Active returns the active todos ordered by rank.
	Active() ([]*Todo, error)

	// Completed returns the completed todos, newest first.
	Completed() ([]*Todo, error)

	// Archived returns the archived todos, newest first.
	Archived() ([]*Todo, error)

	// Stats returns todo counts per partition.
	Stats() (Stats, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Todo operation errors.
var (
	ErrNotFound          = errors.New("todo not found")
	ErrInvalidID         = errors.New("todo id must not be empty")
	ErrInvalidTitle      = errors.New("title must not be empty")
	ErrStatusUnknown     = errors.New("unknown status")
	ErrInvalidStatusFlip = errors.New("status not reachable by toggle")
	ErrRankRequired      = errors.New("target rank required")
	ErrInvalidRank       = errors.New("invalid rank")
)

// Sequencing errors.
var (
	// ErrRankConflict reports a uniqueness rejection from the backend,
	// normally a concurrent writer. Retryable after re-reading.
	ErrRankConflict = errors.New("rank conflict")

	// ErrInvariantViolation reports a broken rank sequence that a normal
	// operation refused to walk. Not retryable; run Resequence.
	ErrInvariantViolation = errors.New("rank sequence invariant violated")
)
