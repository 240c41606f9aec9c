package types

import (
	"strings"
	"time"
)

// Status names the partition a todo lives in.
type Status string

// Todo statuses.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// validStatuses is the set of recognized statuses.
var validStatuses = map[Status]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusArchived:  true,
}

// IsValidStatus reports whether s is a recognized status.
func IsValidStatus(s Status) bool {
	return validStatuses[s]
}

// Todo represents a single tracked task.
type Todo struct {
	TodoID      string     `json:"todo_id"`               // UUID v7, generated on creation.
	Title       string     `json:"title"`                 // Human-readable title (required, non-empty).
	Description string     `json:"description,omitempty"` // Optional free-form details.
	DueDate     *time.Time `json:"due_date,omitempty"`    // Optional due date; nil when none is set.
	Placement   Placement  `json:"placement"`             // Partition and, for active todos, the rank.
	CreatedAt   time.Time  `json:"created_at"`            // Timestamp of creation.
	UpdatedAt   time.Time  `json:"updated_at"`            // Timestamp of the last write.
}

// Draft carries the caller-supplied fields for creating a todo.
type Draft struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// Validate checks that the draft can become a todo.
// Returns ErrInvalidTitle if the title is empty or whitespace only.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrInvalidTitle
	}
	return nil
}

// Patch describes a partial update applied by Store.Update.
// Nil pointer fields leave the corresponding todo field unchanged.
type Patch struct {
	// Title replaces the title when non-nil.
	Title *string

	// Description replaces the description when non-nil.
	Description *string

	// DueDate replaces the due date when non-nil.
	DueDate *time.Time

	// ClearDueDate removes the due date. Ignored when DueDate is non-nil.
	ClearDueDate bool

	// Status moves the todo to another partition when non-nil.
	Status *Status

	// Rank places the todo at this active rank. Required when Status moves
	// a non-active todo into StatusActive; otherwise optional.
	Rank *int
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		!p.ClearDueDate && p.Status == nil && p.Rank == nil
}

// Stats summarizes todo counts per partition.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Archived  int `json:"archived"`
}

// RepairReport is the outcome of a Store.Resequence call.
type RepairReport struct {
	// Repaired is true when at least one active rank was rewritten.
	Repaired bool `json:"repaired"`

	// GapsFound counts the active todos whose rank was rewritten.
	GapsFound int `json:"gaps_found"`
}
