package types

import (
	"encoding/json"
	"fmt"
)

// Placement ties a todo's status to its rank. Rank exists only while a todo
// is active; the three constructors are the only way to build a valid value,
// so a completed or archived todo cannot carry one.
type Placement struct {
	status Status
	rank   int
}

// PlaceActive returns an active placement at the given rank.
// Returns ErrInvalidRank if rank < 1.
func PlaceActive(rank int) (Placement, error) {
	if rank < 1 {
		return Placement{}, fmt.Errorf("rank %d: %w", rank, ErrInvalidRank)
	}
	return Placement{status: StatusActive, rank: rank}, nil
}

// PlaceCompleted returns a completed placement.
func PlaceCompleted() Placement {
	return Placement{status: StatusCompleted}
}

// PlaceArchived returns an archived placement.
func PlaceArchived() Placement {
	return Placement{status: StatusArchived}
}

// Status returns the partition this placement names.
func (p Placement) Status() Status {
	return p.status
}

// Rank returns the active rank; ok is false for non-active placements.
func (p Placement) Rank() (rank int, ok bool) {
	if p.status != StatusActive {
		return 0, false
	}
	return p.rank, true
}

// Active reports whether the placement is in the active partition.
func (p Placement) Active() bool {
	return p.status == StatusActive
}

// IsZero reports whether p is the invalid zero value. Backends reject zero
// placements; they only arise from uninitialized structs.
func (p Placement) IsZero() bool {
	return p.status == ""
}

// String renders the placement for logs and error messages.
func (p Placement) String() string {
	if p.status == StatusActive {
		return fmt.Sprintf("active#%d", p.rank)
	}
	return string(p.status)
}

// placementJSON is the wire form of Placement.
type placementJSON struct {
	Status Status `json:"status"`
	Rank   *int   `json:"rank,omitempty"`
}

// MarshalJSON encodes the placement with a rank field for active placements
// only.
func (p Placement) MarshalJSON() ([]byte, error) {
	out := placementJSON{Status: p.status}
	if p.status == StatusActive {
		rank := p.rank
		out.Rank = &rank
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates a placement. Active placements require
// rank >= 1; completed and archived placements must not carry one.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var in placementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Status {
	case StatusActive:
		if in.Rank == nil {
			return fmt.Errorf("active placement without rank: %w", ErrRankRequired)
		}
		placed, err := PlaceActive(*in.Rank)
		if err != nil {
			return err
		}
		*p = placed
	case StatusCompleted, StatusArchived:
		if in.Rank != nil {
			return fmt.Errorf("%s placement with rank: %w", in.Status, ErrInvalidRank)
		}
		*p = Placement{status: in.Status}
	default:
		return fmt.Errorf("placement status %q: %w", in.Status, ErrStatusUnknown)
	}
	return nil
}
