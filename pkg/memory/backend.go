// Package memory provides the public API for the in-memory ladder backend.
// The backend keeps all todos in process memory and forgets them on Detach,
// which makes it suitable for tests and throwaway sessions.
package memory

import (
	"github.com/rankwise/ladder/internal/memory"
	"github.com/rankwise/ladder/pkg/types"
)

// NewBackend creates a new in-memory backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := memory.NewBackend()
//	err := backend.Attach(types.Config{Backend: types.BackendMemory})
//	defer backend.Detach()
func NewBackend() types.Store {
	return memory.NewBackend()
}
