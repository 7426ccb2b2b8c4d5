// Package sqlite provides the public API for the SQLite link store.
// It exposes the factory while keeping the implementation internal.
package sqlite

import (
	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/docflow/internal/sqlite"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

// NewBackend creates a new SQLite store. The store is not attached; call
// Attach with a Config to initialize. A nil logger discards output.
//
// Example:
//
//	store := sqlite.NewBackend(nil)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".docflow-db",
//	})
//	defer store.Detach()
func NewBackend(logger *log.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}
