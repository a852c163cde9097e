// Package postgres persists run history to Postgres, falling back to a
// shared local SQLite database when the server is unreachable.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kspkit/stagesim/internal/database"
	"github.com/kspkit/stagesim/internal/model"
)

// Backend stores runs through the database manager's preferred
// connection.
type Backend struct {
	manager *database.Manager
}

// New creates a postgres backend. Connection parameters come from the
// db.* configuration keys.
func New(log zerolog.Logger) *Backend {
	return &Backend{manager: database.NewManager(log)}
}

// Init connects and migrates the schema. A failed Postgres connection
// degrades to local SQLite inside the manager rather than failing Init.
func (b *Backend) Init() error {
	if err := b.manager.Connect(); err != nil {
		return fmt.Errorf("connecting run database: %w", err)
	}
	if err := b.manager.Migrate(); err != nil {
		return fmt.Errorf("migrating run database: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	return b.manager.Close()
}

// RecordRun persists one completed computation and its stage rows.
func (b *Backend) RecordRun(run *model.VesselRun) error {
	if !b.manager.IsValid {
		return fmt.Errorf("backend not initialized")
	}
	if err := b.manager.DB.Create(run).Error; err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Runs returns every stored run with its stages, oldest first.
func (b *Backend) Runs() ([]model.VesselRun, error) {
	if !b.manager.IsValid {
		return nil, fmt.Errorf("backend not initialized")
	}
	var runs []model.VesselRun
	if err := b.manager.DB.Preload("Stages").Order("id asc").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return runs, nil
}
