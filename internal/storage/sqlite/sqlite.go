// Package sqlite persists run history to a SQLite database via GORM.
package sqlite

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kspkit/stagesim/internal/config"
	"github.com/kspkit/stagesim/internal/database"
	"github.com/kspkit/stagesim/internal/model"
)

// Backend stores runs in a SQLite database.
type Backend struct {
	cfg config.SqliteConfig
	db  *gorm.DB
}

// New creates a new sqlite backend.
func New(cfg config.SqliteConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init opens the database and migrates the schema.
func (b *Backend) Init() error {
	db, err := database.GetSqliteDBStandalone(b.cfg.Path)
	if err != nil {
		return fmt.Errorf("opening sqlite db: %w", err)
	}
	b.db = db

	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordRun persists one completed computation and its stage rows.
func (b *Backend) RecordRun(run *model.VesselRun) error {
	if b.db == nil {
		return fmt.Errorf("backend not initialized")
	}
	if err := b.db.Create(run).Error; err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Runs returns every stored run with its stages, oldest first.
func (b *Backend) Runs() ([]model.VesselRun, error) {
	if b.db == nil {
		return nil, fmt.Errorf("backend not initialized")
	}
	var runs []model.VesselRun
	if err := b.db.Preload("Stages").Order("id asc").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	return runs, nil
}
