// Package memory stores runs in memory and exports them to JSON.
package memory

import (
	"sync"

	"github.com/kspkit/stagesim/internal/config"
	"github.com/kspkit/stagesim/internal/model"
)

// Backend keeps runs in memory; Export writes them to disk.
type Backend struct {
	cfg config.MemoryConfig

	mu        sync.RWMutex
	runs      []model.VesselRun
	idCounter uint
}

// New creates a new memory backend.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// RecordRun stores one completed computation.
func (b *Backend) RecordRun(run *model.VesselRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	run.ID = b.idCounter
	for i := range run.Stages {
		run.Stages[i].VesselRunID = run.ID
	}
	b.runs = append(b.runs, *run)
	return nil
}

// Runs returns every stored run, oldest first.
func (b *Backend) Runs() ([]model.VesselRun, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.VesselRun, len(b.runs))
	copy(out, b.runs)
	return out, nil
}
