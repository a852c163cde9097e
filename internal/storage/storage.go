// Package storage persists computation runs for later inspection and
// export.
package storage

import (
	"errors"

	"github.com/kspkit/stagesim/internal/model"
)

// ErrExportUnsupported is returned when a backend cannot write export
// files.
var ErrExportUnsupported = errors.New("storage backend does not support export")

// Backend is the interface all run-history implementations satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// RecordRun stores one completed computation (assigns run.ID).
	RecordRun(run *model.VesselRun) error

	// Runs returns every stored run, stages included, oldest first.
	Runs() ([]model.VesselRun, error)
}

// Exportable is an optional interface for backends that write run files
// suitable for sharing.
type Exportable interface {
	// Export writes all stored runs and returns the file path.
	Export() (string, error)
}
