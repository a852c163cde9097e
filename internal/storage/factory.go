package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kspkit/stagesim/internal/config"
	"github.com/kspkit/stagesim/internal/storage/memory"
	postgresstorage "github.com/kspkit/stagesim/internal/storage/postgres"
	sqlitestorage "github.com/kspkit/stagesim/internal/storage/sqlite"
)

// NewBackend creates a run-history backend based on configuration.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlitestorage.New(cfg.Sqlite), nil
	case "postgres":
		return postgresstorage.New(log), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
