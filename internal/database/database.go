// Package database manages run-history database connections: Postgres
// when reachable, with a local SQLite fallback.
package database

import (
	"database/sql"
	"fmt"

	"github.com/kspkit/stagesim/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Manager handles database connections and schema migration.
type Manager struct {
	DB              *gorm.DB
	SqlDB           *sql.DB
	IsValid         bool
	ShouldSaveLocal bool
	Logger          zerolog.Logger
}

// NewManager creates a new database manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		IsValid:         false,
		ShouldSaveLocal: false,
		Logger:          log,
	}
}

// Connect establishes a database connection, falling back to SQLite if
// Postgres fails.
func (m *Manager) Connect() error {
	var err error

	m.DB, err = m.GetPostgresDB()
	if err == nil {
		m.SqlDB, err = m.DB.DB()
		if err == nil {
			err = m.SqlDB.Ping()
		}
	}
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
		m.ShouldSaveLocal = true
		m.DB, err = m.GetSqliteDB("")
		if err != nil || m.DB == nil {
			m.IsValid = false
			return fmt.Errorf("failed to get local SQLite DB: %w", err)
		}
		m.SqlDB, err = m.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
	}

	m.IsValid = true
	if !m.ShouldSaveLocal {
		m.SqlDB.SetMaxOpenConns(10)
	}
	m.Logger.Info().Bool("sqlite", m.ShouldSaveLocal).Msg("Connected to database")
	return nil
}

// Migrate creates or updates the run-history schema.
func (m *Manager) Migrate() error {
	if m.DB == nil {
		return fmt.Errorf("no database connection")
	}
	if err := m.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (m *Manager) Close() error {
	if m.SqlDB != nil {
		return m.SqlDB.Close()
	}
	return nil
}

// GetPostgresDB returns a connection to the Postgres database configured
// under the db.* keys.
func (m *Manager) GetPostgresDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// GetSqliteDB returns a SQLite connection. An empty path opens an
// in-memory database.
func (m *Manager) GetSqliteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// GetSqliteDBStandalone opens a SQLite connection without a Manager.
func GetSqliteDBStandalone(path string) (*gorm.DB, error) {
	m := Manager{}
	return m.GetSqliteDB(path)
}
