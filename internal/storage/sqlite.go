/*
Package storage provides the SQLite backend, its migrations and helpers.

Timestamps are stored as fixed-width UTC text so that string comparison in
SQL matches chronological order.
*/
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that lexical order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   zerolog.Logger
	mu       sync.RWMutex // writers and Close lock; readers share
	initOnce sync.Once
	initErr  error
}

// NewStorage creates a SQLite storage at dbPath. The database is opened by Init.
func NewStorage(dbPath string, logger zerolog.Logger) *SQLiteStorage {
	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
		logger:  logger.With().Str("component", "storage").Logger(),
	}
}

// Init opens the database and runs migrations.
//
// If initialization fails the storage stays disabled and every later
// operation returns ErrStorageUnavailable.
func (s *SQLiteStorage) Init() error {
	s.initOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.dbPath == "" {
			s.initErr = fmt.Errorf("%w: no database path", ErrStorageUnavailable)
			s.enabled = false
			return
		}

		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			s.fail(fmt.Errorf("failed to create db directory: %w", err))
			return
		}

		dsn := s.dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			s.fail(fmt.Errorf("failed to open database: %w", err))
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			s.fail(fmt.Errorf("failed to ping database: %w", err))
			return
		}

		if err := s.runMigrations(); err != nil {
			s.fail(fmt.Errorf("failed to run migrations: %w", err))
			return
		}
	})

	return s.initErr
}

func (s *SQLiteStorage) fail(err error) {
	s.initErr = fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	s.enabled = false
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	s.logger.Warn().Err(err).Str("path", s.dbPath).Msg("history storage disabled")
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// available returns ErrStorageUnavailable when the database is not usable.
func (s *SQLiteStorage) available() error {
	if !s.enabled || s.db == nil {
		if s.initErr != nil {
			return s.initErr
		}
		return fmt.Errorf("%w: database not initialized", ErrStorageUnavailable)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	s.enabled = false
	return nil
}

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "calculations", up: s.migration001Calculations},
	}

	for _, m := range migrations {
		if version < m.version {
			s.logger.Debug().Int("version", m.version).Str("name", m.name).Msg("running migration")
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

func (s *SQLiteStorage) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *SQLiteStorage) setMigrationVersion(m migration) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name)
	return err
}

// migration001Calculations creates the calculations table.
func (s *SQLiteStorage) migration001Calculations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS calculations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			shape_kind TEXT NOT NULL,
			dimension TEXT NOT NULL,
			parameters TEXT NOT NULL,
			area REAL,
			perimeter REAL,
			volume REAL,
			duration_ms REAL,
			created_at TEXT NOT NULL,
			session_id TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create calculations table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_calculations_created_at
		ON calculations(created_at DESC)
	`); err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_calculations_session
		ON calculations(session_id)
	`); err != nil {
		return fmt.Errorf("failed to create session index: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// paramsToJSON converts parameters to JSON for storage.
func paramsToJSON(params map[string]float64) (string, error) {
	if params == nil {
		params = map[string]float64{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// jsonToParams parses stored JSON back to parameters.
func jsonToParams(s string) (map[string]float64, error) {
	params := map[string]float64{}
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		return nil, err
	}
	return params, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return Float(v.Float64)
}
