// Package history records finished builds in a SQL database.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/satishbabariya/mika-go/internal/debug"
)

// Record is one build in the history
type Record struct {
	ID        int64
	Input     string
	Output    string
	State     string
	Success   bool
	Error     string
	StartedAt time.Time
	Duration  time.Duration
	Size      int64
	// Checksum is the SHA-256 of the Mika source that was built.
	Checksum string
}

// Manager stores build records
type Manager struct {
	db       *sql.DB
	provider string
}

// NewManager creates a history manager over an open database. provider is
// the database/sql driver name.
func NewManager(db *sql.DB, provider string) *Manager {
	return &Manager{
		db:       db,
		provider: NormalizeDriver(provider),
	}
}

// Open connects to the history database and creates its table. For sqlite
// the parent directory of the database file is created first.
func Open(ctx context.Context, driver, dsn string) (*Manager, error) {
	driver = NormalizeDriver(driver)
	if driver == "sqlite3" {
		if path := sqlitePath(dsn); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	m := NewManager(db, driver)
	if err := m.InitTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	debug.Debug("Opened build history", "driver", driver)
	return m, nil
}

// NormalizeDriver maps provider names to database/sql driver names.
// PostgreSQL driver uses "postgres", not "postgresql"
// SQLite driver uses "sqlite3", not "sqlite"
func NormalizeDriver(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "postgres"
	case "sqlite", "sqlite3", "":
		return "sqlite3"
	default:
		return provider
	}
}

func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

// Close closes the database
func (m *Manager) Close() error {
	return m.db.Close()
}

// InitTable creates the build history table
func (m *Manager) InitTable(ctx context.Context) error {
	createTableSQL := m.getTableSQL()
	if createTableSQL == "" {
		return fmt.Errorf("unsupported history driver: %s", m.provider)
	}
	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// Record stores a finished build
func (m *Manager) Record(ctx context.Context, record *Record) error {
	_, err := m.db.ExecContext(ctx, m.getInsertSQL(),
		record.Input,
		record.Output,
		record.State,
		record.Success,
		record.Error,
		record.StartedAt.UTC(),
		record.Duration.Milliseconds(),
		record.Size,
		record.Checksum,
	)
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}
	debug.Debug("Recorded build", "input", record.Input, "state", record.State)
	return nil
}

// List returns the most recent builds first. limit <= 0 returns all.
func (m *Manager) List(ctx context.Context, limit int) ([]Record, error) {
	query := m.getSelectSQL()
	args := []any{}
	if limit > 0 {
		query += " LIMIT " + m.placeholder(1)
		args = append(args, limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var durationMs int64
		var errText sql.NullString
		err := rows.Scan(
			&record.ID,
			&record.Input,
			&record.Output,
			&record.State,
			&record.Success,
			&errText,
			&record.StartedAt,
			&durationMs,
			&record.Size,
			&record.Checksum,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		record.Duration = time.Duration(durationMs) * time.Millisecond
		record.Error = errText.String
		records = append(records, record)
	}

	return records, rows.Err()
}

// Clear deletes every record and returns how many were removed
func (m *Manager) Clear(ctx context.Context) (int64, error) {
	res, err := m.db.ExecContext(ctx, "DELETE FROM mika_builds")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// CalculateChecksum calculates a checksum for a Mika source
func CalculateChecksum(source []byte) string {
	hash := sha256.Sum256(source)
	return hex.EncodeToString(hash[:])
}

func (m *Manager) placeholder(n int) string {
	if m.provider == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// getTableSQL returns SQL to create the build history table
func (m *Manager) getTableSQL() string {
	switch m.provider {
	case "postgres":
		return `
			CREATE TABLE IF NOT EXISTS mika_builds (
				id SERIAL PRIMARY KEY,
				input TEXT NOT NULL,
				output TEXT NOT NULL,
				state VARCHAR(32) NOT NULL,
				success BOOLEAN NOT NULL DEFAULT FALSE,
				error TEXT,
				started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				duration_ms BIGINT NOT NULL DEFAULT 0,
				size BIGINT NOT NULL DEFAULT 0,
				checksum VARCHAR(64) NOT NULL
			)
		`
	case "mysql":
		return `
			CREATE TABLE IF NOT EXISTS mika_builds (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				input TEXT NOT NULL,
				output TEXT NOT NULL,
				state VARCHAR(32) NOT NULL,
				success TINYINT(1) NOT NULL DEFAULT 0,
				error TEXT,
				started_at DATETIME(3) NOT NULL,
				duration_ms BIGINT NOT NULL DEFAULT 0,
				size BIGINT NOT NULL DEFAULT 0,
				checksum VARCHAR(64) NOT NULL
			)
		`
	case "sqlite3":
		return `
			CREATE TABLE IF NOT EXISTS mika_builds (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				input TEXT NOT NULL,
				output TEXT NOT NULL,
				state TEXT NOT NULL,
				success INTEGER NOT NULL DEFAULT 0,
				error TEXT,
				started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				size INTEGER NOT NULL DEFAULT 0,
				checksum TEXT NOT NULL
			)
		`
	default:
		return ""
	}
}

// getInsertSQL returns SQL to insert a build record
func (m *Manager) getInsertSQL() string {
	switch m.provider {
	case "postgres":
		return `
			INSERT INTO mika_builds (input, output, state, success, error, started_at, duration_ms, size, checksum)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
	default:
		return `
			INSERT INTO mika_builds (input, output, state, success, error, started_at, duration_ms, size, checksum)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
	}
}

// getSelectSQL returns SQL to select builds, newest first
func (m *Manager) getSelectSQL() string {
	return `
		SELECT id, input, output, state, success, error, started_at, duration_ms, size, checksum
		FROM mika_builds
		ORDER BY started_at DESC, id DESC`
}
