// Package state keeps the run journal: a SQLite history of workflow runs
// and the persona calls made in each. It is stored either globally
// (~/.local/share/devteam/journal.db) or per project (.devteam/journal.db).
package state

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps an SQLite database connection with journal operations.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// GlobalDBPath returns the path to the global journal.
func GlobalDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "devteam", "journal.db")
}

// ProjectDBPath returns the path to the project-local journal.
func ProjectDBPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".devteam", "journal.db")
}

// Locate picks the journal for projectRoot: the project journal once a
// .devteam directory exists there, the global one otherwise.
func Locate(projectRoot string) string {
	if projectRoot != "" {
		if info, err := os.Stat(filepath.Join(projectRoot, ".devteam")); err == nil && info.IsDir() {
			return ProjectDBPath(projectRoot)
		}
	}
	return GlobalDBPath()
}

// Open opens the journal at path, creating parent directories as needed.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &DB{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

type migration struct {
	version int
	sql     string
}

// migrations are applied in order; versions never change once released.
var migrations = []migration{
	{1, migrationV1Runs},
	{2, migrationV2PersonaCalls},
}

// LatestSchemaVersion is the version Migrate brings a journal to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion reports the highest applied migration, zero for a fresh file.
func (db *DB) SchemaVersion() (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.schemaVersion()
}

func (db *DB) schemaVersion() (int, error) {
	var exists int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&exists)
	if err != nil || exists == 0 {
		return 0, err
	}
	var version int
	if err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current, err := db.schemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := db.apply(m); err != nil {
			return err
		}
		log.Printf("[journal] %s migrated to v%d", db.path, m.version)
	}
	return nil
}

func (db *DB) apply(m migration) error {
	return db.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		return nil
	})
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS workflow_runs (
	id TEXT PRIMARY KEY,
	work_item_id TEXT NOT NULL,
	title TEXT NOT NULL,
	item_type TEXT NOT NULL,
	workflow TEXT NOT NULL,
	phase TEXT NOT NULL,
	outcome TEXT NOT NULL,
	item_status TEXT NOT NULL,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	pr_number INTEGER NOT NULL DEFAULT 0,
	errors TEXT,
	started_at DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_workflow_runs_work_item ON workflow_runs(work_item_id);
CREATE INDEX IF NOT EXISTS idx_workflow_runs_started_at ON workflow_runs(started_at);
`

const migrationV2PersonaCalls = `
CREATE TABLE IF NOT EXISTS persona_calls (
	run_id TEXT NOT NULL REFERENCES workflow_runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	persona TEXT NOT NULL,
	action TEXT NOT NULL,
	decision TEXT NOT NULL,
	review_decision TEXT,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Query runs a read query under the shared lock.
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.Query(query, args...)
}

// QueryRow runs a single-row read query under the shared lock.
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.QueryRow(query, args...)
}

// Transaction runs fn in a transaction, rolling back if fn fails.
func (db *DB) Transaction(fn func(tx *sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.inTx(fn)
}

// inTx expects the write lock to be held.
func (db *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime also accepts plain RFC 3339 values.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}
