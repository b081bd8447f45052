package state

import (
	"io"
	"time"
)

// RunStore handles journal persistence.
type RunStore interface {
	RecordRun(r *Run) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
	PurgeOldRuns(olderThan time.Duration) (int64, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Journal is the full journal backend.
type Journal interface {
	io.Closer
	Migrator
	RunStore
}

var (
	_ Journal  = (*DB)(nil)
	_ RunStore = (*DB)(nil)
)
