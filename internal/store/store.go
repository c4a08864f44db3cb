// Package store persists the history of pipeline runs.
package store

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID           string     `db:"id" json:"id"`
	Status       RunStatus  `db:"status" json:"status"`
	ConfigDigest string     `db:"config_digest" json:"config_digest"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Rows         int        `db:"row_count" json:"rows"`
	UnitsLow     float64    `db:"units_low" json:"units_low"`
	UnitsHigh    float64    `db:"units_high" json:"units_high"`
	Error        *string    `db:"error" json:"error,omitempty"`
}

// Stage is one stage execution within a run.
type Stage struct {
	RunID      string `db:"run_id" json:"run_id"`
	Seq        int    `db:"seq" json:"seq"`
	Name       string `db:"name" json:"name"`
	RowsBefore int    `db:"rows_before" json:"rows_before"`
	RowsAfter  int    `db:"rows_after" json:"rows_after"`
	DurationMs int64  `db:"duration_ms" json:"duration_ms"`
}

// RunResult are the totals recorded when a run completes.
type RunResult struct {
	Rows      int
	UnitsLow  float64
	UnitsHigh float64
}

// Store defines the persistence interface for run history.
type Store interface {
	CreateRun(ctx context.Context, configDigest string) (*Run, error)
	RecordStage(ctx context.Context, stage Stage) error
	CompleteRun(ctx context.Context, runID string, result RunResult) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListStages(ctx context.Context, runID string) ([]Stage, error)

	Migrate(ctx context.Context) error
	Close() error
}
