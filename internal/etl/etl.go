// Package etl holds the plumbing shared by every loader run: the run
// ledger types, counter bookkeeping, the per-record error policy, and the
// interfaces connecting loaders to archive and notification backends.
package etl

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of one loader run.
type RunStatus string

// Run status values persisted in source_runs.
const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Counters tracks what a loader run did.
type Counters struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// SourceRun is one row of the run ledger.
type SourceRun struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Status     RunStatus         `json:"status"`
	Counters   Counters          `json:"counters"`
	ErrorText  string            `json:"error_text,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// RunEvent is the payload published when a run finishes.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Status     RunStatus `json:"status"`
	Counters   Counters  `json:"counters"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	ErrorText  string    `json:"error_text,omitempty"`
}

// RunStore persists the run ledger.
type RunStore interface {
	CreateRun(ctx context.Context, run SourceRun) error
	FinishRun(ctx context.Context, run SourceRun) error
	ListRuns(ctx context.Context, source string, limit int) ([]SourceRun, error)
}

// BlobStore writes raw payloads and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes run events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests for archive object names.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
