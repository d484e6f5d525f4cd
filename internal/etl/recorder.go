package etl

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/telemetry"
)

// RecorderConfig wires a Recorder to its backends. Store, Publisher, and
// Archive may be nil; a nil backend is simply skipped.
type RecorderConfig struct {
	Source    string
	Store     RunStore
	Publisher Publisher
	Archive   BlobStore
	Hasher    Hasher
	IDs       IDGenerator
	Clock     clockwork.Clock
	Logger    *zap.Logger
	Topic     string
	Prefix    string
}

// Recorder tracks one loader run: counters, archived payload URIs, and the
// ledger row. It is safe for concurrent use; the ACS pipeline counts from
// two goroutines.
type Recorder struct {
	mu  sync.Mutex
	run SourceRun

	store     RunStore
	publisher Publisher
	archive   BlobStore
	hasher    Hasher
	clock     clockwork.Clock
	logger    *zap.Logger
	topic     string
	prefix    string
}

// Begin opens a run: generates the run id, writes the running ledger row,
// and logs the start.
func Begin(ctx context.Context, cfg RecorderConfig) (*Recorder, error) {
	if cfg.Source == "" {
		return nil, fmt.Errorf("recorder source is required")
	}
	if cfg.IDs == nil {
		return nil, fmt.Errorf("recorder id generator is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	id, err := cfg.IDs.NewID()
	if err != nil {
		return nil, fmt.Errorf("new run id: %w", err)
	}

	r := &Recorder{
		run: SourceRun{
			ID:        id,
			Source:    cfg.Source,
			StartedAt: cfg.Clock.Now().UTC(),
			Status:    RunRunning,
			Details:   map[string]string{},
		},
		store:     cfg.Store,
		publisher: cfg.Publisher,
		archive:   cfg.Archive,
		hasher:    cfg.Hasher,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		topic:     cfg.Topic,
		prefix:    cfg.Prefix,
	}

	if r.store != nil {
		if err := r.store.CreateRun(ctx, r.run); err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
	}
	r.logger.Info("run started", zap.String("run_id", id), zap.String("source", cfg.Source))
	return r, nil
}

// RunID returns the ledger id of this run.
func (r *Recorder) RunID() string {
	return r.run.ID
}

// CountFetch records one outbound fetch and its outcome.
func (r *Recorder) CountFetch(bytesFetched int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.mu.Lock()
	r.run.Counters.Fetched++
	r.mu.Unlock()
	telemetry.ObserveFetch(r.run.Source, outcome, bytesFetched)
}

// CountRow records one row through the upsert writer.
func (r *Recorder) CountRow(table string, inserted bool) {
	outcome := "skipped"
	r.mu.Lock()
	if inserted {
		r.run.Counters.Inserted++
		outcome = "inserted"
	} else {
		r.run.Counters.Skipped++
	}
	r.mu.Unlock()
	telemetry.ObserveRow(table, outcome)
}

// RecordFailure applies the per-record error policy: log, count, continue.
func (r *Recorder) RecordFailure(msg string, err error, fields ...zap.Field) {
	r.mu.Lock()
	r.run.Counters.Failed++
	r.mu.Unlock()
	fields = append(fields, zap.String("source", r.run.Source), zap.Error(err))
	r.logger.Warn(msg, fields...)
}

// ArchiveRaw writes a raw payload to the blob store under
// prefix/source/runID/<hash12>-<name> and remembers the URI in the run
// details. Archive failures are logged, never fatal.
func (r *Recorder) ArchiveRaw(ctx context.Context, name, contentType string, data []byte) string {
	if r.archive == nil || len(data) == 0 {
		return ""
	}
	base := name
	if r.hasher != nil {
		if digest, err := r.hasher.Hash(data); err == nil && len(digest) >= 12 {
			base = digest[:12] + "-" + name
		}
	}
	objPath := path.Join(r.prefix, r.run.Source, r.run.ID, base)
	uri, err := r.archive.PutObject(ctx, objPath, contentType, data)
	if err != nil {
		r.logger.Warn("archive write failed", zap.String("path", objPath), zap.Error(err))
		return ""
	}
	r.mu.Lock()
	r.run.Details[name] = uri
	r.mu.Unlock()
	return uri
}

// Finish closes the run: final status, ledger update, run event, metrics.
// The loader's own error is passed through unchanged so the command exits
// nonzero; ledger and publish failures are logged only.
func (r *Recorder) Finish(ctx context.Context, runErr error) error {
	now := r.clock.Now().UTC()

	r.mu.Lock()
	r.run.FinishedAt = &now
	r.run.Status = RunSucceeded
	if runErr != nil {
		r.run.Status = RunFailed
		r.run.ErrorText = runErr.Error()
	}
	run := r.run
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.FinishRun(ctx, run); err != nil {
			r.logger.Warn("run ledger update failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	if r.publisher != nil {
		event := RunEvent{
			RunID:      run.ID,
			Source:     run.Source,
			Status:     run.Status,
			Counters:   run.Counters,
			StartedAt:  run.StartedAt,
			FinishedAt: now,
			ErrorText:  run.ErrorText,
		}
		if _, err := r.publisher.Publish(ctx, r.topic, event); err != nil {
			r.logger.Warn("run event publish failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	telemetry.ObserveRun(run.Source, string(run.Status))
	r.logger.Info("run finished",
		zap.String("run_id", run.ID),
		zap.String("source", run.Source),
		zap.String("status", string(run.Status)),
		zap.Int("fetched", run.Counters.Fetched),
		zap.Int("inserted", run.Counters.Inserted),
		zap.Int("skipped", run.Counters.Skipped),
		zap.Int("failed", run.Counters.Failed),
	)
	return runErr
}

// Counters returns a snapshot of the run counters.
func (r *Recorder) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run.Counters
}

// Summary renders the one-line CLI summary, green for a clean run, yellow
// when records failed, red when the run itself failed.
func (r *Recorder) Summary() string {
	r.mu.Lock()
	run := r.run
	r.mu.Unlock()

	paint := color.New(color.FgGreen).SprintfFunc()
	switch {
	case run.Status == RunFailed:
		paint = color.New(color.FgRed).SprintfFunc()
	case run.Counters.Failed > 0:
		paint = color.New(color.FgYellow).SprintfFunc()
	}

	elapsed := time.Duration(0)
	if run.FinishedAt != nil {
		elapsed = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond)
	}
	return paint("%s: %s fetched=%d inserted=%d skipped=%d failed=%d in %s",
		run.Source, run.Status,
		run.Counters.Fetched, run.Counters.Inserted, run.Counters.Skipped, run.Counters.Failed,
		elapsed,
	)
}
