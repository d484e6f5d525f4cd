package acs

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/sites"
)

// Loader runs the ACS batch pipeline: one producer goroutine issues batch
// requests with a fixed delay between launches, parsed rows flow over a
// bounded channel, and the consumer upserts them. The recorder is shared by
// both goroutines.
type Loader struct {
	client *Client
	zips   sites.ZipStore
	cfg    config.CensusConfig
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewLoader returns an ACS loader. A nil clock means wall time.
func NewLoader(client *Client, zips sites.ZipStore, cfg config.CensusConfig, clock clockwork.Clock, logger *zap.Logger) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, zips: zips, cfg: cfg, clock: clock, logger: logger}
}

type batch struct {
	index int
	rows  []sites.ZipDemographics
}

// Run loads demographics for the given ZCTAs, stamping each row with the
// state label.
func (l *Loader) Run(ctx context.Context, rec *etl.Recorder, zctas []string, state string) error {
	results := make(chan batch, l.cfg.PipelineDepth)
	go l.produce(ctx, rec, splitBatches(zctas, l.cfg.BatchSize), results)

	for b := range results {
		for _, row := range b.rows {
			row.State = state
			row.LoadedAt = l.clock.Now().UTC()
			inserted, err := l.zips.Insert(ctx, row)
			if err != nil {
				rec.RecordFailure("insert zip demographics", err, zap.String("zip", row.Zip))
				continue
			}
			rec.CountRow("zips_master", inserted)
		}
	}
	return ctx.Err()
}

// produce fetches every batch in order and closes the channel when done.
// A failed batch is recorded and skipped; cancellation stops the run.
func (l *Loader) produce(ctx context.Context, rec *etl.Recorder, batches [][]string, results chan<- batch) {
	defer close(results)

	delay := time.Duration(l.cfg.BatchDelayMs) * time.Millisecond
	for i, zctas := range batches {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-l.clock.After(delay):
			}
		}

		rows, raw, err := l.client.FetchBatch(ctx, zctas)
		rec.CountFetch(len(raw), err)
		if len(raw) > 0 {
			rec.ArchiveRaw(ctx, fmt.Sprintf("acs-%d-batch-%03d.json", l.client.Year(), i), "application/json", raw)
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			rec.RecordFailure("acs batch fetch failed", err, zap.Int("batch", i), zap.Int("zctas", len(zctas)))
			continue
		}

		select {
		case results <- batch{index: i, rows: rows}:
		case <-ctx.Done():
			return
		}
	}
}

// splitBatches chunks the ZCTA list, clamping the size to the API limit.
func splitBatches(zctas []string, size int) [][]string {
	if size <= 0 || size > maxBatch {
		size = maxBatch
	}
	var batches [][]string
	for start := 0; start < len(zctas); start += size {
		batches = append(batches, zctas[start:min(start+size, len(zctas))])
	}
	return batches
}
