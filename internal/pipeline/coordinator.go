// Package pipeline sequences one snapshot run: fetch, inspect, normalize,
// persist. A run is strictly sequential; each stage consumes the complete
// output of the previous one. Runs are triggered on an external cadence
// and must not overlap against the same sink keyspace.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/normalize"
	"main/internal/obs"
	"main/internal/quality"
)

// Source supplies one raw snapshot batch per run.
type Source interface {
	Fetch(ctx context.Context) (model.RawBatch, error)
}

// Sink is the durable upsert-capable store keyed by record identifier.
type Sink interface {
	Ping(ctx context.Context) error
	Upsert(ctx context.Context, rec model.CanonicalRecord) error
	RecordRun(ctx context.Context, entry model.RunLog) error
}

// RunResult is the structured outcome of one run. Persistence is
// best-effort per row: FailedIDs lists the identifiers whose upsert was
// rolled back while the rest of the batch committed.
type RunResult struct {
	RunID   string
	Outcome enum.RunOutcome
	Status  enum.QualityStatus
	Report  quality.Report

	RowsFetched int
	RowsDropped int
	RowsWritten int
	FailedIDs   []string

	Err error
}

// Coordinator wires the source, the policy engine and the sink together.
type Coordinator struct {
	source     Source
	sink       Sink
	inspector  *quality.Inspector
	normalizer *normalize.Normalizer
	metrics    *obs.Metrics
}

// NewCoordinator builds a coordinator. metrics may be nil.
func NewCoordinator(source Source, sink Sink, inspector *quality.Inspector, normalizer *normalize.Normalizer, metrics *obs.Metrics) *Coordinator {
	return &Coordinator{
		source:     source,
		sink:       sink,
		inspector:  inspector,
		normalizer: normalizer,
		metrics:    metrics,
	}
}

// Run executes one complete pipeline pass. The quality verdict never stops
// the run; it is attached to every persisted record as quality_status.
// Only a batch-level failure aborts: unreachable source, a structurally
// unusable batch, or a sink that cannot be reached at all.
func (c *Coordinator) Run(ctx context.Context) RunResult {
	started := time.Now()
	res := RunResult{RunID: uuid.NewString(), Outcome: enum.RunAborted}
	logs.Infof("run %s: fetching snapshot", res.RunID)

	fetchStart := time.Now()
	batch, err := c.source.Fetch(ctx)
	c.metrics.ObserveFetch(time.Since(fetchStart))
	if err != nil {
		res.Outcome = enum.RunFetchFailed
		res.Err = err
		logs.Errorf("run %s: fetch failed, err: %+v", res.RunID, err)
		return c.finish(ctx, started, res)
	}
	res.RowsFetched = len(batch)

	inspectStart := time.Now()
	report, err := c.inspector.Inspect(batch)
	c.metrics.ObserveInspect(time.Since(inspectStart))
	if err != nil {
		res.Err = err
		logs.Errorf("run %s: batch structurally unusable, err: %+v", res.RunID, err)
		return c.finish(ctx, started, res)
	}
	res.Report = report
	res.Status = report.Status()
	for _, f := range report.Findings {
		logs.Infof("run %s: defect %s on %s, %d row(s)", res.RunID, f.Check, f.Field, f.Rows)
	}
	logs.Infof("run %s: quality verdict %s over %d row(s)", res.RunID, res.Status, report.Rows)

	normStart := time.Now()
	norm := c.normalizer.Normalize(batch)
	c.metrics.ObserveNormalize(time.Since(normStart))
	res.RowsDropped = norm.Dropped()
	logs.Infof("run %s: normalized %d -> %d row(s), dropped %d (essential %d, range %d), coercion failures %d, nulls after %d",
		res.RunID, len(batch), len(norm.Records), norm.Dropped(),
		norm.DroppedMissingEssential+norm.DroppedNullAfterCoerce, norm.DroppedOutOfRange,
		norm.CoercionFailures, norm.NullsAfter)

	canonical := model.CanonicalBatch{Records: norm.Records, Status: res.Status}

	if res.RowsFetched == 0 {
		// Distinguishable from a passing run that wrote zero rows.
		res.Outcome = enum.RunEmptyBatch
		logs.Infof("run %s: empty snapshot, nothing to persist", res.RunID)
		return c.finish(ctx, started, res)
	}

	if err := c.sink.Ping(ctx); err != nil {
		res.Err = err
		logs.Errorf("run %s: sink unavailable, err: %+v", res.RunID, err)
		return c.finish(ctx, started, res)
	}

	persistStart := time.Now()
	res.RowsWritten, res.FailedIDs = c.persist(ctx, canonical)
	c.metrics.ObservePersist(time.Since(persistStart))

	res.Outcome = enum.RunCompleted
	logs.Infof("run %s: completed, wrote %d row(s), %d failed, status %s",
		res.RunID, res.RowsWritten, len(res.FailedIDs), res.Status)
	return c.finish(ctx, started, res)
}

// persist upserts each record in its own transaction. A row failure is
// logged, tallied and skipped; the pass keeps going.
func (c *Coordinator) persist(ctx context.Context, batch model.CanonicalBatch) (written int, failed []string) {
	for _, rec := range batch.Records {
		rec.QualityStatus = batch.Status
		if err := c.sink.Upsert(ctx, rec); err != nil {
			logs.Errorf("upsert row %q, err: %+v", rec.ID, err)
			failed = append(failed, rec.ID)
			continue
		}
		written++
	}
	return written, failed
}

// finish records the run log and metrics. Run-log failures are logged and
// swallowed: history must never change a run's outcome.
func (c *Coordinator) finish(ctx context.Context, started time.Time, res RunResult) RunResult {
	c.metrics.ObserveRun(res.Outcome, res.RowsFetched, res.RowsDropped, res.RowsWritten, len(res.FailedIDs))

	entry := model.RunLog{
		ID:            res.RunID,
		StartedAt:     started.UTC(),
		FinishedAt:    time.Now().UTC(),
		Outcome:       res.Outcome.String(),
		QualityStatus: res.Status,
		RowsFetched:   res.RowsFetched,
		RowsDropped:   res.RowsDropped,
		RowsWritten:   res.RowsWritten,
		RowsFailed:    len(res.FailedIDs),
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if err := c.sink.RecordRun(ctx, entry); err != nil {
		logs.Errorf("record run %s, err: %+v", res.RunID, err)
	}
	return res
}
