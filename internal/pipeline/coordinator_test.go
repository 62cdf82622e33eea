package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/normalize"
	"main/internal/obs"
	"main/internal/quality"
	"main/internal/schema"
	"main/pkg/exception"
)

type fakeSource struct {
	batch model.RawBatch
	err   error
}

func (s *fakeSource) Fetch(ctx context.Context) (model.RawBatch, error) {
	return s.batch, s.err
}

type fakeSink struct {
	pingErr error
	failID  map[string]error

	upserts []model.CanonicalRecord
	byID    map[string]model.CanonicalRecord
	runs    []model.RunLog
}

func newFakeSink() *fakeSink {
	return &fakeSink{byID: make(map[string]model.CanonicalRecord)}
}

func (s *fakeSink) Ping(ctx context.Context) error { return s.pingErr }

func (s *fakeSink) Upsert(ctx context.Context, rec model.CanonicalRecord) error {
	if err := s.failID[rec.ID]; err != nil {
		return err
	}
	s.upserts = append(s.upserts, rec)
	s.byID[rec.ID] = rec
	return nil
}

func (s *fakeSink) RecordRun(ctx context.Context, entry model.RunLog) error {
	s.runs = append(s.runs, entry)
	return nil
}

func validRow(id string) model.RawRecord {
	return model.RawRecord{
		"id":                               id,
		"symbol":                           "btc",
		"name":                             "Bitcoin",
		"image":                            "https://assets.example/btc.png",
		"current_price":                    42000.5,
		"market_cap":                       8.2e11,
		"market_cap_rank":                  1.0,
		"fully_diluted_valuation":          8.8e11,
		"total_volume":                     2.1e10,
		"high_24h":                         43000.0,
		"low_24h":                          41000.0,
		"price_change_24h":                 -120.5,
		"price_change_percentage_24h":      -0.29,
		"market_cap_change_24h":            -2.4e9,
		"market_cap_change_percentage_24h": -0.28,
		"circulating_supply":               1.96e7,
		"total_supply":                     2.1e7,
		"max_supply":                       2.1e7,
		"ath":                              69000.0,
		"ath_change_percentage":            -39.1,
		"ath_date":                         "2021-11-10T14:24:11.849Z",
		"atl":                              67.81,
		"atl_change_percentage":            61838.5,
		"atl_date":                         "2013-07-06T00:00:00.000Z",
		"roi":                              map[string]any{"times": 2.0, "currency": "usd", "percentage": 200.0},
		"last_updated":                     "2026-02-01T12:00:00.000Z",
	}
}

func newCoordinator(source Source, sink Sink) *Coordinator {
	policy := schema.DefaultPolicy()
	return NewCoordinator(source, sink, quality.NewInspector(policy), normalize.New(policy), obs.NewMetrics())
}

func TestRunCompleted(t *testing.T) {
	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: model.RawBatch{validRow("bitcoin"), validRow("ethereum")}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunCompleted, res.Outcome)
	assert.Equal(t, enum.QualityStatusPassed, res.Status)
	assert.Equal(t, 2, res.RowsFetched)
	assert.Equal(t, 2, res.RowsWritten)
	assert.Zero(t, res.RowsDropped)
	assert.Empty(t, res.FailedIDs)
	require.NotEmpty(t, res.RunID)

	require.Len(t, sink.upserts, 2)
	for _, rec := range sink.upserts {
		assert.Equal(t, enum.QualityStatusPassed, rec.QualityStatus)
	}

	require.Len(t, sink.runs, 1)
	assert.Equal(t, "completed", sink.runs[0].Outcome)
	assert.Equal(t, res.RunID, sink.runs[0].ID)
	assert.Equal(t, 2, sink.runs[0].RowsWritten)
}

func TestRunFetchFailed(t *testing.T) {
	sink := newFakeSink()
	c := newCoordinator(&fakeSource{err: exception.ErrUnexpectedStatus}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunFetchFailed, res.Outcome)
	require.ErrorIs(t, res.Err, exception.ErrUnexpectedStatus)
	assert.Empty(t, sink.upserts, "nothing is written on fetch failure")
	require.Len(t, sink.runs, 1)
	assert.Equal(t, "fetch_failed", sink.runs[0].Outcome)
	assert.NotEmpty(t, sink.runs[0].Error)
}

func TestRunEmptyBatch(t *testing.T) {
	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: model.RawBatch{}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunEmptyBatch, res.Outcome, "empty batch must not masquerade as Completed(0)")
	assert.Equal(t, enum.QualityStatusPassed, res.Status, "vacuous verdict passes")
	assert.Empty(t, sink.upserts)
}

func TestRunStructurallyUnusableBatch(t *testing.T) {
	row := validRow("bitcoin")
	delete(row, "id")
	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: model.RawBatch{row}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunAborted, res.Outcome)
	require.ErrorIs(t, res.Err, exception.ErrNoIdentifierColumn)
	assert.Empty(t, sink.upserts)
}

func TestRunSinkUnavailable(t *testing.T) {
	sink := newFakeSink()
	sink.pingErr = exception.ErrSinkUnavailable
	c := newCoordinator(&fakeSource{batch: model.RawBatch{validRow("bitcoin")}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunAborted, res.Outcome)
	require.ErrorIs(t, res.Err, exception.ErrSinkUnavailable)
	assert.Empty(t, sink.upserts)
}

func TestRunRowFailureIsolated(t *testing.T) {
	sink := newFakeSink()
	sink.failID = map[string]error{"ethereum": assert.AnError}
	batch := model.RawBatch{validRow("bitcoin"), validRow("ethereum"), validRow("solana")}
	c := newCoordinator(&fakeSource{batch: batch}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunCompleted, res.Outcome, "a row failure never aborts the run")
	assert.Equal(t, 2, res.RowsWritten)
	assert.Equal(t, []string{"ethereum"}, res.FailedIDs)
	require.Len(t, sink.upserts, 2)
	assert.Equal(t, "bitcoin", sink.upserts[0].ID)
	assert.Equal(t, "solana", sink.upserts[1].ID)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, 1, sink.runs[0].RowsFailed)
}

func TestRunFailingVerdictStillPersists(t *testing.T) {
	spiked := validRow("dogecoin")
	spiked["price_change_percentage_24h"] = 1500.0 // defect without a repair rule

	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: model.RawBatch{spiked, validRow("bitcoin")}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunCompleted, res.Outcome)
	assert.Equal(t, enum.QualityStatusFailed, res.Status)
	assert.Equal(t, 1, res.Report.Count(quality.CheckOutlierChange, schema.FieldPriceChangePct))
	require.Len(t, sink.upserts, 2, "failing batches are persisted, not lost")
	for _, rec := range sink.upserts {
		assert.Equal(t, enum.QualityStatusFailed, rec.QualityStatus)
	}
}

func TestRunMixedDefectScenario(t *testing.T) {
	negative := validRow("solana")
	negative["market_cap"] = -1.0
	implausible := validRow("dogecoin")
	implausible["current_price"] = 2e6

	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: model.RawBatch{negative, implausible, validRow("bitcoin")}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.RunCompleted, res.Outcome)
	assert.Equal(t, enum.QualityStatusFailed, res.Status)
	assert.Equal(t, 2, res.RowsDropped)
	assert.Equal(t, 1, res.RowsWritten)
	require.Len(t, sink.upserts, 1)
	assert.Equal(t, "bitcoin", sink.upserts[0].ID)
	assert.Equal(t, enum.QualityStatusFailed, sink.upserts[0].QualityStatus)
}

func TestRunVerdictIndependence(t *testing.T) {
	// Corrupting a field that only the inspector cares about must not
	// change which rows survive normalization.
	corrupted := validRow("ethereum")
	corrupted["name"] = nil

	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: model.RawBatch{validRow("bitcoin"), corrupted}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.QualityStatusFailed, res.Status)
	assert.Equal(t, 2, res.RowsWritten, "completeness defects do not drop rows")
}

func TestRunDuplicateIdentifiersLastWriteWins(t *testing.T) {
	first := validRow("bitcoin")
	first["current_price"] = 100.0
	second := validRow("bitcoin")
	second["current_price"] = 200.0

	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: model.RawBatch{first, second}}, sink)

	res := c.Run(t.Context())

	assert.Equal(t, enum.QualityStatusFailed, res.Status, "duplicate identifiers fail the verdict")
	assert.Equal(t, 2, res.RowsWritten, "both rows still reach the sink")
	require.NotNil(t, sink.byID["bitcoin"].CurrentPrice)
	assert.Equal(t, 200.0, *sink.byID["bitcoin"].CurrentPrice)
}

func TestRunIdempotentPersistence(t *testing.T) {
	batch := model.RawBatch{validRow("bitcoin"), validRow("ethereum")}
	sink := newFakeSink()
	c := newCoordinator(&fakeSource{batch: batch}, sink)

	c.Run(t.Context())
	firstState := make(map[string]model.CanonicalRecord, len(sink.byID))
	for k, v := range sink.byID {
		firstState[k] = v
	}

	c.Run(t.Context())
	assert.Equal(t, firstState, sink.byID, "re-running an unchanged snapshot converges to the same state")
}
