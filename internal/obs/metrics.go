package obs

import (
	"sync/atomic"
	"time"

	"main/internal/model/enum"
)

const maxRunOutcome = int(enum.RunAborted)

// Metrics collects lightweight counters and latency stats across runs.
type Metrics struct {
	outcomeCounts [maxRunOutcome + 1]uint64

	rowsFetched uint64
	rowsDropped uint64
	rowsWritten uint64
	rowsFailed  uint64

	fetchLatency     LatencyStats
	inspectLatency   LatencyStats
	normalizeLatency LatencyStats
	persistLatency   LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	OutcomeCounts map[enum.RunOutcome]uint64
	RowsFetched   uint64
	RowsDropped   uint64
	RowsWritten   uint64
	RowsFailed    uint64

	FetchLatency     LatencySnapshot
	InspectLatency   LatencySnapshot
	NormalizeLatency LatencySnapshot
	PersistLatency   LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(outcome enum.RunOutcome, fetched, dropped, written, failed int) {
	if m == nil {
		return
	}
	idx := int(outcome)
	if idx >= 0 && idx < len(m.outcomeCounts) {
		atomic.AddUint64(&m.outcomeCounts[idx], 1)
	}
	atomic.AddUint64(&m.rowsFetched, uint64(fetched))
	atomic.AddUint64(&m.rowsDropped, uint64(dropped))
	atomic.AddUint64(&m.rowsWritten, uint64(written))
	atomic.AddUint64(&m.rowsFailed, uint64(failed))
}

// ObserveFetch measures the snapshot fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchLatency.Observe(d)
}

// ObserveInspect measures the quality inspection duration.
func (m *Metrics) ObserveInspect(d time.Duration) {
	if m == nil {
		return
	}
	m.inspectLatency.Observe(d)
}

// ObserveNormalize measures the normalization duration.
func (m *Metrics) ObserveNormalize(d time.Duration) {
	if m == nil {
		return
	}
	m.normalizeLatency.Observe(d)
}

// ObservePersist measures the whole persistence pass duration.
func (m *Metrics) ObservePersist(d time.Duration) {
	if m == nil {
		return
	}
	m.persistLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	outcomes := make(map[enum.RunOutcome]uint64)
	for i := range m.outcomeCounts {
		if v := atomic.LoadUint64(&m.outcomeCounts[i]); v > 0 {
			outcomes[enum.RunOutcome(i)] = v
		}
	}
	return Snapshot{
		OutcomeCounts:    outcomes,
		RowsFetched:      atomic.LoadUint64(&m.rowsFetched),
		RowsDropped:      atomic.LoadUint64(&m.rowsDropped),
		RowsWritten:      atomic.LoadUint64(&m.rowsWritten),
		RowsFailed:       atomic.LoadUint64(&m.rowsFailed),
		FetchLatency:     m.fetchLatency.Snapshot(),
		InspectLatency:   m.inspectLatency.Snapshot(),
		NormalizeLatency: m.normalizeLatency.Snapshot(),
		PersistLatency:   m.persistLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
