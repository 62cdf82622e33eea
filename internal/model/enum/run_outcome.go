package enum

// RunOutcome classifies how a pipeline run ended.
type RunOutcome uint8

const (
	_run_outcome_beg RunOutcome = iota
	RunCompleted
	RunEmptyBatch
	RunFetchFailed
	RunAborted
	_run_outcome_end
)

func (o RunOutcome) IsAvailable() bool {
	return o > _run_outcome_beg && o < _run_outcome_end
}

func (o RunOutcome) String() string {
	switch o {
	case RunCompleted:
		return "completed"
	case RunEmptyBatch:
		return "empty_batch"
	case RunFetchFailed:
		return "fetch_failed"
	case RunAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
