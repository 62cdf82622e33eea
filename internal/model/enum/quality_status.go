package enum

// QualityStatus is the batch-wide quality verdict attached to every
// persisted record of a run.
type QualityStatus string

const (
	QualityStatusPassed QualityStatus = "passed_quality_check"
	QualityStatusFailed QualityStatus = "failed_quality_check"
)

func (s QualityStatus) IsAvailable() bool {
	return s == QualityStatusPassed || s == QualityStatusFailed
}
