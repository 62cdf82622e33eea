package quality

import "main/internal/model/enum"

// Check identifies one of the independent defect checks.
type Check string

const (
	CheckCompleteness    Check = "completeness"
	CheckSign            Check = "sign_constraint"
	CheckDuplicateID     Check = "duplicate_identifier"
	CheckOutlierChange   Check = "outlier_change"
	CheckTypeConformance Check = "type_conformance"
	CheckPriceRange      Check = "price_range"
	CheckDateParse       Check = "date_parse"
)

// Finding reports one defect category: the check, the affected field and
// the number of offending rows.
type Finding struct {
	Check Check
	Field string
	Rows  int
}

// Report is the immutable result of inspecting one raw batch. It never
// causes rows to be dropped; the verdict is metadata.
type Report struct {
	Rows     int
	Findings []Finding
}

// Passed reports the batch-wide verdict: true iff every check passed.
// An empty batch passes vacuously.
func (r Report) Passed() bool {
	return len(r.Findings) == 0
}

// Status maps the verdict to the persisted batch tag.
func (r Report) Status() enum.QualityStatus {
	if r.Passed() {
		return enum.QualityStatusPassed
	}
	return enum.QualityStatusFailed
}

// Count returns the offending row count for a check and field.
func (r Report) Count(check Check, field string) int {
	for _, f := range r.Findings {
		if f.Check == check && f.Field == field {
			return f.Rows
		}
	}
	return 0
}
