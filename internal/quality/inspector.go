// Package quality inspects raw snapshot batches for defects without
// mutating or filtering them. Repair happens in the normalizer, which runs
// regardless of the verdict produced here.
package quality

import (
	"main/internal/model"
	"main/internal/schema"
	"main/pkg/exception"
)

// Inspector runs the seven defect checks against a raw batch.
type Inspector struct {
	policy schema.Policy
}

// NewInspector creates an inspector with the given threshold policy.
func NewInspector(policy schema.Policy) *Inspector {
	return &Inspector{policy: policy}
}

// Inspect analyzes the batch and returns a structured report. The only
// error path is a structurally unusable batch: a non-empty batch in which
// no row carries the identifier field at all. A single bad row is never an
// error, only a defect.
func (ins *Inspector) Inspect(batch model.RawBatch) (Report, error) {
	report := Report{Rows: len(batch)}

	if len(batch) > 0 && !hasIdentifierColumn(batch) {
		return Report{}, exception.ErrNoIdentifierColumn
	}

	report.add(CheckCompleteness, ins.missingValues(batch)...)
	report.add(CheckSign, ins.negativeValues(batch)...)
	report.add(CheckDuplicateID, Finding{Field: schema.FieldID, Rows: ins.duplicateIdentifiers(batch)})
	report.add(CheckOutlierChange, Finding{Field: schema.FieldPriceChangePct, Rows: ins.extremeChanges(batch)})
	report.add(CheckTypeConformance, ins.typeMismatches(batch)...)
	report.add(CheckPriceRange, Finding{Field: schema.FieldCurrentPrice, Rows: ins.implausiblePrices(batch)})
	report.add(CheckDateParse, ins.unparseableDateColumns(batch)...)

	return report, nil
}

func hasIdentifierColumn(batch model.RawBatch) bool {
	for _, row := range batch {
		if _, ok := row[schema.FieldID]; ok {
			return true
		}
	}
	return false
}

// missingValues counts absent or null values per required field.
func (ins *Inspector) missingValues(batch model.RawBatch) []Finding {
	findings := make([]Finding, 0, len(schema.Fields()))
	for _, field := range schema.Fields() {
		if !field.Required {
			continue
		}
		rows := 0
		for _, row := range batch {
			v, present := row.Field(field.Name)
			if !present || v.IsNull() {
				rows++
			}
		}
		findings = append(findings, Finding{Field: field.Name, Rows: rows})
	}
	return findings
}

// negativeValues counts negative numbers in sign-constrained fields.
func (ins *Inspector) negativeValues(batch model.RawBatch) []Finding {
	findings := make([]Finding, 0, 8)
	for _, field := range schema.NonNegativeFields() {
		rows := 0
		for _, row := range batch {
			v, _ := row.Field(field.Name)
			if v.Kind() == model.ValueNumber && v.Number() < 0 {
				rows++
			}
		}
		findings = append(findings, Finding{Field: field.Name, Rows: rows})
	}
	return findings
}

// duplicateIdentifiers counts rows whose identifier already appeared
// earlier in the batch. The sink upserts by identifier, so duplicates
// inside one batch make the final stored value iteration-order dependent.
func (ins *Inspector) duplicateIdentifiers(batch model.RawBatch) int {
	seen := make(map[string]bool, len(batch))
	dups := 0
	for _, row := range batch {
		v, _ := row.Field(schema.FieldID)
		id, ok := v.AsString()
		if !ok {
			continue
		}
		if seen[id] {
			dups++
			continue
		}
		seen[id] = true
	}
	return dups
}

func (ins *Inspector) extremeChanges(batch model.RawBatch) int {
	rows := 0
	for _, row := range batch {
		v, _ := row.Field(schema.FieldPriceChangePct)
		if v.Kind() == model.ValueNumber && ins.policy.ExtremeChange(v.Number()) {
			rows++
		}
	}
	return rows
}

// typeMismatches counts non-null values whose runtime shape does not match
// the declared kind. Nulls are a completeness defect, not a type defect;
// roi accepts null by declaration.
func (ins *Inspector) typeMismatches(batch model.RawBatch) []Finding {
	findings := make([]Finding, 0, len(schema.Fields()))
	for _, field := range schema.Fields() {
		rows := 0
		for _, row := range batch {
			v, present := row.Field(field.Name)
			if !present || v.IsNull() {
				continue
			}
			if !v.Matches(field.Kind) {
				rows++
			}
		}
		findings = append(findings, Finding{Field: field.Name, Rows: rows})
	}
	return findings
}

func (ins *Inspector) implausiblePrices(batch model.RawBatch) int {
	rows := 0
	for _, row := range batch {
		v, _ := row.Field(schema.FieldCurrentPrice)
		if v.Kind() == model.ValueNumber && !ins.policy.PriceInRange(v.Number()) {
			rows++
		}
	}
	return rows
}

// unparseableDateColumns counts values the date parser cannot even attempt:
// present, non-null and not a string. Strings that fail to parse are
// tolerated; the normalizer coerces them to null.
func (ins *Inspector) unparseableDateColumns(batch model.RawBatch) []Finding {
	findings := make([]Finding, 0, 4)
	for _, field := range schema.DateFields() {
		rows := 0
		for _, row := range batch {
			v, present := row.Field(field.Name)
			if !present || v.IsNull() {
				continue
			}
			if v.Kind() != model.ValueString {
				rows++
			}
		}
		findings = append(findings, Finding{Field: field.Name, Rows: rows})
	}
	return findings
}

// add appends only the findings with offending rows, stamping the check.
func (r *Report) add(check Check, findings ...Finding) {
	for _, f := range findings {
		if f.Rows == 0 {
			continue
		}
		f.Check = check
		r.Findings = append(r.Findings, f)
	}
}
