// Package normalize repairs a raw snapshot batch into canonical records.
// It runs unconditionally: a batch that failed inspection is still
// normalized and persisted, carrying its verdict as metadata, instead of
// being lost. Every stage takes a collection and returns a new one; no
// stage mutates a collection another stage still holds.
package normalize

import (
	"encoding/json"
	"time"

	"main/internal/model"
	"main/internal/schema"
)

// Result is the normalizer output plus the per-stage counters reported to
// the operator.
type Result struct {
	Records []model.CanonicalRecord

	DroppedMissingEssential int
	DroppedOutOfRange       int
	DroppedNullAfterCoerce  int
	CoercionFailures        int
	// NullsAfter is a post-normalization audit of remaining null fields.
	// Observability only; it gates nothing.
	NullsAfter int
}

// Dropped is the total number of rows removed from the batch.
func (r Result) Dropped() int {
	return r.DroppedMissingEssential + r.DroppedOutOfRange + r.DroppedNullAfterCoerce
}

// Normalizer turns raw batches into canonical ones under a fixed policy.
// Given the same input batch it always produces the same output.
type Normalizer struct {
	policy schema.Policy
}

// New creates a normalizer with the given threshold policy.
func New(policy schema.Policy) *Normalizer {
	return &Normalizer{policy: policy}
}

// Normalize runs the ordered repair stages: hard drop on missing essential
// fields, soft fill of defaulted fields, plausibility filter, type and
// date coercion, then a null audit. Row order is preserved except for
// dropped rows.
func (n *Normalizer) Normalize(batch model.RawBatch) Result {
	var res Result

	rows := dropMissingEssential(batch)
	res.DroppedMissingEssential = len(batch) - len(rows)

	rows = n.fillDefaults(rows)

	filtered := n.filterImplausible(rows)
	res.DroppedOutOfRange = len(rows) - len(filtered)

	records := make([]model.CanonicalRecord, 0, len(filtered))
	for _, row := range filtered {
		rec, fails := n.buildRecord(row)
		res.CoercionFailures += fails
		records = append(records, rec)
	}

	// Coercion can null an essential field the drop stage already vetted
	// (e.g. a price that arrived as an unparseable string). Re-applying the
	// drop is an explicit policy choice, off by default.
	if n.policy.RecheckEssentialAfterCoerce {
		kept := records[:0:0]
		for _, rec := range records {
			if rec.CurrentPrice == nil || rec.MarketCap == nil || rec.TotalVolume == nil {
				res.DroppedNullAfterCoerce++
				continue
			}
			kept = append(kept, rec)
		}
		records = kept
	}

	res.Records = records
	for _, rec := range records {
		res.NullsAfter += rec.NullCount()
	}
	return res
}

// dropMissingEssential removes rows missing a value in any essential
// field. Essential fields are load-bearing for every downstream consumer
// and cannot be defaulted.
func dropMissingEssential(batch model.RawBatch) model.RawBatch {
	kept := make(model.RawBatch, 0, len(batch))
	for _, row := range batch {
		if hasEssentialValues(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func hasEssentialValues(row model.RawRecord) bool {
	for _, field := range schema.EssentialFields() {
		v, present := row.Field(field.Name)
		if !present || v.IsNull() {
			return false
		}
	}
	return true
}

// fillDefaults applies per-field fallbacks to copies of the rows:
// max_supply gets the configured fill value, roi becomes an explicit null
// when absent or not an object. All other optional fields are left as-is.
func (n *Normalizer) fillDefaults(batch model.RawBatch) model.RawBatch {
	out := make(model.RawBatch, 0, len(batch))
	for _, row := range batch {
		copied := row.Clone()
		for _, field := range schema.Fields() {
			v, present := copied.Field(field.Name)
			switch field.Fill {
			case schema.FallbackZero:
				if !present || v.IsNull() {
					copied[field.Name] = n.policy.MaxSupplyFill
				}
			case schema.FallbackNull:
				if _, ok := v.AsObject(); !ok {
					copied[field.Name] = nil
				}
			}
		}
		out = append(out, copied)
	}
	return out
}

// filterImplausible removes rows whose price falls outside the plausible
// band or whose market cap is negative. Unlike the inspector's check-only
// pass, this one actually drops rows. Non-numeric values pass through to
// coercion.
func (n *Normalizer) filterImplausible(batch model.RawBatch) model.RawBatch {
	kept := make(model.RawBatch, 0, len(batch))
	for _, row := range batch {
		price, _ := row.Field(schema.FieldCurrentPrice)
		if price.Kind() == model.ValueNumber && !n.policy.PriceInRange(price.Number()) {
			continue
		}
		mcap, _ := row.Field(schema.FieldMarketCap)
		if mcap.Kind() == model.ValueNumber && mcap.Number() < 0 {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// buildRecord coerces every declared field to its canonical form and
// assembles the complete record. Unparseable values become null; only the
// failure count is reported.
func (n *Normalizer) buildRecord(row model.RawRecord) (model.CanonicalRecord, int) {
	fails := 0
	canon := make(map[string]model.Value, len(schema.Fields()))
	for _, field := range schema.Fields() {
		v, _ := row.Field(field.Name)
		cv, ok := model.Coerce(v, field.Kind)
		if !ok {
			fails++
		}
		canon[field.Name] = cv
	}

	rec := model.CanonicalRecord{
		ID:                           identifier(canon[schema.FieldID]),
		Symbol:                       strPtr(canon["symbol"]),
		Name:                         strPtr(canon["name"]),
		Image:                        strPtr(canon["image"]),
		CurrentPrice:                 numPtr(canon[schema.FieldCurrentPrice]),
		MarketCap:                    numPtr(canon[schema.FieldMarketCap]),
		MarketCapRank:                numPtr(canon["market_cap_rank"]),
		FullyDilutedValuation:        numPtr(canon["fully_diluted_valuation"]),
		TotalVolume:                  numPtr(canon[schema.FieldTotalVolume]),
		High24h:                      numPtr(canon["high_24h"]),
		Low24h:                       numPtr(canon["low_24h"]),
		PriceChange24h:               numPtr(canon["price_change_24h"]),
		PriceChangePercentage24h:     numPtr(canon[schema.FieldPriceChangePct]),
		MarketCapChange24h:           numPtr(canon["market_cap_change_24h"]),
		MarketCapChangePercentage24h: numPtr(canon["market_cap_change_percentage_24h"]),
		CirculatingSupply:            numPtr(canon["circulating_supply"]),
		TotalSupply:                  numPtr(canon["total_supply"]),
		MaxSupply:                    numPtr(canon[schema.FieldMaxSupply]),
		ATH:                          numPtr(canon["ath"]),
		ATHChangePercentage:          numPtr(canon["ath_change_percentage"]),
		ATHDate:                      datePtr(canon["ath_date"]),
		ATL:                          numPtr(canon["atl"]),
		ATLChangePercentage:          numPtr(canon["atl_change_percentage"]),
		ATLDate:                      datePtr(canon["atl_date"]),
		ROI:                          roiPtr(canon[schema.FieldROI]),
		LastUpdated:                  datePtr(canon[schema.FieldLastUpdated]),
	}
	return rec, fails
}

func identifier(v model.Value) string {
	if v.Kind() != model.ValueString {
		return ""
	}
	return v.String()
}

func strPtr(v model.Value) *string {
	if v.Kind() != model.ValueString {
		return nil
	}
	s := v.String()
	return &s
}

func numPtr(v model.Value) *float64 {
	if v.Kind() != model.ValueNumber {
		return nil
	}
	f := v.Number()
	return &f
}

func datePtr(v model.Value) *time.Time {
	if v.Kind() != model.ValueString {
		return nil
	}
	ts, ok := ParseTimestamp(v.String())
	if !ok {
		return nil
	}
	return &ts
}

// roiPtr serializes the roi object to JSON text for the jsonb column.
// encoding/json sorts object keys, so the output is stable.
func roiPtr(v model.Value) *string {
	obj, ok := v.AsObject()
	if !ok {
		return nil
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}
