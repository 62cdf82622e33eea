package model

import (
	"time"

	"main/internal/model/enum"
)

// RawRecord is one untyped row as received from the snapshot source. No
// field is guaranteed to be present and no value is guaranteed to match the
// declared schema.
type RawRecord map[string]any

// Field returns the classified value of a field and whether the field is
// present at all.
func (r RawRecord) Field(name string) (Value, bool) {
	v, ok := r[name]
	if !ok {
		return Null, false
	}
	return FromAny(v), true
}

// Clone returns a shallow copy of the record so repair stages never mutate
// a row another stage still holds.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RawBatch is one snapshot of raw rows processed together as a unit.
type RawBatch []RawRecord

// CanonicalRecord is a row fully conformant to the field schema: every
// declared field is present, possibly null. Numeric fields are nullable
// floats, date fields are nullable UTC timestamps, roi is serialized JSON.
type CanonicalRecord struct {
	ID                           string     `gorm:"column:id;primaryKey" json:"id"`
	Symbol                       *string    `gorm:"column:symbol" json:"symbol"`
	Name                         *string    `gorm:"column:name" json:"name"`
	Image                        *string    `gorm:"column:image" json:"image"`
	CurrentPrice                 *float64   `gorm:"column:current_price" json:"current_price"`
	MarketCap                    *float64   `gorm:"column:market_cap" json:"market_cap"`
	MarketCapRank                *float64   `gorm:"column:market_cap_rank" json:"market_cap_rank"`
	FullyDilutedValuation        *float64   `gorm:"column:fully_diluted_valuation" json:"fully_diluted_valuation"`
	TotalVolume                  *float64   `gorm:"column:total_volume" json:"total_volume"`
	High24h                      *float64   `gorm:"column:high_24h" json:"high_24h"`
	Low24h                       *float64   `gorm:"column:low_24h" json:"low_24h"`
	PriceChange24h               *float64   `gorm:"column:price_change_24h" json:"price_change_24h"`
	PriceChangePercentage24h     *float64   `gorm:"column:price_change_percentage_24h" json:"price_change_percentage_24h"`
	MarketCapChange24h           *float64   `gorm:"column:market_cap_change_24h" json:"market_cap_change_24h"`
	MarketCapChangePercentage24h *float64   `gorm:"column:market_cap_change_percentage_24h" json:"market_cap_change_percentage_24h"`
	CirculatingSupply            *float64   `gorm:"column:circulating_supply" json:"circulating_supply"`
	TotalSupply                  *float64   `gorm:"column:total_supply" json:"total_supply"`
	MaxSupply                    *float64   `gorm:"column:max_supply" json:"max_supply"`
	ATH                          *float64   `gorm:"column:ath" json:"ath"`
	ATHChangePercentage          *float64   `gorm:"column:ath_change_percentage" json:"ath_change_percentage"`
	ATHDate                      *time.Time `gorm:"column:ath_date" json:"ath_date"`
	ATL                          *float64   `gorm:"column:atl" json:"atl"`
	ATLChangePercentage          *float64   `gorm:"column:atl_change_percentage" json:"atl_change_percentage"`
	ATLDate                      *time.Time `gorm:"column:atl_date" json:"atl_date"`
	ROI                          *string    `gorm:"column:roi;type:jsonb" json:"roi"`
	LastUpdated                  *time.Time `gorm:"column:last_updated" json:"last_updated"`

	QualityStatus enum.QualityStatus `gorm:"column:quality_status" json:"quality_status"`
}

// TableName keeps the table the original snapshot consumers read.
func (CanonicalRecord) TableName() string { return "crypto_data" }

// NullCount counts null fields, identifier included when empty.
func (r CanonicalRecord) NullCount() int {
	n := 0
	if r.ID == "" {
		n++
	}
	for _, p := range []*float64{
		r.CurrentPrice, r.MarketCap, r.MarketCapRank, r.FullyDilutedValuation,
		r.TotalVolume, r.High24h, r.Low24h, r.PriceChange24h,
		r.PriceChangePercentage24h, r.MarketCapChange24h, r.MarketCapChangePercentage24h,
		r.CirculatingSupply, r.TotalSupply, r.MaxSupply,
		r.ATH, r.ATHChangePercentage, r.ATL, r.ATLChangePercentage,
	} {
		if p == nil {
			n++
		}
	}
	for _, p := range []*string{r.Symbol, r.Name, r.Image, r.ROI} {
		if p == nil {
			n++
		}
	}
	for _, p := range []*time.Time{r.ATHDate, r.ATLDate, r.LastUpdated} {
		if p == nil {
			n++
		}
	}
	return n
}

// CanonicalBatch is the ordered normalizer output plus the batch-wide
// quality verdict attached by the coordinator.
type CanonicalBatch struct {
	Records []CanonicalRecord
	Status  enum.QualityStatus
}
