package schema

// FieldKind is the declared primitive kind of a snapshot field.
type FieldKind uint8

const (
	FieldKindUnknown FieldKind = iota
	FieldKindString
	FieldKindNumber
	FieldKindObjectOrNull
)

// Fallback defines the repair applied to a missing non-essential value.
type Fallback uint8

const (
	FallbackNone Fallback = iota
	FallbackZero
	FallbackNull
)

// Field names referenced outside the table.
const (
	FieldID             = "id"
	FieldCurrentPrice   = "current_price"
	FieldMarketCap      = "market_cap"
	FieldTotalVolume    = "total_volume"
	FieldPriceChangePct = "price_change_percentage_24h"
	FieldMaxSupply      = "max_supply"
	FieldROI            = "roi"
	FieldLastUpdated    = "last_updated"
)

// Field describes one column of the market snapshot schema.
type Field struct {
	Name        string
	Kind        FieldKind
	Required    bool     // null values reduce the quality verdict
	Essential   bool     // rows missing this value are dropped during normalization
	NonNegative bool     // negative values are a quality defect
	Date        bool     // string value parsed into a timestamp during normalization
	Fill        Fallback // repair for missing values
	Mutable     bool     // overwritten when the upsert hits an existing row
}

// fields is the single source of truth consulted by both the quality
// inspector and the normalizer. Order matters: every batch-wide iteration
// walks this slice so output stays deterministic.
var fields = []Field{
	{Name: FieldID, Kind: FieldKindString, Required: true},
	{Name: "symbol", Kind: FieldKindString, Required: true},
	{Name: "name", Kind: FieldKindString, Required: true},
	{Name: "image", Kind: FieldKindString, Required: true},
	{Name: FieldCurrentPrice, Kind: FieldKindNumber, Required: true, Essential: true, NonNegative: true, Mutable: true},
	{Name: FieldMarketCap, Kind: FieldKindNumber, Required: true, Essential: true, NonNegative: true, Mutable: true},
	{Name: "market_cap_rank", Kind: FieldKindNumber, Required: true},
	{Name: "fully_diluted_valuation", Kind: FieldKindNumber, Required: true},
	{Name: FieldTotalVolume, Kind: FieldKindNumber, Required: true, Essential: true, NonNegative: true, Mutable: true},
	{Name: "high_24h", Kind: FieldKindNumber, Required: true},
	{Name: "low_24h", Kind: FieldKindNumber, Required: true},
	{Name: "price_change_24h", Kind: FieldKindNumber, Required: true},
	{Name: FieldPriceChangePct, Kind: FieldKindNumber, Required: true, Mutable: true},
	{Name: "market_cap_change_24h", Kind: FieldKindNumber, Required: true},
	{Name: "market_cap_change_percentage_24h", Kind: FieldKindNumber, Required: true},
	{Name: "circulating_supply", Kind: FieldKindNumber, Required: true},
	{Name: "total_supply", Kind: FieldKindNumber, Required: true},
	{Name: FieldMaxSupply, Kind: FieldKindNumber, Required: true, Fill: FallbackZero},
	{Name: "ath", Kind: FieldKindNumber, Required: true, NonNegative: true},
	{Name: "ath_change_percentage", Kind: FieldKindNumber, Required: true},
	{Name: "ath_date", Kind: FieldKindString, Required: true, Date: true},
	{Name: "atl", Kind: FieldKindNumber, Required: true, NonNegative: true},
	{Name: "atl_change_percentage", Kind: FieldKindNumber, Required: true},
	{Name: "atl_date", Kind: FieldKindString, Required: true, Date: true},
	{Name: FieldROI, Kind: FieldKindObjectOrNull, Required: true, Fill: FallbackNull},
	{Name: FieldLastUpdated, Kind: FieldKindString, Required: true, Date: true},
}

var fieldByName = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the ordered field table. Callers must not mutate it.
func Fields() []Field {
	return fields
}

// Lookup returns the field spec by name.
func Lookup(name string) (Field, bool) {
	f, ok := fieldByName[name]
	return f, ok
}

// EssentialFields returns the fields whose absence drops a row.
func EssentialFields() []Field {
	return filtered(func(f Field) bool { return f.Essential })
}

// NonNegativeFields returns the fields with a sign constraint.
func NonNegativeFields() []Field {
	return filtered(func(f Field) bool { return f.NonNegative })
}

// DateFields returns the fields parsed as timestamps.
func DateFields() []Field {
	return filtered(func(f Field) bool { return f.Date })
}

// MutableColumns returns the column names overwritten on upsert conflict.
func MutableColumns() []string {
	cols := make([]string, 0, 4)
	for _, f := range fields {
		if f.Mutable {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

func filtered(keep func(Field) bool) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
