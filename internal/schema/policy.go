package schema

// Policy is the named threshold table shared by the quality inspector and
// the normalizer. It is injected from configuration so thresholds are
// tunable without touching pipeline logic.
type Policy struct {
	// MaxAbsChangePct flags a 24h percentage change whose absolute value
	// exceeds it. Signals a data glitch or a redenomination event.
	MaxAbsChangePct float64

	// PriceMin and PriceMax bound the plausible price band. Values exactly
	// at a bound are inside the band.
	PriceMin float64
	PriceMax float64

	// MaxSupplyFill replaces a missing max_supply value.
	MaxSupplyFill float64

	// RecheckEssentialAfterCoerce re-applies the essential-field drop after
	// type coercion. Off by default: coercion can turn an essential field
	// into null after the drop stage already ran, and that row is kept.
	RecheckEssentialAfterCoerce bool
}

// DefaultPolicy returns the thresholds used against the live snapshot feed.
func DefaultPolicy() Policy {
	return Policy{
		MaxAbsChangePct: 1000,
		PriceMin:        1e-6,
		PriceMax:        1e6,
		MaxSupplyFill:   0,
	}
}

// PriceInRange reports whether v sits inside the plausible price band.
func (p Policy) PriceInRange(v float64) bool {
	return v >= p.PriceMin && v <= p.PriceMax
}

// ExtremeChange reports whether a 24h percentage change is an outlier.
func (p Policy) ExtremeChange(v float64) bool {
	if v < 0 {
		v = -v
	}
	return v > p.MaxAbsChangePct
}
