package statement

import "regexp"

// Currency marks the denomination of a page's activity
type Currency string

const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
)

// usdPageMarker appears on pages of the U.S.-dollar side of a statement
const usdPageMarker = "Statement (U.S.$)"

// fxRateRe matches the statement's disclosed USD→CAD conversion line
var fxRateRe = regexp.MustCompile(`Exchange rate 1USD = ([0-9.]+) CAD`)

// FXNormalizer converts USD-denominated trade amounts into CAD using the
// statement's disclosed rate, or a configured fallback when the statement
// discloses none.
type FXNormalizer struct {
	rate float64
}

// NewFXNormalizer scans all pages of a statement for an explicit
// "Exchange rate 1USD = <rate> CAD" line and uses the first parseable one;
// otherwise the fallback rate applies.
func NewFXNormalizer(pages []string, fallback float64) *FXNormalizer {
	for _, page := range pages {
		m := fxRateRe.FindStringSubmatch(page)
		if m == nil {
			continue
		}
		if rate, ok := parseNumber(m[1]); ok && rate > 0 {
			return &FXNormalizer{rate: rate}
		}
	}
	return &FXNormalizer{rate: fallback}
}

// Rate returns the USD→CAD rate in effect for this statement
func (f *FXNormalizer) Rate() float64 {
	return f.rate
}

// ToCAD converts an amount in the given currency to CAD. CAD amounts pass
// through unscaled.
func (f *FXNormalizer) ToCAD(amount float64, currency Currency) float64 {
	if currency == CurrencyUSD {
		return amount * f.rate
	}
	return amount
}
