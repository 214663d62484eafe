package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind tags the shape of one normalized statement line.
type Kind int

const (
	// KindContinuation is any line that matches no other shape; the state
	// machine appends it to the live candidate's description unless it is
	// configured noise.
	KindContinuation Kind = iota
	// KindActivityStart is a dated entry: month token, day, verb, rest.
	KindActivityStart
	// KindAmountTriplet is three numeric fields; the third is the
	// settlement/net amount column.
	KindAmountTriplet
	// KindInlineAmount is free text followed by a numeric triplet.
	KindInlineAmount
	// KindSectionMarker is a structural line; see Marker for which.
	KindSectionMarker
)

// Marker identifies the structural section lines the state machine reacts to.
type Marker int

const (
	MarkerNone Marker = iota
	// MarkerAccountActivity opens the activity section.
	MarkerAccountActivity
	// MarkerFootnotes closes the activity section.
	MarkerFootnotes
	// MarkerClosingBalance closes the activity section.
	MarkerClosingBalance
	// MarkerIgnorable covers the opening-balance line and the known column
	// headers; skipped without affecting the live candidate.
	MarkerIgnorable
)

// Line is the classification result for one normalized line.
type Line struct {
	Kind   Kind
	Marker Marker

	// Activity-start fields
	Month time.Month
	Day   int
	Verb  string

	// Rest is the text after the verb (activity-start) or the leading free
	// text (inline-amount).
	Rest string

	// Amount is the parsed settlement amount for amount-triplet and
	// inline-amount lines, negative for accounting-notation values.
	Amount float64
}

var (
	activityStartRe = regexp.MustCompile(
		`(?:^|\b)` +
			`(JAN(?:UARY)?|FEB(?:RUARY)?|MAR(?:CH)?|APR(?:IL)?|MAY|` +
			`JUN(?:E)?|JUL(?:Y)?|AUG(?:UST)?|SEP(?:T(?:EMBER)?)?|` +
			`OCT(?:OBER)?|NOV(?:EMBER)?|DEC(?:EMBER)?)` +
			`\.?\s*(\d{1,2})\s+([A-Z]+)\b\s*(.*)$`)

	amountTripletRe = regexp.MustCompile(
		`^([0-9][0-9,]*(?:\.\d+)?-?)\s+([0-9][0-9,]*(?:\.\d+)?-?)\s+([0-9][0-9,]*(?:\.\d+)?-?)$`)

	inlineAmountRe = regexp.MustCompile(
		`^(.*?)\s+([0-9][0-9,]*(?:\.\d+)?-?)\s+([0-9][0-9,]*(?:\.\d+)?-?)\s+([0-9][0-9,]*(?:\.\d+)?-?)$`)
)

// Column headers printed inside the activity section.
var ignorableLines = map[string]struct{}{
	"PRICE":                     {},
	"DATE ACTIVITY DESCRIPTION": {},
	`QUANTITY \RATE DEBIT CREDIT`: {},
}

var monthNumbers = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// monthToken converts a month token from an activity line ("JAN", "JAN.",
// "SEPT", "JANUARY") to its calendar month. Returns 0 for unknown tokens.
func monthToken(token string) time.Month {
	token = strings.TrimSuffix(strings.ToUpper(token), ".")
	if strings.HasPrefix(token, "SEPT") {
		token = "SEP"
	} else if len(token) > 3 {
		token = token[:3]
	}
	return monthNumbers[token]
}

// Classify tags one normalized line with exactly one shape. Lines with
// malformed numeric fields fall through to KindContinuation rather than
// producing an error.
func Classify(line string) Line {
	// Structural markers take precedence over every data shape.
	if strings.Contains(line, "FOOTNOTES") {
		return Line{Kind: KindSectionMarker, Marker: MarkerFootnotes}
	}
	if strings.Contains(line, "Account Activity") {
		return Line{Kind: KindSectionMarker, Marker: MarkerAccountActivity}
	}
	if strings.HasPrefix(line, "Closing Balance") {
		return Line{Kind: KindSectionMarker, Marker: MarkerClosingBalance}
	}
	if strings.HasPrefix(line, "Opening Balance") {
		return Line{Kind: KindSectionMarker, Marker: MarkerIgnorable}
	}
	if _, ok := ignorableLines[line]; ok {
		return Line{Kind: KindSectionMarker, Marker: MarkerIgnorable}
	}

	if m := activityStartRe.FindStringSubmatch(line); m != nil {
		month := monthToken(m[1])
		day, err := strconv.Atoi(m[2])
		if month != 0 && err == nil {
			return Line{
				Kind:  KindActivityStart,
				Month: month,
				Day:   day,
				Verb:  strings.ToUpper(m[3]),
				Rest:  normalizeSpace(m[4]),
			}
		}
	}

	if m := amountTripletRe.FindStringSubmatch(line); m != nil {
		if amount, ok := parseNumber(m[3]); ok {
			return Line{Kind: KindAmountTriplet, Amount: amount}
		}
	}

	if rest, amount, ok := matchInlineAmount(line); ok {
		return Line{Kind: KindInlineAmount, Rest: rest, Amount: amount}
	}

	return Line{Kind: KindContinuation}
}

// matchInlineAmount matches free text followed by a numeric triplet and
// returns the leading text plus the third field (the settlement amount).
// Also applied to the remainder of an activity-start line, where the amount
// may be printed inline.
func matchInlineAmount(text string) (string, float64, bool) {
	m := inlineAmountRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0, false
	}
	amount, ok := parseNumber(m[4])
	if !ok {
		return "", 0, false
	}
	return normalizeSpace(m[1]), amount, true
}
