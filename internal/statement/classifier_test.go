package statement

import (
	"testing"
	"time"
)

func TestClassifySectionMarkers(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		marker Marker
	}{
		{"footnotes", "FOOTNOTES", MarkerFootnotes},
		{"footnotes embedded", "SEE FOOTNOTES BELOW", MarkerFootnotes},
		{"account activity", "Account Activity", MarkerAccountActivity},
		{"account activity embedded", "Your Account Activity This Period", MarkerAccountActivity},
		{"closing balance", "Closing Balance 12,345.67", MarkerClosingBalance},
		{"opening balance", "Opening Balance 1,234.56", MarkerIgnorable},
		{"price header", "PRICE", MarkerIgnorable},
		{"date header", "DATE ACTIVITY DESCRIPTION", MarkerIgnorable},
		{"quantity header", `QUANTITY \RATE DEBIT CREDIT`, MarkerIgnorable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if got.Kind != KindSectionMarker {
				t.Fatalf("Classify(%q).Kind = %v, want KindSectionMarker", tt.line, got.Kind)
			}
			if got.Marker != tt.marker {
				t.Errorf("Classify(%q).Marker = %v, want %v", tt.line, got.Marker, tt.marker)
			}
		})
	}
}

func TestClassifyActivityStart(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		month time.Month
		day   int
		verb  string
		rest  string
	}{
		{
			name:  "abbreviated month with dot",
			line:  "JAN.15 BOUGHT XYZ FUND (12345)",
			month: time.January,
			day:   15,
			verb:  "BOUGHT",
			rest:  "XYZ FUND (12345)",
		},
		{
			name:  "full month name",
			line:  "DECEMBER 29 SOLD RBC SELECT GROWTH",
			month: time.December,
			day:   29,
			verb:  "SOLD",
			rest:  "RBC SELECT GROWTH",
		},
		{
			name:  "sept four letter abbreviation",
			line:  "SEPT.5 BOUGHT FIDELITY NORTHSTAR",
			month: time.September,
			day:   5,
			verb:  "BOUGHT",
			rest:  "FIDELITY NORTHSTAR",
		},
		{
			name:  "non trade verb still classifies",
			line:  "FEB.1 DIST ON 100 SHS",
			month: time.February,
			day:   1,
			verb:  "DIST",
			rest:  "ON 100 SHS",
		},
		{
			name:  "date not at line start",
			line:  "AS AT MAR.31 SOLD SOMETHING",
			month: time.March,
			day:   31,
			verb:  "SOLD",
			rest:  "SOMETHING",
		},
		{
			name:  "empty rest",
			line:  "JUL.2 BOUGHT",
			month: time.July,
			day:   2,
			verb:  "BOUGHT",
			rest:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if got.Kind != KindActivityStart {
				t.Fatalf("Classify(%q).Kind = %v, want KindActivityStart", tt.line, got.Kind)
			}
			if got.Month != tt.month || got.Day != tt.day {
				t.Errorf("date = %v %d, want %v %d", got.Month, got.Day, tt.month, tt.day)
			}
			if got.Verb != tt.verb {
				t.Errorf("verb = %q, want %q", got.Verb, tt.verb)
			}
			if got.Rest != tt.rest {
				t.Errorf("rest = %q, want %q", got.Rest, tt.rest)
			}
		})
	}
}

func TestClassifyAmountTriplet(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		amount float64
	}{
		{"positive settlement", "100.000 10.00 1,000.00", 1000.00},
		{"accounting negative", "100.000 10.00 1,000.00-", -1000.00},
		{"integers", "3 5 7", 7},
		{"thousands separators", "1,234.567 12.34 15,170.85-", -15170.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if got.Kind != KindAmountTriplet {
				t.Fatalf("Classify(%q).Kind = %v, want KindAmountTriplet", tt.line, got.Kind)
			}
			if got.Amount != tt.amount {
				t.Errorf("amount = %f, want %f", got.Amount, tt.amount)
			}
		})
	}
}

func TestClassifyInlineAmount(t *testing.T) {
	got := Classify("XYZ FUND (12345) 100.000 10.00 1,000.00-")
	if got.Kind != KindInlineAmount {
		t.Fatalf("Kind = %v, want KindInlineAmount", got.Kind)
	}
	if got.Rest != "XYZ FUND (12345)" {
		t.Errorf("rest = %q, want %q", got.Rest, "XYZ FUND (12345)")
	}
	if got.Amount != -1000.00 {
		t.Errorf("amount = %f, want -1000.00", got.Amount)
	}
}

func TestClassifyContinuation(t *testing.T) {
	lines := []string{
		"RBC SELECT GROWTH PORTFOLIO",
		"CANADIAN EQUITY FUND (12345)",
		"1,000.00",            // single number, not a triplet
		"100.000 10.00",       // two fields
		"UNSOLICITED",         // noise is still a continuation shape; rules decide
		"",
	}
	for _, line := range lines {
		if got := Classify(line); got.Kind != KindContinuation {
			t.Errorf("Classify(%q).Kind = %v, want KindContinuation", line, got.Kind)
		}
	}
}

func TestMonthToken(t *testing.T) {
	tests := []struct {
		token string
		want  time.Month
	}{
		{"JAN", time.January},
		{"JAN.", time.January},
		{"JANUARY", time.January},
		{"SEPT", time.September},
		{"SEPTEMBER", time.September},
		{"SEP", time.September},
		{"DEC", time.December},
		{"XXX", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := monthToken(tt.token); got != tt.want {
			t.Errorf("monthToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.56", 1234.56, true},
		{"1,234.56-", -1234.56, true},
		{"3,170.85-", -3170.85, true},
		{"$1,000.00", 1000.00, true},
		{"7", 7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"--5", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseNumber(%q) = (%f, %v), want (%f, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  JAN.15   BOUGHT\tXYZ  ", "JAN.15 BOUGHT XYZ"},
		{"CAFÉ HOLDINGS", "CAFE HOLDINGS"}, // combining acute stripped
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeLine(tt.in); got != tt.want {
			t.Errorf("normalizeLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompactKeyAndTokenSet(t *testing.T) {
	if got := compactKey("RBC Select Growth (560)"); got != "RBCSELECTGROWTH560" {
		t.Errorf("compactKey() = %q", got)
	}

	set := tokenSet("RBC Select Growth (560)")
	for _, tok := range []string{"RBC", "SELECT", "GROWTH", "560"} {
		if _, ok := set[tok]; !ok {
			t.Errorf("tokenSet() missing %q", tok)
		}
	}
	if len(set) != 4 {
		t.Errorf("tokenSet() has %d tokens, want 4", len(set))
	}
}
