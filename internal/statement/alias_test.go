package statement

import (
	"testing"

	"github.com/rumor-ml/folioscout/internal/rules"
)

func loadRules(t *testing.T) *rules.Rules {
	t.Helper()
	r, err := rules.LoadEmbedded()
	if err != nil {
		t.Fatalf("failed to load embedded rules: %v", err)
	}
	return r
}

func TestCollectPages(t *testing.T) {
	page := `RBC Dominion Securities
Asset Review
YOUR PORTFOLIO
RBC SELECT GROWTH PORTFOLIO (560) RBF560 100.000 10.00 1,000.00 $1,000.00
CANADIAN EQUITY FUND XYZF 50.000 20.00 1,000.00 $1,050.00
ALPHABET INC CLASS A GOOGL 10.000 100.00 1,000.00 $1,200.00
Account Activity
GLOBAL EQUITY FUND GEF 10.000 5.00 50.00 $50.00
`

	table := NewAliasTable()
	table.CollectPages([]string{page}, loadRules(t))

	tests := []struct {
		name   string
		lookup func() (string, bool)
		want   string
	}{
		{
			name:   "description with code",
			lookup: func() (string, bool) { return table.SymbolForCompact("RBCSELECTGROWTHPORTFOLIO560") },
			want:   "RBF560",
		},
		{
			name:   "plain description",
			lookup: func() (string, bool) { return table.SymbolForCompact("CANADIANEQUITYFUND") },
			want:   "XYZF",
		},
		{
			name:   "parenthesized code",
			lookup: func() (string, bool) { return table.SymbolForCode("560") },
			want:   "RBF560",
		},
		{
			name:   "ticker rename applied",
			lookup: func() (string, bool) { return table.SymbolForCompact("ALPHABETINCCLASSA") },
			want:   "GOOG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.lookup()
			if !ok {
				t.Fatalf("lookup failed, want %q", tt.want)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	// Rows after "Account Activity" are outside the asset review section
	if _, ok := table.SymbolForCompact("GLOBALEQUITYFUND"); ok {
		t.Error("row after Account Activity marker was entered into the table")
	}
}

func TestCollectPagesFundSymbolSeedsCode(t *testing.T) {
	// A fund-style symbol with a known issuer prefix seeds the code map from
	// its digit suffix even without a parenthesized code in the description.
	page := `Asset Review
FIDELITY NORTHSTAR FUND FID269 100.000 10.00 1,000.00 $1,000.00
`
	table := NewAliasTable()
	table.CollectPages([]string{page}, loadRules(t))

	got, ok := table.SymbolForCode("269")
	if !ok || got != "FID269" {
		t.Errorf("SymbolForCode(269) = (%q, %v), want (FID269, true)", got, ok)
	}
}

func TestCollectPagesFirstWins(t *testing.T) {
	pages := []string{
		`Asset Review
CANADIAN EQUITY FUND (123) AAA 1.000 1.00 1.00 $1.00
`,
		`Asset Review
CANADIAN EQUITY FUND (123) BBB 1.000 1.00 1.00 $1.00
`,
	}

	table := NewAliasTable()
	table.CollectPages(pages, loadRules(t))

	if got, _ := table.SymbolForCompact("CANADIANEQUITYFUND123"); got != "AAA" {
		t.Errorf("duplicate description key overwrote first entry: got %q, want AAA", got)
	}
	if got, _ := table.SymbolForCode("123"); got != "AAA" {
		t.Errorf("duplicate code overwrote first entry: got %q, want AAA", got)
	}
}

func TestCollectPagesReentersAssetReview(t *testing.T) {
	// The asset review section may continue on a later page with its own
	// heading; both parts contribute entries.
	pages := []string{
		`Asset Review
FIRST FUND ONE 1.000 1.00 1.00 $1.00
Account Activity
JAN.5 BOUGHT SOMETHING
`,
		`Asset Review
SECOND FUND TWO 1.000 1.00 1.00 $1.00
`,
	}

	table := NewAliasTable()
	table.CollectPages(pages, loadRules(t))

	if _, ok := table.SymbolForCompact("FIRSTFUND"); !ok {
		t.Error("missing entry from first page")
	}
	if _, ok := table.SymbolForCompact("SECONDFUND"); !ok {
		t.Error("missing entry from second page")
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestCollectPagesIgnoresNonRows(t *testing.T) {
	page := `Asset Review
HOLDINGS AS AT MARCH 31
Total $12,345.67
CASH BALANCE 1,234.56
`
	table := NewAliasTable()
	table.CollectPages([]string{page}, loadRules(t))

	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (no valid asset rows)", table.Len())
	}
}
