package statement

import (
	"regexp"
	"strings"

	"github.com/rumor-ml/folioscout/internal/rules"
)

// assetRowRe matches one "Asset Review" position row: description, symbol
// token, three quantity/price/book fields, then a dollar-prefixed market
// value.
var assetRowRe = regexp.MustCompile(
	`^(.*?)\s+([A-Z][A-Z0-9.\-]{1,12})\s+` +
		`([0-9][0-9,]*(?:\.\d+)?)\s+` +
		`([0-9][0-9,]*(?:\.\d+)?)\s+` +
		`([0-9][0-9,]*(?:\.\d+)?)\s+\$([0-9][0-9,]*(?:\.\d+)?)$`)

// parenCodeRe matches a parenthesized 3-5 digit fund/account code
var parenCodeRe = regexp.MustCompile(`\((\d{3,5})\)`)

// AliasTable maps security descriptions and numeric fund codes to ticker
// symbols. Built once from all pages of a statement set, read-only during
// the activity pass: trades may reference symbols asset-reviewed on a later
// page than the trade itself.
type AliasTable struct {
	compact map[string]string // punctuation-stripped description -> symbol
	codes   map[string]string // 3-5 digit fund/account code -> symbol
}

// NewAliasTable creates an empty alias table
func NewAliasTable() *AliasTable {
	return &AliasTable{
		compact: make(map[string]string),
		codes:   make(map[string]string),
	}
}

// Len returns the number of description aliases
func (t *AliasTable) Len() int {
	return len(t.compact)
}

// SymbolForCompact looks up a symbol by punctuation-stripped description key
func (t *AliasTable) SymbolForCompact(key string) (string, bool) {
	sym, ok := t.compact[key]
	return sym, ok
}

// SymbolForCode looks up a symbol by numeric fund/account code
func (t *AliasTable) SymbolForCode(code string) (string, bool) {
	sym, ok := t.codes[code]
	return sym, ok
}

// putCompact enters a description alias; the first occurrence wins and later
// duplicates are ignored.
func (t *AliasTable) putCompact(key, symbol string) {
	if key == "" {
		return
	}
	if _, exists := t.compact[key]; !exists {
		t.compact[key] = symbol
	}
}

// putCode enters a numeric-code alias, first occurrence wins
func (t *AliasTable) putCode(code, symbol string) {
	if code == "" {
		return
	}
	if _, exists := t.codes[code]; !exists {
		t.codes[code] = symbol
	}
}

// CollectPages scans one statement's pages for "Asset Review" sections and
// enters every position row found. Mode starts on a line containing
// "Asset Review" and ends on "Account Activity". May be called once per
// statement file to accumulate aliases across the whole statement set.
func (t *AliasTable) CollectPages(pages []string, r *rules.Rules) {
	for _, page := range pages {
		inAssetReview := false
		for _, raw := range splitLines(page) {
			line := normalizeLine(raw)
			if line == "" {
				continue
			}
			if strings.Contains(line, "Asset Review") {
				inAssetReview = true
				continue
			}
			if inAssetReview && strings.Contains(line, "Account Activity") {
				inAssetReview = false
				continue
			}
			if !inAssetReview {
				continue
			}

			m := assetRowRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			desc := normalizeSpace(m[1])
			symbol := r.NormalizeSymbol(m[2])

			t.putCompact(compactKey(desc), symbol)

			if cm := parenCodeRe.FindStringSubmatch(desc); cm != nil {
				t.putCode(cm[1], symbol)
			}
			if code, ok := r.FundCode(symbol); ok {
				t.putCode(code, symbol)
			}
		}
	}
}
