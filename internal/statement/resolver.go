package statement

import (
	"regexp"
	"strings"

	"github.com/rumor-ml/folioscout/internal/rules"
)

// digitRunRe matches maximal digit runs; runs of 3-5 digits are candidate
// fund/account codes (RE2 has no lookaround, so free-standing codes are
// found by filtering maximal runs on length).
var digitRunRe = regexp.MustCompile(`\d+`)

// Resolver determines the ticker symbol for a flushed candidate's
// concatenated description using the statement set's alias table.
type Resolver struct {
	table *AliasTable
	rules *rules.Rules
}

// NewResolver creates a resolver over a read-only alias table
func NewResolver(table *AliasTable, r *rules.Rules) *Resolver {
	return &Resolver{table: table, rules: r}
}

// Resolve returns the best-matching symbol for a description, trying in
// order: numeric-code exact match (parenthesized before free-standing),
// exact compact-description match, containment/token-overlap scoring, then
// issuer-prefix fallback. Resolution is deterministic for a fixed table
// except when two alias entries tie on score, where the winner follows map
// iteration order (the tie policy is deliberately unspecified).
func (r *Resolver) Resolve(desc string) (string, bool) {
	desc = normalizeSpace(desc)
	if desc == "" {
		return "", false
	}

	upper := strings.ToUpper(desc)
	compactDesc := compactKey(upper)

	// Parenthesized codes take precedence over free-standing digit runs.
	for _, m := range parenCodeRe.FindAllStringSubmatch(upper, -1) {
		if sym, ok := r.table.SymbolForCode(m[1]); ok {
			return sym, true
		}
	}
	for _, run := range digitRunRe.FindAllString(upper, -1) {
		if len(run) < 3 || len(run) > 5 {
			continue
		}
		if sym, ok := r.table.SymbolForCode(run); ok {
			return sym, true
		}
	}

	if sym, ok := r.table.SymbolForCompact(compactDesc); ok {
		return sym, true
	}

	if sym, ok := r.scoreAliases(desc, compactDesc); ok {
		return sym, true
	}

	return r.issuerFallback(upper)
}

// scoreAliases scores every alias entry against the description. A
// containment match scores min(len(key), len(query)); otherwise sharing at
// least two tokens scores 100×overlap + min-length. Highest score wins.
func (r *Resolver) scoreAliases(desc, compactDesc string) (string, bool) {
	descTokens := tokenSet(desc)

	bestScore := 0
	bestSymbol := ""
	found := false

	for key, symbol := range r.table.compact {
		if key == "" {
			continue
		}

		score := 0
		if compactDesc != "" && (strings.Contains(key, compactDesc) || strings.Contains(compactDesc, key)) {
			score = min(len(key), len(compactDesc))
		} else {
			overlap := 0
			for tok := range tokenSet(key) {
				if _, ok := descTokens[tok]; ok {
					overlap++
				}
			}
			if overlap >= 2 {
				score = overlap*100 + min(len(key), len(compactDesc))
			}
		}

		if score > 0 && (!found || score > bestScore) {
			bestScore = score
			bestSymbol = symbol
			found = true
		}
	}

	return bestSymbol, found
}

// issuerFallback synthesizes a fund symbol from a parenthesized code when
// the description names a configured issuer ("RBC SELECT ... (560)" →
// "RBF560"). Last resort for funds never disclosed in an Asset Review.
func (r *Resolver) issuerFallback(upper string) (string, bool) {
	m := parenCodeRe.FindStringSubmatch(upper)
	if m == nil {
		return "", false
	}
	for _, ip := range r.rules.IssuerPrefixes() {
		if strings.Contains(upper, ip.Issuer) {
			return ip.Prefix + m[1], true
		}
	}
	return "", false
}
