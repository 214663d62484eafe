// Package statement implements the RBC statement activity parser: line
// classification, alias-table building, the activity state machine, symbol
// resolution and FX normalization, driven per statement file.
package statement

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^A-Z0-9]+`)
	tokenRe    = regexp.MustCompile(`[A-Z0-9]+`)
)

// unicodeCleaner strips combining marks from extracted page text. PDF
// extraction occasionally emits decomposed accented glyphs that would break
// the ASCII-oriented line patterns.
var unicodeCleaner = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeLine cleans one raw extracted line: unicode normalization plus
// whitespace collapsing. The result is what every pattern in this package
// matches against.
func normalizeLine(line string) string {
	cleaned, _, err := transform.String(unicodeCleaner, line)
	if err != nil {
		cleaned = line
	}
	return normalizeSpace(cleaned)
}

// normalizeSpace collapses all whitespace runs to single spaces and trims
func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitLines splits one extracted page into raw lines
func splitLines(page string) []string {
	return strings.Split(page, "\n")
}

// compactKey reduces text to its upper-case alphanumeric characters.
// "RBC Select Growth (560)" → "RBCSELECTGROWTH560".
func compactKey(text string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToUpper(text), "")
}

// tokenSet returns the set of upper-case alphanumeric tokens in text
func tokenSet(text string) map[string]struct{} {
	tokens := tokenRe.FindAllString(strings.ToUpper(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// parseNumber parses a statement numeric field. Dollar signs and thousands
// separators are stripped; a trailing minus denotes a negative value in the
// statement's accounting notation ("3,170.85-" → -3170.85).
// Returns ok=false for malformed input; callers treat that as a non-match,
// never as an error.
func parseNumber(text string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "$", ""), ",", ""))
	if cleaned == "" {
		return 0, false
	}
	if rest, ok := strings.CutSuffix(cleaned, "-"); ok {
		cleaned = "-" + rest
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
