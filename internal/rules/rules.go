// Package rules provides the YAML-configured symbol rules used during
// statement parsing: ticker renames, issuer fund prefixes, noise-line
// patterns and the fallback USD→CAD rate.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// IssuerPrefix ties an issuer name appearing in a security description to
// the fund-symbol prefix used for that issuer's numeric fund codes.
type IssuerPrefix struct {
	Issuer string `yaml:"issuer"`
	Prefix string `yaml:"prefix"`
}

// ruleSet is the top-level YAML structure
type ruleSet struct {
	Renames        map[string]string `yaml:"renames"`
	IssuerPrefixes []IssuerPrefix    `yaml:"issuer_prefixes"`
	NoisePatterns  []string          `yaml:"noise_patterns"`
	DefaultFXRate  float64           `yaml:"default_fx_rate"`
}

// Rules holds the validated, compiled rule set. Read-only after load; safe
// for concurrent use.
type Rules struct {
	renames       map[string]string
	issuers       []IssuerPrefix
	noise         []*regexp.Regexp
	defaultFXRate float64
}

// New creates a rule set from YAML data
func New(data []byte) (*Rules, error) {
	var rs ruleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	for from, to := range rs.Renames {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("rename %q -> %q: symbols cannot be empty", from, to)
		}
		if from != strings.ToUpper(from) || to != strings.ToUpper(to) {
			return nil, fmt.Errorf("rename %q -> %q: symbols must be upper-case", from, to)
		}
	}

	for i, ip := range rs.IssuerPrefixes {
		if strings.TrimSpace(ip.Issuer) == "" {
			return nil, fmt.Errorf("issuer prefix %d: issuer cannot be empty", i)
		}
		if strings.TrimSpace(ip.Prefix) == "" {
			return nil, fmt.Errorf("issuer prefix %d (%s): prefix cannot be empty", i, ip.Issuer)
		}
		if ip.Issuer != strings.ToUpper(ip.Issuer) || ip.Prefix != strings.ToUpper(ip.Prefix) {
			return nil, fmt.Errorf("issuer prefix %d (%s): issuer and prefix must be upper-case", i, ip.Issuer)
		}
	}

	// Noise patterns must match the whole line; anchor them here so the YAML
	// stays readable.
	noise := make([]*regexp.Regexp, 0, len(rs.NoisePatterns))
	for i, p := range rs.NoisePatterns {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("noise pattern %d: pattern cannot be empty", i)
		}
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("noise pattern %d (%s): %w", i, p, err)
		}
		noise = append(noise, re)
	}

	if rs.DefaultFXRate <= 0 {
		return nil, fmt.Errorf("default_fx_rate must be positive, got %f", rs.DefaultFXRate)
	}

	renames := make(map[string]string, len(rs.Renames))
	for from, to := range rs.Renames {
		renames[from] = to
	}

	return &Rules{
		renames:       renames,
		issuers:       append([]IssuerPrefix(nil), rs.IssuerPrefixes...),
		noise:         noise,
		defaultFXRate: rs.DefaultFXRate,
	}, nil
}

// LoadEmbedded loads the embedded rules.yaml file
func LoadEmbedded() (*Rules, error) {
	r, err := New(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules (possible binary corruption): %w", err)
	}
	return r, nil
}

// LoadFromFile loads rules from a filesystem path
func LoadFromFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	r, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return r, nil
}

// NormalizeSymbol upper-cases a ticker symbol and applies the configured
// renames. Empty input returns empty output.
func (r *Rules) NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if renamed, ok := r.renames[s]; ok {
		return renamed
	}
	return s
}

// IsNoise reports whether a space-collapsed line is statement boilerplate
// that must be dropped rather than appended to a trade description.
// Matching is case-insensitive via upper-casing the line.
func (r *Rules) IsNoise(line string) bool {
	upper := strings.ToUpper(line)
	for _, re := range r.noise {
		if re.MatchString(upper) {
			return true
		}
	}
	return false
}

// FundCode returns the digit suffix of a fund-style symbol such as
// "RBF1234" when the symbol starts with a configured issuer prefix and the
// remainder is purely numeric. Returns ("", false) otherwise.
func (r *Rules) FundCode(symbol string) (string, bool) {
	for _, ip := range r.issuers {
		rest, ok := strings.CutPrefix(symbol, ip.Prefix)
		if !ok || rest == "" {
			continue
		}
		if isDigits(rest) {
			return rest, true
		}
	}
	return "", false
}

// IssuerPrefixes returns a copy of the configured issuer prefixes in their
// YAML order, which is also their fallback precedence.
func (r *Rules) IssuerPrefixes() []IssuerPrefix {
	return append([]IssuerPrefix(nil), r.issuers...)
}

// DefaultFXRate returns the fallback USD→CAD rate used when a statement
// discloses no exchange-rate line.
func (r *Rules) DefaultFXRate() float64 {
	return r.defaultFXRate
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
