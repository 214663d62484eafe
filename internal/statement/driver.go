package statement

import (
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/rumor-ml/folioscout/internal/domain"
	"github.com/rumor-ml/folioscout/internal/rules"
)

// statementDateRe matches the ISO-like date fragment statement filenames
// must carry; it is the sole source of statement year/month context.
var statementDateRe = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// ParseStatementDate extracts the statement year and month from a filename
// such as "rbc-2023-01-10.pdf". Returns ok=false when the name carries no
// parseable date fragment; such statements cannot establish the
// year-rollover rule and must be skipped.
func ParseStatementDate(name string) (int, time.Month, bool) {
	m := statementDateRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// StatementPages is one statement file's extracted page text, in document
// order, as handed over by the extraction collaborator.
type StatementPages struct {
	File  string
	Pages []string
}

// FileReport summarizes the parse of one statement file
type FileReport struct {
	File       string
	Skipped    bool // filename carried no parseable date
	FXRate     float64
	Trades     int
	Unresolved int
}

// Result aggregates parsing across all statement files of a run
type Result struct {
	Trades      []domain.Trade
	Unresolved  []Unresolved
	Reports     []FileReport
	FilesParsed int
}

// TotalUnresolved returns the count of unresolved candidates across files
func (r *Result) TotalUnresolved() int {
	return len(r.Unresolved)
}

// Driver orchestrates statement parsing: one alias pass over every page of
// every statement, then one activity pass per statement over the same pages
// with the completed, read-only alias table. Statements are processed
// strictly sequentially in the order given.
type Driver struct {
	rules     *rules.Rules
	defaultFX float64
}

// NewDriver creates a driver. A non-positive defaultFX falls back to the
// rule set's configured rate.
func NewDriver(r *rules.Rules, defaultFX float64) *Driver {
	if defaultFX <= 0 {
		defaultFX = r.DefaultFXRate()
	}
	return &Driver{rules: r, defaultFX: defaultFX}
}

// Parse runs the two-phase parse over a set of statements.
//
// Symbols are often disclosed in an "Asset Review" section on a later page
// (or a later statement) than the trade itself, so the alias table is built
// from all pages of all statements before any activity walk begins.
func (d *Driver) Parse(statements []StatementPages) *Result {
	table := NewAliasTable()
	for _, stmt := range statements {
		table.CollectPages(stmt.Pages, d.rules)
	}
	resolver := NewResolver(table, d.rules)

	result := &Result{}
	for _, stmt := range statements {
		year, month, ok := ParseStatementDate(stmt.File)
		if !ok {
			result.Reports = append(result.Reports, FileReport{File: stmt.File, Skipped: true})
			continue
		}

		fx := NewFXNormalizer(stmt.Pages, d.defaultFX)
		machine := NewMachine(year, month, resolver, fx, d.rules)
		for _, page := range stmt.Pages {
			machine.WalkPage(page)
		}
		trades, unresolved := machine.Finish()

		result.Trades = append(result.Trades, trades...)
		result.Unresolved = append(result.Unresolved, unresolved...)
		result.Reports = append(result.Reports, FileReport{
			File:       stmt.File,
			FXRate:     fx.Rate(),
			Trades:     len(trades),
			Unresolved: len(unresolved),
		})
		result.FilesParsed++
	}

	return result
}
