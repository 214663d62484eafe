package statement

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rumor-ml/folioscout/internal/domain"
	"github.com/rumor-ml/folioscout/internal/rules"
)

// Unresolved is a diagnostic record for a candidate that captured an amount
// but whose description matched no alias-table entry. Excluded from trade
// output, counted for operator visibility.
type Unresolved struct {
	Date        string
	Side        domain.Side
	Description string
	Amount      float64
}

// pendingTrade is the single live trade candidate. Created on a BOUGHT/SOLD
// activity-start line, destroyed on flush.
type pendingTrade struct {
	date      string // ISO YYYY-MM-DD
	side      domain.Side
	currency  Currency
	descParts []string
	amount    *float64 // set at most once; first amount line wins
}

// Machine walks a statement's pages in document order and emits finalized
// trades. At most one pendingTrade is live at any point; every flush clears
// it before a new one may be created. Not safe for concurrent use; the walk
// is strictly sequential by design.
type Machine struct {
	statementYear  int
	statementMonth time.Month

	resolver *Resolver
	fx       *FXNormalizer
	rules    *rules.Rules

	inActivity bool
	current    *pendingTrade

	trades     []domain.Trade
	unresolved []Unresolved
}

// NewMachine creates a state machine for one statement. statementYear and
// statementMonth come from the statement filename and anchor the calendar
// year of dated activity lines.
func NewMachine(statementYear int, statementMonth time.Month, resolver *Resolver, fx *FXNormalizer, r *rules.Rules) *Machine {
	return &Machine{
		statementYear:  statementYear,
		statementMonth: statementMonth,
		resolver:       resolver,
		fx:             fx,
		rules:          r,
	}
}

// WalkPage processes one page's lines in order. Pages must be walked in
// document order; a trade's amount line must follow its activity-start line
// before the next activity-start.
func (m *Machine) WalkPage(page string) {
	currency := CurrencyCAD
	if strings.Contains(page, usdPageMarker) {
		currency = CurrencyUSD
	}

	for _, raw := range splitLines(page) {
		line := normalizeLine(raw)
		if line == "" {
			continue
		}
		m.step(line, currency)
	}
}

// Finish flushes the final live candidate and returns the walk's results
func (m *Machine) Finish() ([]domain.Trade, []Unresolved) {
	m.flush()
	return m.trades, m.unresolved
}

// step advances the machine by one normalized line
func (m *Machine) step(line string, currency Currency) {
	cl := Classify(line)

	if cl.Kind == KindSectionMarker {
		switch cl.Marker {
		case MarkerFootnotes, MarkerClosingBalance:
			// Closing Balance only ends the section once it has begun;
			// FOOTNOTES ends it unconditionally.
			if cl.Marker == MarkerFootnotes || m.inActivity {
				m.flush()
				m.inActivity = false
			}
		case MarkerAccountActivity:
			m.flush()
			m.inActivity = true
		case MarkerIgnorable:
			// Column headers and the opening-balance line never touch the
			// live candidate.
		}
		return
	}

	if !m.inActivity {
		return
	}

	if cl.Kind == KindActivityStart {
		m.startActivity(cl, currency)
		return
	}

	if m.current == nil {
		return
	}

	switch cl.Kind {
	case KindAmountTriplet:
		if m.current.amount == nil {
			amount := cl.Amount
			m.current.amount = &amount
			return
		}
	case KindInlineAmount:
		if m.current.amount == nil {
			if cl.Rest != "" {
				m.current.descParts = append(m.current.descParts, cl.Rest)
			}
			amount := cl.Amount
			m.current.amount = &amount
			return
		}
	}

	// Anything else is a description fragment unless it is configured noise.
	if m.rules.IsNoise(line) {
		return
	}
	m.current.descParts = append(m.current.descParts, line)
}

// startActivity handles a dated entry line. BOUGHT/SOLD opens a new
// candidate; any other dated entry closes the previous trade without
// opening one.
func (m *Machine) startActivity(cl Line, currency Currency) {
	if cl.Verb != "BOUGHT" && cl.Verb != "SOLD" {
		// A new dated entry of any kind ends the previous trade. Flush only
		// a fully amount-captured candidate; an incomplete one is dropped.
		if m.current != nil && m.current.amount != nil {
			m.flush()
		}
		m.current = nil
		return
	}

	m.flush()

	year := m.statementYear
	// Year-end statements spill into January: December activity inside a
	// January statement belongs to the previous calendar year.
	if m.statementMonth == time.January && cl.Month == time.December {
		year--
	}

	side := domain.SideBuy
	if cl.Verb == "SOLD" {
		side = domain.SideSell
	}

	pending := &pendingTrade{
		date:     fmt.Sprintf("%04d-%02d-%02d", year, cl.Month, cl.Day),
		side:     side,
		currency: currency,
	}

	// The amount may be printed inline on the activity line itself.
	if desc, amount, ok := matchInlineAmount(cl.Rest); ok {
		if desc != "" {
			pending.descParts = append(pending.descParts, desc)
		}
		pending.amount = &amount
	} else if cl.Rest != "" {
		pending.descParts = append(pending.descParts, cl.Rest)
	}

	m.current = pending
}

// flush finalizes the live candidate: with no amount it is silently
// discarded; with an amount but no resolvable symbol it becomes an
// unresolved diagnostic; otherwise it is emitted as a trade with its amount
// converted to a non-negative CAD magnitude. The candidate is always cleared.
func (m *Machine) flush() {
	if m.current == nil {
		return
	}
	pending := m.current
	m.current = nil

	if pending.amount == nil {
		return
	}

	desc := normalizeSpace(strings.Join(pending.descParts, " "))
	symbol, ok := m.resolver.Resolve(desc)
	if !ok {
		m.unresolved = append(m.unresolved, Unresolved{
			Date:        pending.date,
			Side:        pending.side,
			Description: desc,
			Amount:      *pending.amount,
		})
		return
	}

	amount := m.fx.ToCAD(*pending.amount, pending.currency)
	m.trades = append(m.trades, domain.Trade{
		Date:   pending.date,
		Side:   pending.side,
		Symbol: symbol,
		Amount: math.Abs(amount),
	})
}
