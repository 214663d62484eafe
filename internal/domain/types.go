// Package domain defines the trade records produced by statement parsing.
package domain

import (
	"fmt"
	"sort"
	"time"
)

// Side represents the direction of a trade.
// Use ValidateSide to ensure validity before use.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

var validSides = map[Side]struct{}{
	SideBuy: {}, SideSell: {},
}

// ValidateSide checks if side is valid
func ValidateSide(s Side) bool {
	_, ok := validSides[s]
	return ok
}

// Trade is a finalized trade record.
// Amount is always a non-negative magnitude in CAD; FX conversion happens
// before construction.
type Trade struct {
	Date   string  `json:"date"` // ISO format YYYY-MM-DD
	Side   Side    `json:"side"`
	Symbol string  `json:"ticker"`
	Amount float64 `json:"amount"`
}

// NewTrade creates a validated trade
func NewTrade(date string, side Side, symbol string, amount float64) (*Trade, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}
	if !ValidateSide(side) {
		return nil, fmt.Errorf("invalid side: %s", side)
	}
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative, got %f", amount)
	}

	return &Trade{
		Date:   date,
		Side:   side,
		Symbol: symbol,
		Amount: amount,
	}, nil
}

// Ledger accumulates trades across statement files. Append-only from the
// driver's perspective; previously added trades are never mutated.
type Ledger struct {
	trades []Trade
}

// NewLedger creates an empty ledger with an initialized slice
func NewLedger() *Ledger {
	return &Ledger{trades: []Trade{}}
}

// Add appends a validated trade to the ledger
func (l *Ledger) Add(t Trade) error {
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return fmt.Errorf("invalid trade: %w", err)
	}
	if !ValidateSide(t.Side) {
		return fmt.Errorf("invalid trade: bad side %q", t.Side)
	}
	if t.Symbol == "" {
		return fmt.Errorf("invalid trade: symbol is required")
	}
	l.trades = append(l.trades, t)
	return nil
}

// AddAll appends all trades, stopping at the first invalid one
func (l *Ledger) AddAll(trades []Trade) error {
	for i, t := range trades {
		if err := l.Add(t); err != nil {
			return fmt.Errorf("trade %d: %w", i, err)
		}
	}
	return nil
}

// Len returns the number of trades in the ledger
func (l *Ledger) Len() int {
	return len(l.trades)
}

// Trades returns a defensive copy of the trade slice
func (l *Ledger) Trades() []Trade {
	return append([]Trade(nil), l.trades...)
}

// SortedByDate returns a copy of the trades ordered by date ascending.
// Trades on the same date keep their insertion order.
func (l *Ledger) SortedByDate() []Trade {
	out := l.Trades()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
