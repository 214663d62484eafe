package domain

import (
	"testing"
)

func TestNewTrade(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		side    Side
		symbol  string
		amount  float64
		wantErr bool
	}{
		{
			name:   "valid buy",
			date:   "2023-01-15",
			side:   SideBuy,
			symbol: "XYZF",
			amount: 1000.00,
		},
		{
			name:   "valid sell",
			date:   "2022-12-29",
			side:   SideSell,
			symbol: "RBF1234",
			amount: 3170.85,
		},
		{
			name:    "invalid date format",
			date:    "JAN.15",
			side:    SideBuy,
			symbol:  "XYZF",
			amount:  100,
			wantErr: true,
		},
		{
			name:    "invalid side",
			date:    "2023-01-15",
			side:    Side("BOUGHT"),
			symbol:  "XYZF",
			amount:  100,
			wantErr: true,
		},
		{
			name:    "empty symbol",
			date:    "2023-01-15",
			side:    SideBuy,
			symbol:  "",
			amount:  100,
			wantErr: true,
		},
		{
			name:    "negative amount",
			date:    "2023-01-15",
			side:    SideBuy,
			symbol:  "XYZF",
			amount:  -100,
			wantErr: true,
		},
		{
			name:   "zero amount allowed",
			date:   "2023-01-15",
			side:   SideBuy,
			symbol: "XYZF",
			amount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trade, err := NewTrade(tt.date, tt.side, tt.symbol, tt.amount)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewTrade() expected error, got trade %+v", trade)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTrade() unexpected error: %v", err)
			}
			if trade.Date != tt.date || trade.Side != tt.side || trade.Symbol != tt.symbol || trade.Amount != tt.amount {
				t.Errorf("NewTrade() = %+v, want fields %s/%s/%s/%f", trade, tt.date, tt.side, tt.symbol, tt.amount)
			}
		})
	}
}

func TestValidateSide(t *testing.T) {
	if !ValidateSide(SideBuy) || !ValidateSide(SideSell) {
		t.Error("ValidateSide() rejected valid sides")
	}
	if ValidateSide(Side("HOLD")) || ValidateSide(Side("")) {
		t.Error("ValidateSide() accepted invalid sides")
	}
}

func TestLedgerAdd(t *testing.T) {
	l := NewLedger()

	trade, err := NewTrade("2023-01-15", SideBuy, "XYZF", 1000.00)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Add(*trade); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}

	// Invalid trades are rejected
	if err := l.Add(Trade{Date: "bad", Side: SideBuy, Symbol: "X"}); err == nil {
		t.Error("Add() accepted trade with bad date")
	}
	if err := l.Add(Trade{Date: "2023-01-15", Side: "HOLD", Symbol: "X"}); err == nil {
		t.Error("Add() accepted trade with bad side")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d after rejected adds, want 1", l.Len())
	}
}

func TestLedgerTradesDefensiveCopy(t *testing.T) {
	l := NewLedger()
	if err := l.Add(Trade{Date: "2023-01-15", Side: SideBuy, Symbol: "XYZF", Amount: 10}); err != nil {
		t.Fatal(err)
	}

	got := l.Trades()
	got[0].Symbol = "MUTATED"

	if l.Trades()[0].Symbol != "XYZF" {
		t.Error("Trades() does not return a defensive copy")
	}
}

func TestLedgerSortedByDate(t *testing.T) {
	l := NewLedger()
	trades := []Trade{
		{Date: "2023-03-01", Side: SideBuy, Symbol: "B", Amount: 1},
		{Date: "2022-12-29", Side: SideSell, Symbol: "A", Amount: 2},
		{Date: "2023-03-01", Side: SideBuy, Symbol: "C", Amount: 3},
	}
	if err := l.AddAll(trades); err != nil {
		t.Fatal(err)
	}

	sorted := l.SortedByDate()
	if sorted[0].Symbol != "A" {
		t.Errorf("first sorted trade = %s, want A", sorted[0].Symbol)
	}
	// Stable: equal dates keep insertion order
	if sorted[1].Symbol != "B" || sorted[2].Symbol != "C" {
		t.Errorf("equal-date trades reordered: %s, %s", sorted[1].Symbol, sorted[2].Symbol)
	}

	// Original ledger order untouched
	if l.Trades()[0].Symbol != "B" {
		t.Error("SortedByDate() mutated ledger order")
	}
}
