// Package store persists the trade ledger across runs via SHA256
// fingerprinting, so re-parsing overlapping statement sets never double
// counts a trade.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rumor-ml/folioscout/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	fingerprint TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	side TEXT NOT NULL,
	symbol TEXT NOT NULL,
	amount REAL NOT NULL,
	first_run_id TEXT NOT NULL,
	first_seen_at TIMESTAMP NOT NULL,
	last_seen_at TIMESTAMP NOT NULL,
	seen_count INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	files_parsed INTEGER NOT NULL,
	trades_seen INTEGER NOT NULL,
	trades_new INTEGER NOT NULL,
	unresolved INTEGER NOT NULL
);
`

// Fingerprint creates a SHA256 hash identifying one trade across runs.
// Format: SHA256("{date}|{amount}|{symbol}|{side}"), amount formatted with
// 2 decimal places for consistency.
func Fingerprint(t domain.Trade) string {
	input := fmt.Sprintf("%s|%.2f|%s|%s", t.Date, t.Amount, t.Symbol, t.Side)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// Store is a SQLite-backed run ledger
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and ensures
// the schema exists. The parent directory is created if missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// RunSummary reports what one RecordRun call changed
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	NewTrades  []domain.Trade // trades not seen in any earlier run
	Duplicates int
}

// RecordRun records one pipeline run: every trade is fingerprinted and
// upserted, and a run row is written. Trades already present from an earlier
// run only bump their seen counters. The whole run commits atomically.
func (s *Store) RecordRun(trades []domain.Trade, filesParsed, unresolved int) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, trade := range trades {
		fp := Fingerprint(trade)

		var exists int
		err := tx.QueryRow("SELECT 1 FROM trades WHERE fingerprint = ?", fp).Scan(&exists)
		switch {
		case err == sql.ErrNoRows:
			_, err = tx.Exec(
				`INSERT INTO trades (fingerprint, date, side, symbol, amount, first_run_id, first_seen_at, last_seen_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				fp, trade.Date, string(trade.Side), trade.Symbol, trade.Amount,
				summary.RunID, summary.StartedAt, summary.StartedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to insert trade: %w", err)
			}
			summary.NewTrades = append(summary.NewTrades, trade)
		case err != nil:
			return nil, fmt.Errorf("failed to check fingerprint: %w", err)
		default:
			_, err = tx.Exec(
				"UPDATE trades SET last_seen_at = ?, seen_count = seen_count + 1 WHERE fingerprint = ?",
				summary.StartedAt, fp)
			if err != nil {
				return nil, fmt.Errorf("failed to update trade: %w", err)
			}
			summary.Duplicates++
		}
	}

	_, err = tx.Exec(
		"INSERT INTO runs (id, started_at, files_parsed, trades_seen, trades_new, unresolved) VALUES (?, ?, ?, ?, ?, ?)",
		summary.RunID, summary.StartedAt, filesParsed, len(trades), len(summary.NewTrades), unresolved)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return summary, nil
}

// Trades returns every trade in the ledger ordered by date then symbol
func (s *Store) Trades() ([]domain.Trade, error) {
	rows, err := s.db.Query("SELECT date, side, symbol, amount FROM trades ORDER BY date, symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var side string
		if err := rows.Scan(&t.Date, &side, &t.Symbol, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.Side = domain.Side(side)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}
	return trades, nil
}

// RunCount returns the number of recorded runs
func (s *Store) RunCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}
