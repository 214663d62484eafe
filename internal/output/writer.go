package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rumor-ml/folioscout/internal/domain"
)

// WriteOptions configures how the trade list is written
type WriteOptions struct {
	MergeMode bool   // If true, load existing file and merge
	FilePath  string // Output path (empty = stdout)
}

// WriteTrades serializes trades to a JSON array with 2-space indentation.
// An empty list writes "[]", never "null".
func WriteTrades(trades []domain.Trade, w io.Writer) error {
	if trades == nil {
		trades = []domain.Trade{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(trades); err != nil {
		return fmt.Errorf("failed to encode trades as JSON: %w", err)
	}

	return nil
}

// WriteTradesToFile writes trades to file or stdout based on options
func WriteTradesToFile(trades []domain.Trade, opts WriteOptions) (err error) {
	// Handle merge mode
	if opts.MergeMode && opts.FilePath != "" {
		existing, err := LoadTrades(opts.FilePath)
		if err != nil {
			// If file doesn't exist, treat as fresh mode
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load existing trades for merge: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Warning: merge mode requested but %s does not exist, creating new file\n", opts.FilePath)
		} else {
			trades = mergeTrades(existing, trades)
		}
	}

	// Write to stdout if no file path specified
	if opts.FilePath == "" {
		return WriteTrades(trades, os.Stdout)
	}

	f, err := os.Create(opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", opts.FilePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", opts.FilePath, closeErr)
		}
	}()

	if err = WriteTrades(trades, f); err != nil {
		return fmt.Errorf("failed to write trades to %s: %w", opts.FilePath, err)
	}

	return nil
}

// LoadTrades reads an existing trade file for merge mode
func LoadTrades(filePath string) ([]domain.Trade, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	f, err := os.Open(filePath)
	if err != nil {
		// Return unwrapped error so caller can check os.IsNotExist
		// to distinguish "file not found" from other loading errors
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", filePath, closeErr)
		}
	}()

	var trades []domain.Trade
	if err := json.NewDecoder(f).Decode(&trades); err != nil {
		return nil, fmt.Errorf("failed to decode trade JSON: %w", err)
	}

	return trades, nil
}

// mergeTrades appends incoming trades not already present in existing.
// Identity is the full {date, side, symbol, amount} tuple, so a genuine
// second purchase of the same size on the same day must arrive in the same
// run to survive a merge. The merged list is sorted by date.
func mergeTrades(existing, incoming []domain.Trade) []domain.Trade {
	seen := make(map[domain.Trade]struct{}, len(existing))
	merged := make([]domain.Trade, 0, len(existing)+len(incoming))

	for _, t := range existing {
		seen[t] = struct{}{}
		merged = append(merged, t)
	}
	for _, t := range incoming {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		merged = append(merged, t)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	return merged
}
