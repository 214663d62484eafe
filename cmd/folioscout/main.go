package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/rumor-ml/folioscout/internal/domain"
	"github.com/rumor-ml/folioscout/internal/extract"
	"github.com/rumor-ml/folioscout/internal/output"
	"github.com/rumor-ml/folioscout/internal/rules"
	"github.com/rumor-ml/folioscout/internal/scanner"
	"github.com/rumor-ml/folioscout/internal/statement"
	"github.com/rumor-ml/folioscout/internal/store"
	"github.com/rumor-ml/folioscout/internal/ui"
)

const (
	version = "0.1.0"

	defaultExtractCmd = "extract-pdf-text"
)

var (
	// Global flags
	versionFlag = flag.Bool("version", false, "Show version")

	// Core CLI flags
	inputDir   = flag.String("input", "", "Input directory containing statement PDFs")
	pagesFile  = flag.String("pages", "", "Pre-extracted page text (JSONL file, skips the extraction command)")
	extractCmd = flag.String("extract-cmd", defaultExtractCmd, "External text-extraction command")
	dryRun     = flag.Bool("dry-run", false, "Show what would be parsed without extracting or writing")
	verbose    = flag.Bool("verbose", false, "Show detailed parsing logs")

	// Output and merge flags
	outputFile = flag.String("output", "", "Output JSON file (default: stdout)")
	mergeMode  = flag.Bool("merge", false, "Merge with existing output file")

	// State and rules flags
	stateFile = flag.String("state", "", "Run-ledger SQLite database (enables cross-run deduplication)")
	rulesFile = flag.String("rules", "", "Symbol rules YAML file (default: embedded rules)")
	fxRate    = flag.Float64("fx", 0, "USD to CAD rate for statements without a disclosed rate (default: rules value)")
)

func main() {
	// Custom usage message
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `folioscout - RBC brokerage statement trade extractor

Usage:
  folioscout [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Parse all statements to stdout
  folioscout -input ~/statements

  # Parse to file with run-ledger tracking
  folioscout -input ~/statements -output trades.json -state ledger.db

  # Parse from a pre-extracted page dump
  folioscout -pages pages.jsonl -output trades.json

  # Dry run with verbose output
  folioscout -input ~/statements -dry-run -verbose

`)
	}

	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Printf("folioscout version %s\n", version)
		os.Exit(0)
	}

	// Validate required flags
	if *inputDir == "" && *pagesFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -input or -pages flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if !*verbose {
		ui.Header("Parsing RBC Statements")
	}

	// Step 1: discover statement files.
	var paths []string
	if *inputDir != "" {
		if !*verbose {
			ui.Step(1, 4, "Scanning directory")
		} else {
			fmt.Fprintf(os.Stderr, "Scanning directory: %s\n", *inputDir)
		}

		files, err := scanner.New(*inputDir).Scan()
		if err != nil {
			return fmt.Errorf("failed to scan directory %s: %w", *inputDir, err)
		}

		if *verbose {
			fmt.Fprintf(os.Stderr, "Found %d statement files\n", len(files))
			for _, f := range files {
				if f.Dated {
					fmt.Fprintf(os.Stderr, "  - %s (%04d-%02d)\n", f.Path, f.Year, f.Month)
				} else {
					fmt.Fprintf(os.Stderr, "  - %s (no date in filename, will be skipped)\n", f.Path)
				}
			}
		} else {
			ui.Success("Found %d statement files", len(files))
		}

		if len(files) == 0 && !*dryRun {
			return fmt.Errorf("no statement files found in %s\n\nPlease check:\n  - Directory path is correct\n  - Files have a .pdf extension\n  - You have read permissions on the directory and files\n\nRun with -verbose to see file discovery details", *inputDir)
		}

		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}

	// Dry run mode: stop after scanning, don't extract or parse
	if *dryRun {
		fmt.Printf("Dry run complete. Would process %d files.\n", len(paths))
		return nil
	}

	// Load symbol rules before extracting so bad config fails fast.
	var ruleSet *rules.Rules
	if *rulesFile != "" {
		loaded, err := rules.LoadFromFile(*rulesFile)
		if err != nil {
			return fmt.Errorf("failed to load rules file: %w", err)
		}
		ruleSet = loaded
		if *verbose {
			fmt.Fprintf(os.Stderr, "Loaded custom rules from %s\n", *rulesFile)
		}
	} else {
		loaded, err := rules.LoadEmbedded()
		if err != nil {
			return fmt.Errorf("failed to load embedded rules: %w", err)
		}
		ruleSet = loaded
	}

	// Step 2: extract page text.
	var extractor extract.Extractor
	if *pagesFile != "" {
		if !*verbose {
			ui.Step(2, 4, "Reading pre-extracted pages")
		} else {
			fmt.Fprintf(os.Stderr, "Reading pre-extracted pages from %s\n", *pagesFile)
		}
		extractor = extract.NewFileExtractor(*pagesFile)
	} else {
		if !*verbose {
			ui.Step(2, 4, "Extracting page text")
		} else {
			fmt.Fprintf(os.Stderr, "Extracting page text via %q\n", *extractCmd)
		}
		cmdExtractor, err := extract.NewCommandExtractor(*extractCmd)
		if err != nil {
			return fmt.Errorf("invalid extraction command: %w", err)
		}
		extractor = cmdExtractor
	}

	pageSets, err := extractor.Extract(ctx, paths)
	if err != nil {
		// A broken extraction collaborator must not abort a multi-source
		// aggregation pipeline, so the run degrades to an empty trade list.
		ui.Error("Extraction failed: %v", err)
		ui.Warning("Producing an empty trade list")
		return writeResults(nil, 0, 0)
	}

	statements := make([]statement.StatementPages, 0, len(pageSets))
	for _, set := range pageSets {
		statements = append(statements, statement.StatementPages{File: set.File, Pages: set.Pages})
	}
	// Dump files carry no ordering guarantee; statement order decides
	// first-wins alias conflicts, so keep it deterministic.
	sort.Slice(statements, func(i, j int) bool {
		return statements[i].File < statements[j].File
	})

	// Step 3: parse trades.
	if !*verbose {
		ui.Step(3, 4, "Parsing statement activity")
	} else {
		fmt.Fprintf(os.Stderr, "\nParsing %d statements...\n", len(statements))
	}

	driver := statement.NewDriver(ruleSet, *fxRate)
	result := driver.Parse(statements)

	if *verbose {
		for _, report := range result.Reports {
			if report.Skipped {
				fmt.Fprintf(os.Stderr, "  %s: skipped (no date in filename)\n", report.File)
				continue
			}
			fmt.Fprintf(os.Stderr, "  %s: %d trades, %d unresolved (FX %.4f)\n",
				report.File, report.Trades, report.Unresolved, report.FXRate)
		}
	}

	ui.Success("Parsed %d trades from %d statements", len(result.Trades), result.FilesParsed)
	if n := result.TotalUnresolved(); n > 0 {
		ui.Warning("%d trade candidates had no resolvable symbol and were dropped", n)
		if *verbose {
			for _, u := range result.Unresolved {
				fmt.Fprintf(os.Stderr, "  unresolved: %s %s %q %.2f\n", u.Date, u.Side, u.Description, u.Amount)
			}
		} else {
			ui.Info("Run with -verbose to see the dropped candidates")
		}
	}

	// Aggregate through the ledger: re-validates every parsed trade and
	// orders the output by date.
	ledger := domain.NewLedger()
	if err := ledger.AddAll(result.Trades); err != nil {
		return fmt.Errorf("parser produced an invalid trade: %w", err)
	}

	return writeResults(ledger.SortedByDate(), result.FilesParsed, result.TotalUnresolved())
}

// writeResults records the run ledger (when enabled) and writes the trade
// list. The ledger commits before output is written: if the write fails, a
// retry reuses the saved ledger instead of reprocessing trades as new.
func writeResults(trades []domain.Trade, filesParsed, unresolved int) error {
	if !*verbose {
		ui.Step(4, 4, "Writing results")
	}

	if *stateFile != "" {
		ledger, err := store.Open(*stateFile)
		if err != nil {
			return fmt.Errorf("failed to open run ledger: %w", err)
		}
		defer ledger.Close()

		summary, err := ledger.RecordRun(trades, filesParsed, unresolved)
		if err != nil {
			return fmt.Errorf("failed to record run before writing output: %w", err)
		}

		if summary.Duplicates > 0 {
			ui.Info("Skipped %d trades already recorded in %s", summary.Duplicates, *stateFile)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Recorded run %s (%d new trades)\n", summary.RunID, len(summary.NewTrades))
		}

		// With the ledger enabled, output carries only this run's new trades.
		trades = summary.NewTrades
	}

	opts := output.WriteOptions{
		MergeMode: *mergeMode,
		FilePath:  *outputFile,
	}
	if err := output.WriteTradesToFile(trades, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if *outputFile != "" {
		ui.Success("Output written to %s", *outputFile)
	}

	return nil
}
