package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rumor-ml/folioscout/internal/statement"
)

// copySuffixRe matches the "-N" suffix download managers append when the
// same statement is saved more than once ("rbc-2023-01-10-1.pdf").
var copySuffixRe = regexp.MustCompile(`^(.+)-\d+(\.[Pp][Dd][Ff])$`)

// Scanner walks a directory tree and finds statement PDF files
type Scanner struct {
	rootDir string
}

// New creates a new scanner for the given root directory
func New(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// ScanResult is one discovered statement file. Year and Month come from the
// date fragment in the filename; Dated is false when the name carries none.
type ScanResult struct {
	Path  string
	Year  int
	Month time.Month
	Dated bool
}

// Scan walks the directory tree and returns statement files in sorted path
// order. A "-N" copy is dropped when its unsuffixed original was also found
// in the same directory.
func (s *Scanner) Scan() ([]ScanResult, error) {
	rootDir, err := s.expandHome(s.rootDir)
	if err != nil {
		return nil, err
	}

	var paths []string
	found := make(map[string]struct{})

	err = filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}
		if !isStatementFile(path) {
			return nil
		}
		paths = append(paths, path)
		found[path] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	sort.Strings(paths)

	var results []ScanResult
	for _, path := range paths {
		if isDuplicateCopy(path, found) {
			continue
		}
		year, month, ok := statement.ParseStatementDate(path)
		results = append(results, ScanResult{
			Path:  path,
			Year:  year,
			Month: month,
			Dated: ok,
		})
	}

	return results, nil
}

// isStatementFile checks if file is a statement PDF
func isStatementFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// isDuplicateCopy reports whether path is a "-N" copy whose unsuffixed
// original was also found. The check requires the original to exist; a
// filename whose date fragment happens to end in "-N" is kept when no
// shorter sibling is present.
func isDuplicateCopy(path string, found map[string]struct{}) bool {
	m := copySuffixRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return false
	}
	original := filepath.Join(filepath.Dir(path), m[1]+m[2])
	_, ok := found[original]
	return ok
}

// expandHome expands ~ to home directory
func (s *Scanner) expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
