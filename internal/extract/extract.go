// Package extract obtains per-page statement text. PDF text extraction is
// delegated to an external collaborator command; its output contract is one
// JSON object per line: {"file": "...", "pages": ["...", ...]}.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Extractor produces the extracted page text for a batch of statement files.
// One call covers the whole batch; a failed extraction fails the batch.
type Extractor interface {
	Extract(ctx context.Context, paths []string) ([]PageSet, error)
}

// PageSet is one statement file's page text in document order
type PageSet struct {
	File  string   `json:"file"`
	Pages []string `json:"pages"`
}

// CommandExtractor runs an external text-extraction command with the
// statement paths as trailing arguments and decodes its JSONL stdout.
type CommandExtractor struct {
	name string
	args []string
}

// NewCommandExtractor creates an extractor from a command line such as
// "extract-pdf-text --layout". The statement paths are appended at run time.
func NewCommandExtractor(command string) (*CommandExtractor, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("extraction command is empty")
	}
	return &CommandExtractor{name: fields[0], args: fields[1:]}, nil
}

// Extract runs the command over the batch and decodes its output
func (e *CommandExtractor) Extract(ctx context.Context, paths []string) ([]PageSet, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	args := make([]string, 0, len(e.args)+len(paths))
	args = append(args, e.args...)
	args = append(args, paths...)

	cmd := exec.CommandContext(ctx, e.name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("extraction command interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("extraction command failed: %v, stderr: %s",
			err, strings.TrimSpace(stderr.String()))
	}

	sets, err := decodePageSets(&stdout)
	if err != nil {
		return nil, fmt.Errorf("extraction command output: %w", err)
	}
	return sets, nil
}

// FileExtractor reads pre-extracted page text from a JSONL dump file,
// bypassing the external command entirely.
type FileExtractor struct {
	path string
}

// NewFileExtractor creates an extractor over a JSONL dump file
func NewFileExtractor(path string) *FileExtractor {
	return &FileExtractor{path: path}
}

// Extract reads the dump and returns the page sets for the requested paths,
// matched by base filename. An empty path list returns every record.
func (e *FileExtractor) Extract(ctx context.Context, paths []string) ([]PageSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page dump: %w", err)
	}
	defer f.Close()

	sets, err := decodePageSets(f)
	if err != nil {
		return nil, fmt.Errorf("page dump %s: %w", e.path, err)
	}
	if len(paths) == 0 {
		return sets, nil
	}

	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[filepath.Base(p)] = struct{}{}
	}

	var matched []PageSet
	for _, set := range sets {
		if _, ok := wanted[filepath.Base(set.File)]; ok {
			matched = append(matched, set)
		}
	}
	return matched, nil
}

// decodePageSets decodes a stream of page-set records. Page text can be
// large, so records are streamed rather than line-split.
func decodePageSets(r io.Reader) ([]PageSet, error) {
	dec := json.NewDecoder(r)

	var sets []PageSet
	for {
		var set PageSet
		if err := dec.Decode(&set); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("malformed page record: %w", err)
		}
		if set.File == "" {
			return nil, errors.New("page record missing file name")
		}
		sets = append(sets, set)
	}
	return sets, nil
}
