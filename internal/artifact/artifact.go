// Package artifact persists per-tag generation results as self-contained CSV
// files. One writer owns one file per tag; an artifact exists on disk only
// when the full generated set was obtained, so the merge stage never sees a
// silently-truncated output.
package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/paragen/pkg/types"
)

// Header columns shared by artifacts and the merged dataset.
var Header = []string{"question", "tag"}

// Writer persists one artifact per tag into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the artifact directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write persists the generated questions for a tag as <tag>.csv: a header
// row followed by one (question, tag) row per question. The write goes
// through a temp file and rename, so a crash mid-write never leaves a
// partial artifact, and re-running the same tag overwrites its prior
// artifact with an equivalent one.
func (w *Writer) Write(tag string, questions []string) error {
	tmp, err := os.CreateTemp(w.dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	cw := csv.NewWriter(tmp)
	if err := cw.Write(Header); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write artifact header: %w", err)
	}
	for _, q := range questions {
		if err := cw.Write([]string{q, tag}); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return fmt.Errorf("write artifact row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("flush artifact: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}

	final := filepath.Join(w.dir, tag+".csv")
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace artifact %s: %w", final, err)
	}
	return nil
}

// List returns the artifact files in dir sorted by filename ascending,
// which is tag order since artifacts are named by tag.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts in %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read loads one artifact file and returns its data rows in file order.
func Read(path string) ([]types.QuestionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	// Skip the header row.
	rows := make([]types.QuestionRow, 0, len(all)-1)
	for _, record := range all[1:] {
		row := types.QuestionRow{}
		if len(record) > 0 {
			row.Question = record[0]
		}
		if len(record) > 1 {
			row.Tag = record[1]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
