package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dshills/paragen/pkg/types"
)

// Store indexes source rows by tag: example questions for prompt context and
// the canonical answer each tag resolves to.
type Store struct {
	examplesByTag map[string][]string
	answerByTag   map[string]string
	tags          []string
	rng           *rand.Rand
}

// Load reads the examples and answers CSVs and builds the store. The
// examples file needs a question (or query) column and a tag column; the
// answers file needs tag and answer columns. Rows carrying the sentinel tag
// or empty question text are dropped.
func Load(examplesPath, answersPath, sentinelTag string) (*Store, error) {
	s := &Store{
		examplesByTag: make(map[string][]string),
		answerByTag:   make(map[string]string),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.loadExamples(examplesPath, sentinelTag); err != nil {
		return nil, err
	}
	if err := s.loadAnswers(answersPath); err != nil {
		return nil, err
	}

	if len(s.examplesByTag) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmptyDataset, examplesPath)
	}

	s.tags = make([]string, 0, len(s.examplesByTag))
	for tag := range s.examplesByTag {
		s.tags = append(s.tags, tag)
	}
	// Case-insensitive ordering with a byte-order tie-break: the checkpoint
	// cursor is an index into this list, so tags differing only in case must
	// still land in the same order every run.
	sort.Slice(s.tags, func(i, j int) bool {
		li, lj := strings.ToLower(s.tags[i]), strings.ToLower(s.tags[j])
		if li == lj {
			return s.tags[i] < s.tags[j]
		}
		return li < lj
	})

	return s, nil
}

func (s *Store) loadExamples(path, sentinelTag string) error {
	rows, header, err := readCSV(path)
	if err != nil {
		return err
	}

	questionIdx, err := columnIndex(header, path, "question", "query")
	if err != nil {
		return err
	}
	tagIdx, err := columnIndex(header, path, "tag")
	if err != nil {
		return err
	}

	for _, row := range rows {
		question := strings.TrimSpace(row[questionIdx])
		tag := strings.TrimSpace(row[tagIdx])
		if tag == "" || tag == sentinelTag || question == "" {
			continue
		}
		// Tags become artifact filenames; a tag that escapes the artifact
		// directory is a malformed input, not a work item.
		if !validTag(tag) {
			return fmt.Errorf("%w: %q in %s", types.ErrInvalidTag, tag, path)
		}
		s.examplesByTag[tag] = append(s.examplesByTag[tag], question)
	}
	return nil
}

// validTag rejects tags that cannot serve as a plain filename inside the
// artifact directory.
func validTag(tag string) bool {
	return !strings.ContainsAny(tag, `/\`) && !strings.Contains(tag, "..")
}

func (s *Store) loadAnswers(path string) error {
	rows, header, err := readCSV(path)
	if err != nil {
		return err
	}

	tagIdx, err := columnIndex(header, path, "tag")
	if err != nil {
		return err
	}
	answerIdx, err := columnIndex(header, path, "answer")
	if err != nil {
		return err
	}

	for _, row := range rows {
		tag := strings.TrimSpace(row[tagIdx])
		if tag == "" {
			continue
		}
		s.answerByTag[tag] = strings.TrimSpace(row[answerIdx])
	}
	return nil
}

// Tags returns the ordered work list: every tag seen in the examples file,
// deduplicated, sorted case-insensitively ascending.
func (s *Store) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Answer returns the canonical answer for a tag.
func (s *Store) Answer(tag string) (string, bool) {
	answer, ok := s.answerByTag[tag]
	return answer, ok
}

// ExampleCount returns the number of example questions held for a tag.
func (s *Store) ExampleCount(tag string) int {
	return len(s.examplesByTag[tag])
}

// Sample returns up to k example questions for a tag, drawn randomly without
// replacement. All available examples are returned when fewer than k exist.
// An unknown tag yields an empty slice, not an error; the caller treats it
// as nothing to do.
func (s *Store) Sample(tag string, k int) []string {
	available := s.examplesByTag[tag]
	if len(available) == 0 {
		return nil
	}
	if len(available) <= k {
		out := make([]string, len(available))
		copy(out, available)
		return out
	}

	idx := s.rng.Perm(len(available))[:k]
	out := make([]string, 0, k)
	for _, i := range idx {
		out = append(out, available[i])
	}
	return out
}

// readCSV reads a whole CSV file and returns data rows plus the normalized
// header.
func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%w: %s is empty", types.ErrEmptyDataset, path)
	}

	header := all[0]
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	// Pad short rows so column lookups never go out of range.
	rows := all[1:]
	for i, row := range rows {
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, header, nil
}

// columnIndex finds the first matching column name, trying aliases in order.
func columnIndex(header []string, path string, names ...string) (int, error) {
	for _, name := range names {
		for i, col := range header {
			if col == name {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q in %s (available: %s)",
		types.ErrMissingColumn, names[0], path, strings.Join(header, ", "))
}
