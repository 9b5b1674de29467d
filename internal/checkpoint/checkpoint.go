// Package checkpoint persists the resume cursor for a generation run: a
// single integer, the ordinal of the last work item whose processing fully
// finished. The value is written through a temp file, fsynced, and renamed
// into place so a crash never leaves a torn or buffered value, and the next
// run always resumes at a clean item boundary.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// None is the cursor value before any item has been processed.
const None = -1

// Store reads and writes the progress file.
type Store struct {
	path string
}

// New creates a checkpoint store over the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the progress file location.
func (s *Store) Path() string {
	return s.path
}

// Read returns the last attempted ordinal, or None when the file is absent
// or empty.
func (s *Store) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return None, nil
		}
		return None, fmt.Errorf("read checkpoint %s: %w", s.path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return None, nil
	}

	ordinal, err := strconv.Atoi(content)
	if err != nil {
		return None, fmt.Errorf("corrupt checkpoint %s: %w", s.path, err)
	}
	return ordinal, nil
}

// Write durably records the ordinal. The write is atomic and idempotent:
// repeating it for the same ordinal is harmless.
func (s *Store) Write(ordinal int) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.Itoa(ordinal)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close checkpoint: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// Reset rewinds the cursor to None.
func (s *Store) Reset() error {
	return s.Write(None)
}
