package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoHistory is returned by operations that need an existing log.
var ErrNoHistory = errors.New("no history yet")

// Entry is one completed dispatch as persisted in the log.
type Entry struct {
	Timestamp string            `json:"timestamp"`
	Backends  []string          `json:"agents"`
	Prompt    string            `json:"prompt"`
	Results   map[string]string `json:"results"`
}

// NewEntry copies backends and results so later mutation by the caller does
// not leak into the log.
func NewEntry(now time.Time, backends []string, prompt string, results map[string]string) Entry {
	copied := make(map[string]string, len(results))
	for k, v := range results {
		copied[k] = v
	}
	return Entry{
		Timestamp: now.Format(time.RFC3339),
		Backends:  append([]string{}, backends...),
		Prompt:    prompt,
		Results:   copied,
	}
}

// Store persists entries as a single JSON array. Callers within one process
// are serialized; concurrent writers in other processes are not supported.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Append adds entry to the end of the log, creating the file if needed. The
// whole log is rewritten through a temp file and rename.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return s.write(entries)
}

// List returns the most recent limit entries, oldest first. A limit of zero
// or less returns everything.
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Last returns the most recent entry.
func (s *Store) Last() (Entry, bool, error) {
	entries, err := s.List(1)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[0], true, nil
}

// Clear deletes the log. It reports whether there was anything to delete.
func (s *Store) Clear() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("clear history: %w", err)
	}
	return true, nil
}

// Export copies the raw log to dst. It returns ErrNoHistory when the log does
// not exist.
func (s *Store) Export(dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoHistory
	}
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer src.Close()

	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("export history: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *Store) write(entries []Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp history: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
