// Package journal implements the execution journal as a bounded JSON file.
package journal

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Journal = (*Store)(nil)

// Store implements ports.Journal using a flat JSON file.
// Entries are kept oldest first and trimmed to maxEntries on every write.
type Store struct {
	path       string
	maxEntries int
	mu         sync.Mutex
	loaded     bool
	entries    []domain.JournalEntry
}

// NewStore creates a journal backed by the file at the given path.
// The file is read on first use; a missing file is an empty journal.
func NewStore(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = domain.JournalMaxEntries
	}
	return &Store{
		path:       filepath.Clean(path),
		maxEntries: maxEntries,
	}
}

// Open returns the journal kept in the state directory of projectDir.
func Open(projectDir string) *Store {
	return NewStore(filepath.Join(projectDir, domain.StateDirName, domain.JournalFileName), domain.JournalMaxEntries)
}

// load reads the file once. Callers must hold the lock.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read journal"), "path", s.path)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to unmarshal journal"), "path", s.path)
		}
	}

	s.loaded = true
	return nil
}

// save writes the current entries. Callers must hold the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal journal")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create journal directory"), "path", s.path)
	}

	tmp := s.path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write journal"), "path", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace journal"), "path", s.path)
	}

	return nil
}

// Append adds entries and persists the journal.
func (s *Store) Append(entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	s.entries = append(s.entries, entries...)
	if over := len(s.entries) - s.maxEntries; over > 0 {
		s.entries = append([]domain.JournalEntry(nil), s.entries[over:]...)
	}

	return s.save()
}

// Recent returns up to limit of the newest entries, oldest first.
func (s *Store) Recent(limit int) ([]domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	start := 0
	if limit > 0 && limit < len(s.entries) {
		start = len(s.entries) - limit
	}
	out := make([]domain.JournalEntry, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out, nil
}
