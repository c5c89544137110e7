// Package cas implements the result cache as a flat JSON file keyed by job.
package cas

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

var _ ports.ResultCache = (*Store)(nil)

// Store implements ports.ResultCache using a flat JSON file.
// Only the latest successful run of each job is kept.
type Store struct {
	path   string
	mu     sync.Mutex
	loaded bool
	cache  map[string]domain.CacheEntry
}

// NewStore creates a result cache backed by the file at the given path.
// The file is read on first use; a missing file is an empty cache.
func NewStore(path string) *Store {
	return &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.CacheEntry),
	}
}

// Open returns the result cache kept in the state directory of projectDir.
func Open(projectDir string) *Store {
	return NewStore(filepath.Join(projectDir, domain.StateDirName, domain.CacheFileName))
}

// load reads the file once. Callers must hold the lock.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to read result cache"), "path", s.path)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.cache); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to unmarshal result cache"), "path", s.path)
		}
	}
	if s.cache == nil {
		s.cache = make(map[string]domain.CacheEntry)
	}

	s.loaded = true
	return nil
}

// save writes the current entries. Callers must hold the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal result cache")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create result cache directory"), "path", s.path)
	}

	tmp := s.path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write result cache"), "path", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace result cache"), "path", s.path)
	}

	return nil
}

// Get retrieves the entry for a job. It returns nil, nil if there is none.
func (s *Store) Get(job string) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	entry, ok := s.cache[job]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Put stores the entry, replacing any previous one for the same job.
func (s *Store) Put(entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	s.cache[entry.Job] = entry
	return s.save()
}

// Clear drops the entry for job, or all entries when job is empty.
// A corrupt cache file is discarded when everything is cleared.
func (s *Store) Clear(job string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job == "" {
		n := 0
		if err := s.load(); err == nil {
			n = len(s.cache)
		}
		s.cache = make(map[string]domain.CacheEntry)
		s.loaded = true
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, zerr.With(zerr.Wrap(err, "failed to remove result cache"), "path", s.path)
		}
		return n, nil
	}

	if err := s.load(); err != nil {
		return 0, err
	}
	if _, ok := s.cache[job]; !ok {
		return 0, nil
	}
	delete(s.cache, job)
	return 1, s.save()
}
