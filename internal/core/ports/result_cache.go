package ports

import "go.trai.ch/cargonode/internal/core/domain"

// ResultCache remembers the fingerprint of each job's last successful run.
//
//go:generate mockgen -source=result_cache.go -destination=mocks/mock_result_cache.go -package=mocks
type ResultCache interface {
	// Get returns the entry for job, or nil when there is none.
	Get(job string) (*domain.CacheEntry, error)
	// Put replaces the entry for entry.Job.
	Put(entry domain.CacheEntry) error
	// Clear removes the entry for job, or every entry when job is empty.
	// It returns the number of entries removed.
	Clear(job string) (int, error)
}

// ResultCacheFactory opens the result cache kept under a project directory.
type ResultCacheFactory func(projectDir string) ResultCache
