package domain

import "time"

// JournalEntry records one attempted step for later inspection.
type JournalEntry struct {
	Job         string        `json:"job"`
	Fingerprint string        `json:"fingerprint,omitzero"`
	Command     []string      `json:"command"`
	Status      string        `json:"status"`
	Cached      bool          `json:"cached,omitzero"`
	ExitCode    int           `json:"exit_code"`
	Duration    time.Duration `json:"duration"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewJournalEntry builds a journal entry from a step result.
func NewJournalEntry(res ExecutionResult, argv []string, at time.Time) JournalEntry {
	return JournalEntry{
		Job:         res.Name.String(),
		Fingerprint: res.Fingerprint,
		Command:     argv,
		Status:      res.Status.Kind.String(),
		Cached:      res.Cached,
		ExitCode:    res.Status.Code,
		Duration:    res.Duration,
		Timestamp:   at,
	}
}

// CacheEntry records a successful step so an identical rerun can be skipped.
type CacheEntry struct {
	Job         string    `json:"job"`
	Fingerprint string    `json:"fingerprint"`
	Command     []string  `json:"command"`
	Timestamp   time.Time `json:"timestamp"`
}

// Hit reports whether the entry was recorded for the same fingerprint.
func (e *CacheEntry) Hit(fingerprint string) bool {
	return e != nil && fingerprint != "" && e.Fingerprint == fingerprint
}
