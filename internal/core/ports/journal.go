package ports

import "go.trai.ch/cargonode/internal/core/domain"

// Journal persists a bounded history of attempted steps.
//
//go:generate mockgen -source=journal.go -destination=mocks/mock_journal.go -package=mocks
type Journal interface {
	// Append stores entries, dropping the oldest beyond the retention limit.
	Append(entries []domain.JournalEntry) error
	// Recent returns up to limit of the newest entries, oldest first.
	// A limit of zero or less returns everything.
	Recent(limit int) ([]domain.JournalEntry, error)
}

// JournalFactory opens the journal kept under a project directory.
type JournalFactory func(projectDir string) Journal
