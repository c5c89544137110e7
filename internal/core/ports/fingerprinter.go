package ports

import "go.trai.ch/cargonode/internal/core/domain"

// Fingerprinter computes a stable identity for a resolved invocation.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint hashes the job's command line, environment, working directory
	// and the contents of its input files.
	Fingerprint(job *domain.JobSpec, argv []string) (string, error)
}
