package ports

import (
	"context"

	"go.trai.ch/cargonode/internal/core/domain"
)

// ProcessRunner defines the interface for launching one resolved job.
//
//go:generate mockgen -source=process_runner.go -destination=mocks/mock_process_runner.go -package=mocks
type ProcessRunner interface {
	// Run executes the job with passthrough appended to its arguments and waits for it.
	// The returned result is always populated; the error is a *domain.Failure when the
	// step did not succeed.
	Run(ctx context.Context, job *domain.JobSpec, passthrough []string) (domain.ExecutionResult, error)
}
