package ports

import "go.trai.ch/cargonode/internal/core/domain"

// Reporter prints user-facing progress for a workflow run.
//
//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	// StepStarted announces the command line about to run.
	StepStarted(job *domain.JobSpec, argv []string)
	// StepFinished reports the outcome of one attempted step.
	StepFinished(res domain.ExecutionResult)
	// Summary prints the final state of every planned step.
	Summary(run *domain.Run)
}
