// Package workflow runs a job and its prerequisite steps one at a time.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/zerr"
)

// StepStatus represents the status of a planned step.
type StepStatus string

const (
	// StatusPending indicates the step has not started.
	StatusPending StepStatus = "Pending"
	// StatusRunning indicates the step is currently executing.
	StatusRunning StepStatus = "Running"
	// StatusSucceeded indicates the step exited successfully.
	StatusSucceeded StepStatus = "Succeeded"
	// StatusFailed indicates the step failed and stopped the run.
	StatusFailed StepStatus = "Failed"
)

// Request describes one workflow run.
type Request struct {
	// Target is the job the user asked for. It always runs last.
	Target string
	// Lookup resolves job names for the step graph.
	Lookup domain.JobLookup
	// Passthrough is appended to the target's command line only.
	Passthrough []string
	// TargetOnly skips prerequisite steps. The graph is still expanded so
	// configuration errors and cycles are reported.
	TargetOnly bool
	// Cache holds the fingerprints of previous successful steps. Nil disables caching.
	Cache ports.ResultCache
	// Force runs every step even when its inputs are unchanged.
	Force bool
}

// Executor drives the step sequence of a run.
type Executor struct {
	runner        ports.ProcessRunner
	fingerprinter ports.Fingerprinter
	reporter      ports.Reporter
	telemetry     ports.Telemetry
	logger        ports.Logger
	now           func() time.Time

	mu         sync.RWMutex
	stepStatus map[domain.InternedString]StepStatus
}

// NewExecutor creates a new Executor.
func NewExecutor(
	runner ports.ProcessRunner,
	fingerprinter ports.Fingerprinter,
	reporter ports.Reporter,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Executor {
	return &Executor{
		runner:        runner,
		fingerprinter: fingerprinter,
		reporter:      reporter,
		telemetry:     telemetry,
		logger:        logger,
		now:           time.Now,
		stepStatus:    make(map[domain.InternedString]StepStatus),
	}
}

func (e *Executor) resetStatuses(plan []*domain.JobSpec) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.stepStatus)
	for _, job := range plan {
		e.stepStatus[job.Name] = StatusPending
	}
}

func (e *Executor) updateStatus(name domain.InternedString, status StepStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stepStatus[name] = status
}

// Execute expands the target's steps and runs them in order, stopping at the
// first failure. The returned Run always reflects what was attempted; the
// error is a *domain.Failure when the run did not succeed.
func (e *Executor) Execute(ctx context.Context, req Request) (*domain.Run, error) {
	target := domain.NewInternedString(req.Target)
	run := domain.NewRun(target, req.Passthrough)

	graph := domain.NewStepGraph(req.Lookup)
	if err := graph.Expand(target); err != nil {
		run.Fail()
		return run, err
	}

	run.Plan = plan(graph, target, req.TargetOnly)
	e.resetStatuses(run.Plan)
	e.logger.Info(fmt.Sprintf("planned %s", strings.Join(planNames(run.Plan), " -> ")))

	for i, job := range run.Plan {
		if ctx.Err() != nil {
			run.Fail()
			return run, domain.NewFailure(domain.FailureInterrupted, job.Name.String(),
				zerr.With(domain.ErrInterrupted, "job", job.Name.String()))
		}

		run.Start(i)
		res, err := e.runStep(ctx, req, run, job)
		run.Record(res)

		if err != nil {
			e.updateStatus(job.Name, StatusFailed)
			return run, err
		}
		e.updateStatus(job.Name, StatusSucceeded)
	}

	return run, nil
}

func (e *Executor) runStep(
	ctx context.Context, req Request, run *domain.Run, job *domain.JobSpec,
) (domain.ExecutionResult, error) {
	argv := run.ArgvFor(job)
	e.updateStatus(job.Name, StatusRunning)

	fingerprint := e.fingerprint(job, argv)
	if e.cacheHit(req, job, fingerprint) {
		res := domain.ExecutionResult{
			Name:        job.Name,
			Status:      domain.ExitStatus{Kind: domain.StatusSucceeded},
			Fingerprint: fingerprint,
			Cached:      true,
		}
		e.logger.Info(fmt.Sprintf("step %s is up to date", job.Name))
		e.reporter.StepFinished(res)
		return res, nil
	}

	e.reporter.StepStarted(job, argv)
	e.logger.Debug(fmt.Sprintf("running step %s: %s", job.Name, strings.Join(argv, " ")))

	stepCtx, vertex := e.telemetry.Record(ctx, job.Name.String())
	var passthrough []string
	if job.Name == run.Target {
		passthrough = run.Passthrough
	}

	res, err := e.runner.Run(stepCtx, job, passthrough)
	if err != nil && res.Status.Success() {
		// A runner that errors without classifying the outcome could not start the process.
		res.Status = domain.ExitStatus{Kind: domain.StatusLaunchFailed, Code: -1}
		res.Err = err
		err = domain.NewFailure(domain.FailureLaunch, job.Name.String(), err)
	}
	res.Name = job.Name
	res.Fingerprint = fingerprint

	vertex.Complete(err)
	e.reporter.StepFinished(res)
	if err != nil {
		e.logger.Info(fmt.Sprintf("step %s failed: %s", job.Name, res.Status.Kind))
		return res, err
	}

	e.storeResult(req, job, argv, fingerprint)
	return res, nil
}

// fingerprint returns the invocation's fingerprint, or "" when it cannot be
// computed. A step without a fingerprint still runs, it is just never cached.
func (e *Executor) fingerprint(job *domain.JobSpec, argv []string) string {
	fp, err := e.fingerprinter.Fingerprint(job, argv)
	if err != nil {
		e.logger.Warn(fmt.Sprintf("step %s will not be cached: %v", job.Name, err))
		return ""
	}
	return fp
}

func cacheable(req Request, job *domain.JobSpec, fingerprint string) bool {
	return req.Cache != nil && !req.TargetOnly && len(job.Inputs) > 0 && fingerprint != ""
}

func (e *Executor) cacheHit(req Request, job *domain.JobSpec, fingerprint string) bool {
	if req.Force || !cacheable(req, job, fingerprint) {
		return false
	}

	entry, err := req.Cache.Get(job.Name.String())
	if err != nil {
		e.logger.Warn(fmt.Sprintf("cache lookup for %s failed: %v", job.Name, err))
		return false
	}
	return entry.Hit(fingerprint)
}

func (e *Executor) storeResult(req Request, job *domain.JobSpec, argv []string, fingerprint string) {
	if !cacheable(req, job, fingerprint) {
		return
	}

	err := req.Cache.Put(domain.CacheEntry{
		Job:         job.Name.String(),
		Fingerprint: fingerprint,
		Command:     argv,
		Timestamp:   e.now().UTC(),
	})
	if err != nil {
		e.logger.Warn(fmt.Sprintf("failed to cache %s: %v", job.Name, err))
	}
}

// plan returns the jobs to run for target in execution order.
func plan(graph *domain.StepGraph, target domain.InternedString, targetOnly bool) []*domain.JobSpec {
	if targetOnly {
		job, _ := graph.Job(target)
		return []*domain.JobSpec{job}
	}

	var jobs []*domain.JobSpec
	for job := range graph.Walk() {
		jobs = append(jobs, job)
	}
	return jobs
}

func planNames(jobs []*domain.JobSpec) []string {
	names := make([]string, 0, len(jobs))
	for _, job := range jobs {
		names = append(names, job.Name.String())
	}
	return names
}
