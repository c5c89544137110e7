package domain

import "slices"

// RunState is the lifecycle state of one workflow run.
type RunState string

const (
	// RunPending indicates no step has started yet.
	RunPending RunState = "pending"
	// RunRunning indicates a step is currently executing.
	RunRunning RunState = "running"
	// RunSucceeded indicates every planned step succeeded.
	RunSucceeded RunState = "succeeded"
	// RunFailed indicates the run stopped at the first failure.
	RunFailed RunState = "failed"
)

// IsTerminal reports whether the state is Succeeded or Failed.
func (s RunState) IsTerminal() bool {
	return s == RunSucceeded || s == RunFailed
}

// Run accumulates the outcome of one workflow execution.
// Results hold one entry per attempted step, in execution order.
type Run struct {
	Target      InternedString
	Plan        []*JobSpec
	Passthrough []string
	State       RunState
	// Current is the index into Plan of the running or failing step, -1 before the first step.
	Current int
	Results []ExecutionResult
}

// NewRun creates a pending run for target.
func NewRun(target InternedString, passthrough []string) *Run {
	return &Run{
		Target:      target,
		Passthrough: slices.Clone(passthrough),
		State:       RunPending,
		Current:     -1,
	}
}

// Start moves the run into Running for the step at index i.
func (r *Run) Start(i int) {
	r.State = RunRunning
	r.Current = i
}

// Record appends the result of the current step and moves the run to a
// terminal state when the step failed or was the last one.
func (r *Run) Record(res ExecutionResult) {
	r.Results = append(r.Results, res)
	switch {
	case !res.Status.Success():
		r.State = RunFailed
	case len(r.Results) == len(r.Plan):
		r.State = RunSucceeded
	}
}

// Fail moves the run into Failed without recording a step result.
func (r *Run) Fail() {
	r.State = RunFailed
}

// ArgvFor returns the command line for a planned job. Passthrough arguments
// belong to the target job only.
func (r *Run) ArgvFor(job *JobSpec) []string {
	if job.Name == r.Target {
		return job.Argv(r.Passthrough)
	}
	return job.Argv(nil)
}

// FailedResult returns the result of the failing step, if the run failed in a step.
func (r *Run) FailedResult() (ExecutionResult, bool) {
	if len(r.Results) == 0 {
		return ExecutionResult{}, false
	}
	last := r.Results[len(r.Results)-1]
	if last.Status.Success() {
		return ExecutionResult{}, false
	}
	return last, true
}

// NotAttempted lists planned steps that never started.
func (r *Run) NotAttempted() []InternedString {
	var names []InternedString
	for _, job := range r.Plan[min(len(r.Results), len(r.Plan)):] {
		names = append(names, job.Name)
	}
	return names
}
