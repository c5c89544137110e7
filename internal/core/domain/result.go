package domain

import (
	"errors"
	"fmt"
	"time"
)

// StatusKind classifies how a single process ended.
type StatusKind int

const (
	// StatusSucceeded means the process exited with code zero.
	StatusSucceeded StatusKind = iota
	// StatusNonZeroExit means the process ran and exited with a failure code.
	StatusNonZeroExit
	// StatusLaunchFailed means the process could not be started.
	StatusLaunchFailed
	// StatusTimedOut means the process was killed after exceeding its timeout.
	StatusTimedOut
	// StatusInterrupted means the process was killed because the run was cancelled.
	StatusInterrupted
)

// String returns a short human readable name for the status kind.
func (k StatusKind) String() string {
	switch k {
	case StatusSucceeded:
		return "succeeded"
	case StatusNonZeroExit:
		return "non-zero exit"
	case StatusLaunchFailed:
		return "launch failure"
	case StatusTimedOut:
		return "timeout"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ExitStatus is the outcome of one process.
type ExitStatus struct {
	Kind StatusKind
	// Code is the child exit code. It is -1 when no code is available.
	Code int
}

// Success reports whether the process succeeded.
func (s ExitStatus) Success() bool {
	return s.Kind == StatusSucceeded
}

// ExecutionResult is the immutable outcome of one attempted step.
type ExecutionResult struct {
	Name     InternedString
	Status   ExitStatus
	Duration time.Duration
	Err      error
	// Fingerprint identifies the invocation and its inputs. Empty when it could not be computed.
	Fingerprint string
	// Cached is set when the step was skipped because an identical run already succeeded.
	Cached bool
}

// FailureKind classifies why a run failed.
type FailureKind int

const (
	// FailureConfiguration covers unknown jobs, malformed config and missing executables.
	FailureConfiguration FailureKind = iota + 1
	// FailureCycleDetected means the step graph contains a cycle.
	FailureCycleDetected
	// FailureLaunch means a step's process could not be started.
	FailureLaunch
	// FailureNonZeroExit means a step's process exited with a failure code.
	FailureNonZeroExit
	// FailureTimeout means a step's process exceeded its timeout.
	FailureTimeout
	// FailureInterrupted means the run was cancelled by the user.
	FailureInterrupted
)

// String returns the name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureConfiguration:
		return "ConfigurationError"
	case FailureCycleDetected:
		return "CycleDetected"
	case FailureLaunch:
		return "LaunchFailure"
	case FailureNonZeroExit:
		return "NonZeroExit"
	case FailureTimeout:
		return "TimeoutExceeded"
	case FailureInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// FailureKindOf maps a process status onto the run failure taxonomy.
func FailureKindOf(kind StatusKind) FailureKind {
	switch kind {
	case StatusNonZeroExit:
		return FailureNonZeroExit
	case StatusLaunchFailed:
		return FailureLaunch
	case StatusTimedOut:
		return FailureTimeout
	case StatusInterrupted:
		return FailureInterrupted
	case StatusSucceeded:
		return 0
	default:
		return FailureLaunch
	}
}

// Failure is the error returned for a failed run. It names the failing step
// and carries the child exit code when one exists.
type Failure struct {
	Kind     FailureKind
	Step     string
	ExitCode int
	Err      error
}

// NewFailure creates a Failure without a child exit code.
func NewFailure(kind FailureKind, step string, err error) *Failure {
	return &Failure{Kind: kind, Step: step, ExitCode: -1, Err: err}
}

func (f *Failure) Error() string {
	if f.Step == "" {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s in step %q: %v", f.Kind, f.Step, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ProcessExitCode returns the exit code cargonode should terminate with.
func (f *Failure) ProcessExitCode() int {
	switch f.Kind {
	case FailureNonZeroExit:
		if f.ExitCode > 0 {
			return f.ExitCode
		}
		return ExitCodeFailure
	case FailureInterrupted:
		return ExitCodeInterrupted
	case FailureConfiguration, FailureCycleDetected, FailureLaunch, FailureTimeout:
		return ExitCodeFailure
	default:
		return ExitCodeFailure
	}
}

// AsFailure extracts a Failure from err, classifying anything else as a configuration error.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewFailure(FailureConfiguration, "", err)
}
