package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownJob is returned when a job name is neither a built-in command,
	// a project entry, nor given an executable on the command line.
	ErrUnknownJob = zerr.New("unknown job")

	// ErrMissingExecutable is returned when no layer supplies an executable for a job.
	ErrMissingExecutable = zerr.New("no executable resolved for job")

	// ErrSelfStep is returned when a job lists itself in its own steps.
	ErrSelfStep = zerr.New("job lists itself as a step")

	// ErrUnresolvableStep is returned when a declared step cannot be resolved into a job.
	ErrUnresolvableStep = zerr.New("unresolvable step")

	// ErrCycleDetected is returned when a cycle is detected in the step graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = zerr.New("config file not found")

	// ErrConfigMalformed is returned when a project config file cannot be parsed.
	ErrConfigMalformed = zerr.New("malformed config file")

	// ErrUnsupportedConfigFormat is returned when a config file extension is not recognized.
	ErrUnsupportedConfigFormat = zerr.New("unsupported config file format")

	// ErrInvalidEnv is returned when an environment override is not in KEY=VALUE form.
	ErrInvalidEnv = zerr.New("invalid environment override")

	// ErrInvalidArgs is returned when an args override cannot be split into words.
	ErrInvalidArgs = zerr.New("invalid args override")

	// ErrMissingFlagValue is returned when a flag that takes a value is the last token.
	ErrMissingFlagValue = zerr.New("flag needs an argument")

	// ErrMissingJobName is returned when a custom job invocation does not name a job.
	ErrMissingJobName = zerr.New("job name required")

	// ErrExecutableNotFound is returned when the executable cannot be located on PATH.
	ErrExecutableNotFound = zerr.New("executable not found")

	// ErrWorkingDirNotFound is returned when a job's working directory does not exist.
	ErrWorkingDirNotFound = zerr.New("working directory not found")

	// ErrWorkingDirNotDir is returned when a job's working directory is not a directory.
	ErrWorkingDirNotDir = zerr.New("working directory is not a directory")

	// ErrLaunchFailed is returned when a process could not be started.
	ErrLaunchFailed = zerr.New("failed to launch process")

	// ErrNonZeroExit is returned when a process exits with a failure code.
	ErrNonZeroExit = zerr.New("process exited with non-zero status")

	// ErrTimeoutExceeded is returned when a process outlives its configured timeout.
	ErrTimeoutExceeded = zerr.New("process timed out")

	// ErrInterrupted is returned when the run is cancelled by the user.
	ErrInterrupted = zerr.New("interrupted")

	// ErrInputNotFound is returned when a literal input path does not exist.
	ErrInputNotFound = zerr.New("input not found")

	// ErrInvalidInputPattern is returned when an input glob cannot be compiled.
	ErrInvalidInputPattern = zerr.New("invalid input pattern")
)
