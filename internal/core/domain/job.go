package domain

import (
	"maps"
	"slices"
	"time"
)

// JobSpec is the resolved description of one runnable step.
type JobSpec struct {
	Name       InternedString
	Executable string
	Subcommand string
	Args       []string
	Envs       map[string]string
	WorkingDir string
	Steps      []InternedString
	// Inputs are glob patterns, relative to WorkingDir, whose contents key the result cache.
	Inputs []string
	// Timeout bounds the process lifetime. Zero means no bound.
	Timeout time.Duration
}

// Argv returns the full command line for the job with passthrough arguments appended.
func (j *JobSpec) Argv(passthrough []string) []string {
	argv := make([]string, 0, 2+len(j.Args)+len(passthrough))
	argv = append(argv, j.Executable)
	if j.Subcommand != "" {
		argv = append(argv, j.Subcommand)
	}
	argv = append(argv, j.Args...)
	return append(argv, passthrough...)
}

// HasStep reports whether name is one of the job's declared steps.
func (j *JobSpec) HasStep(name InternedString) bool {
	return slices.Contains(j.Steps, name)
}

// Clone returns a deep copy of the job.
func (j *JobSpec) Clone() *JobSpec {
	c := *j
	c.Args = slices.Clone(j.Args)
	c.Envs = maps.Clone(j.Envs)
	c.Steps = slices.Clone(j.Steps)
	c.Inputs = slices.Clone(j.Inputs)
	return &c
}

// JobLookup resolves a job name into its JobSpec.
type JobLookup func(name InternedString) (*JobSpec, error)
