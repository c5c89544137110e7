package domain

import (
	"maps"
	"slices"
	"time"

	"go.trai.ch/zerr"
)

// JobLayer is one precedence layer contributing to a JobSpec.
// Nil fields are unset and leave lower layers untouched. A non-nil empty
// Args or Steps explicitly clears the lower layer's list.
type JobLayer struct {
	Executable *string
	Subcommand *string
	Args       []string
	Envs       map[string]string
	WorkingDir *string
	Steps      []string
	Inputs     []string
	Timeout    *time.Duration
}

// Merge returns a new layer where every field explicitly set in higher replaces
// the receiver's value. Envs are unioned with higher winning on key conflicts.
func (l JobLayer) Merge(higher JobLayer) JobLayer {
	out := JobLayer{
		Executable: l.Executable,
		Subcommand: l.Subcommand,
		Args:       l.Args,
		WorkingDir: l.WorkingDir,
		Steps:      l.Steps,
		Inputs:     l.Inputs,
		Timeout:    l.Timeout,
	}

	if higher.Executable != nil {
		out.Executable = higher.Executable
	}
	if higher.Subcommand != nil {
		out.Subcommand = higher.Subcommand
	}
	if higher.Args != nil {
		out.Args = higher.Args
	}
	if higher.WorkingDir != nil {
		out.WorkingDir = higher.WorkingDir
	}
	if higher.Steps != nil {
		out.Steps = higher.Steps
	}
	if higher.Inputs != nil {
		out.Inputs = higher.Inputs
	}
	if higher.Timeout != nil {
		out.Timeout = higher.Timeout
	}

	if len(l.Envs) > 0 || len(higher.Envs) > 0 {
		out.Envs = make(map[string]string, len(l.Envs)+len(higher.Envs))
		maps.Copy(out.Envs, l.Envs)
		maps.Copy(out.Envs, higher.Envs)
	}

	return out
}

// HasExecutable reports whether the layer sets a non-empty executable.
func (l JobLayer) HasExecutable() bool {
	return l.Executable != nil && *l.Executable != ""
}

// Spec converts the merged layer into a JobSpec for the named job.
func (l JobLayer) Spec(name InternedString) (*JobSpec, error) {
	if !l.HasExecutable() {
		return nil, zerr.With(ErrMissingExecutable, "job", name.String())
	}

	spec := &JobSpec{
		Name:       name,
		Executable: *l.Executable,
		Args:       slices.Clone(l.Args),
		Envs:       maps.Clone(l.Envs),
	}
	if l.Subcommand != nil {
		spec.Subcommand = *l.Subcommand
	}
	if l.WorkingDir != nil {
		spec.WorkingDir = *l.WorkingDir
	}
	if l.Timeout != nil {
		spec.Timeout = *l.Timeout
	}
	if spec.Envs == nil {
		spec.Envs = map[string]string{}
	}
	if len(l.Steps) > 0 {
		spec.Steps = NewInternedStrings(l.Steps)
	}
	if len(l.Inputs) > 0 {
		spec.Inputs = slices.Clone(l.Inputs)
	}

	return spec, nil
}

// Ptr returns a pointer to v. It keeps layer literals short.
func Ptr[T any](v T) *T {
	return &v
}
