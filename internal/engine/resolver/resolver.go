// Package resolver turns job names into JobSpecs by merging the built-in
// defaults, the project file and the command line, lowest to highest.
package resolver

import (
	"path/filepath"
	"slices"

	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolver resolves job names for one invocation.
// Command-line overrides apply to the target job only; steps pulled in
// through the graph resolve from defaults and the project file.
type Resolver struct {
	project   *domain.ProjectConfig
	target    domain.InternedString
	overrides domain.Overrides
	baseDir   string
}

// New creates a Resolver. Relative working directories are joined to baseDir.
func New(project *domain.ProjectConfig, target string, overrides domain.Overrides, baseDir string) *Resolver {
	return &Resolver{
		project:   project,
		target:    domain.NewInternedString(target),
		overrides: overrides,
		baseDir:   baseDir,
	}
}

// Lookup returns Resolve as a domain.JobLookup.
func (r *Resolver) Lookup() domain.JobLookup {
	return r.Resolve
}

// Resolve merges every layer that knows name into a JobSpec.
func (r *Resolver) Resolve(name domain.InternedString) (*domain.JobSpec, error) {
	layer, known := r.layer(name)
	if !known {
		return nil, zerr.With(domain.ErrUnknownJob, "job", name.String())
	}

	spec, err := layer.Spec(name)
	if err != nil {
		return nil, err
	}

	if spec.HasStep(name) {
		return nil, zerr.With(domain.ErrSelfStep, "job", name.String())
	}

	spec.WorkingDir = resolveWorkingDir(r.baseDir, spec.WorkingDir)
	return spec, nil
}

func (r *Resolver) layer(name domain.InternedString) (domain.JobLayer, bool) {
	var layer domain.JobLayer
	known := false

	if cmd, ok := domain.ParseCommand(name.String()); ok {
		layer = cmd.Default()
		known = true
	}
	if project, ok := r.project.Job(name.String()); ok {
		layer = layer.Merge(project)
		known = true
	}

	if name != r.target {
		return layer, known
	}

	layer = layer.Merge(r.overrides.Layer)
	if len(r.overrides.ExtraSteps) > 0 {
		layer.Steps = append(slices.Clone(layer.Steps), r.overrides.ExtraSteps...)
	}

	// An unknown target still runs when the command line names its executable.
	return layer, known || r.overrides.Layer.HasExecutable()
}

func resolveWorkingDir(baseDir, configured string) string {
	if configured == "" {
		return baseDir
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(baseDir, configured))
}
