// Package domain contains the core domain models and business logic for job resolution and step ordering.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// StepGraph expands a job and its transitive steps into an execution order.
// Edges are kept as an adjacency map keyed by job name; traversal state lives
// in a side table so jobs never reference each other directly.
type StepGraph struct {
	lookup JobLookup
	jobs   map[InternedString]*JobSpec
	edges  map[InternedString][]InternedString
	order  []InternedString
}

// NewStepGraph creates a StepGraph that resolves jobs through lookup.
func NewStepGraph(lookup JobLookup) *StepGraph {
	return &StepGraph{
		lookup: lookup,
		jobs:   make(map[InternedString]*JobSpec),
		edges:  make(map[InternedString][]InternedString),
	}
}

// Expand walks the steps of start depth-first and records a post-order,
// de-duplicated execution order ending with start.
// It fails with a ConfigurationError when a job cannot be resolved and with
// CycleDetected when a step leads back onto the current path.
func (g *StepGraph) Expand(start InternedString) error {
	g.order = g.order[:0]
	state := make(map[InternedString]visitState)
	var path []InternedString

	var visit func(name, requiredBy InternedString) error
	visit = func(name, requiredBy InternedString) error {
		state[name] = inProgress
		path = append(path, name)

		steps, err := g.resolve(name, requiredBy)
		if err != nil {
			return err
		}

		for _, step := range steps {
			switch state[step] {
			case inProgress:
				return buildCycleError(path, step)
			case unvisited:
				if err := visit(step, name); err != nil {
					return err
				}
			case done:
			}
		}

		state[name] = done
		path = path[:len(path)-1]
		g.order = append(g.order, name)
		return nil
	}

	return visit(start, InternedString{})
}

func (g *StepGraph) resolve(name, requiredBy InternedString) ([]InternedString, error) {
	if steps, ok := g.edges[name]; ok {
		return steps, nil
	}

	job, err := g.lookup(name)
	if err != nil {
		if requiredBy.String() == "" {
			return nil, NewFailure(FailureConfiguration, name.String(), err)
		}
		return nil, NewFailure(FailureConfiguration, name.String(), zerr.With(
			zerr.With(zerr.Wrap(err, ErrUnresolvableStep.Error()), "step", name.String()),
			"required_by", requiredBy.String(),
		))
	}

	g.jobs[name] = job
	g.edges[name] = job.Steps
	return job.Steps, nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []InternedString, closing InternedString) error {
	start := 0
	for i, node := range path {
		if node == closing {
			start = i
			break
		}
	}

	names := make([]string, 0, len(path)-start+1)
	for _, node := range path[start:] {
		names = append(names, node.String())
	}
	names = append(names, closing.String())

	err := zerr.With(ErrCycleDetected, "cycle", strings.Join(names, " -> "))
	return NewFailure(FailureCycleDetected, closing.String(), err)
}

// Order returns the execution order computed by the last successful Expand.
func (g *StepGraph) Order() []InternedString {
	out := make([]InternedString, len(g.order))
	copy(out, g.order)
	return out
}

// Job returns the resolved job for name, if Expand reached it.
func (g *StepGraph) Job(name InternedString) (*JobSpec, bool) {
	job, ok := g.jobs[name]
	return job, ok
}

// Walk returns an iterator that yields jobs in execution order.
// It assumes Expand has been called and returned nil.
func (g *StepGraph) Walk() iter.Seq[*JobSpec] {
	return func(yield func(*JobSpec) bool) {
		for _, name := range g.order {
			if !yield(g.jobs[name]) {
				return
			}
		}
	}
}
