package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/zerr"
)

// tableLookup builds a lookup over a static name -> steps table.
func tableLookup(table map[string][]string) (domain.JobLookup, *[]string) {
	var calls []string
	return func(name domain.InternedString) (*domain.JobSpec, error) {
		calls = append(calls, name.String())
		steps, ok := table[name.String()]
		if !ok {
			return nil, zerr.With(domain.ErrUnknownJob, "job", name.String())
		}
		return &domain.JobSpec{
			Name:       name,
			Executable: "true",
			Steps:      domain.NewInternedStrings(steps),
		}, nil
	}, &calls
}

func expand(t *testing.T, table map[string][]string, start string) ([]string, error) {
	t.Helper()
	lookup, _ := tableLookup(table)
	g := domain.NewStepGraph(lookup)
	if err := g.Expand(domain.NewInternedString(start)); err != nil {
		return nil, err
	}
	return domain.Strings(g.Order()), nil
}

func TestStepGraph_Expand_PrerequisitesFirst(t *testing.T) {
	order, err := expand(t, map[string][]string{
		"A": {"B", "C"},
		"C": {"B"},
		"B": nil,
	}, "A")

	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, order)
}

func TestStepGraph_Expand_DiamondEmitsSharedStepOnce(t *testing.T) {
	lookup, calls := tableLookup(map[string][]string{
		"R": {"X", "Y"},
		"X": {"Z"},
		"Y": {"Z"},
		"Z": nil,
	})
	g := domain.NewStepGraph(lookup)

	require.NoError(t, g.Expand(domain.NewInternedString("R")))
	assert.Equal(t, []string{"Z", "X", "Y", "R"}, domain.Strings(g.Order()))
	assert.Equal(t, 1, countOf(*calls, "Z"), "shared step must be resolved once")
}

func TestStepGraph_Expand_PreservesDeclaredOrder(t *testing.T) {
	order, err := expand(t, map[string][]string{
		"release": {"lint", "build", "docs"},
		"lint":    nil,
		"build":   nil,
		"docs":    nil,
	}, "release")

	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "build", "docs", "release"}, order)
}

func TestStepGraph_Expand_SingleJob(t *testing.T) {
	order, err := expand(t, map[string][]string{"fmt": nil}, "fmt")

	require.NoError(t, err)
	assert.Equal(t, []string{"fmt"}, order)
}

func TestStepGraph_Expand_DuplicateStepInList(t *testing.T) {
	order, err := expand(t, map[string][]string{
		"build": {"check", "check"},
		"check": nil,
	}, "build")

	require.NoError(t, err)
	assert.Equal(t, []string{"check", "build"}, order)
}

func TestStepGraph_Expand_Cycle(t *testing.T) {
	_, err := expand(t, map[string][]string{
		"A": {"B"},
		"B": {"A"},
	}, "A")
	require.Error(t, err)

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureCycleDetected, failure.Kind)

	zErr, ok := failure.Err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", failure.Err)
	assert.Equal(t, "A -> B -> A", zErr.Metadata()["cycle"])
}

func TestStepGraph_Expand_CycleReportsOnlyParticipants(t *testing.T) {
	_, err := expand(t, map[string][]string{
		"release": {"build"},
		"build":   {"check"},
		"check":   {"lint"},
		"lint":    {"build"},
	}, "release")
	require.Error(t, err)

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	zErr, ok := failure.Err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "build -> check -> lint -> build", zErr.Metadata()["cycle"])
}

func TestStepGraph_Expand_SelfLoop(t *testing.T) {
	_, err := expand(t, map[string][]string{"A": {"A"}}, "A")

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureCycleDetected, failure.Kind)
}

func TestStepGraph_Expand_UnresolvableStep(t *testing.T) {
	_, err := expand(t, map[string][]string{"build": {"missing"}}, "build")
	require.Error(t, err)

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureConfiguration, failure.Kind)
	assert.Equal(t, "missing", failure.Step)

	zErr, ok := failure.Err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "missing", zErr.Metadata()["step"])
	assert.Equal(t, "build", zErr.Metadata()["required_by"])
}

func TestStepGraph_Expand_UnresolvableStart(t *testing.T) {
	_, err := expand(t, map[string][]string{}, "nope")

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureConfiguration, failure.Kind)
	assert.ErrorContains(t, err, "unknown job")
}

func TestStepGraph_Walk(t *testing.T) {
	lookup, _ := tableLookup(map[string][]string{
		"test":  {"check"},
		"check": nil,
	})
	g := domain.NewStepGraph(lookup)
	require.NoError(t, g.Expand(domain.NewInternedString("test")))

	var names []string
	for job := range g.Walk() {
		names = append(names, job.Name.String())
	}
	assert.Equal(t, []string{"check", "test"}, names)

	job, ok := g.Job(domain.NewInternedString("check"))
	require.True(t, ok)
	assert.Equal(t, "true", job.Executable)
}

func countOf(ss []string, s string) int {
	n := 0
	for _, v := range ss {
		if v == s {
			n++
		}
	}
	return n
}
