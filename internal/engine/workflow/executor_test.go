package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/cargonode/internal/core/ports/mocks"
	"go.trai.ch/cargonode/internal/engine/workflow"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	executor      *workflow.Executor
	runner        *mocks.MockProcessRunner
	fingerprinter *mocks.MockFingerprinter
	cache         *mocks.MockResultCache
	reporter      *mocks.MockReporter
	telemetry     *mocks.MockTelemetry
	vertex        *mocks.MockVertex

	// fingerprints overrides the default "fp-<name>" fingerprint per job.
	fingerprints map[string]string
	// fingerprintErr makes every fingerprint computation fail.
	fingerprintErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		runner:        mocks.NewMockProcessRunner(ctrl),
		fingerprinter: mocks.NewMockFingerprinter(ctrl),
		cache:         mocks.NewMockResultCache(ctrl),
		reporter:      mocks.NewMockReporter(ctrl),
		telemetry:     mocks.NewMockTelemetry(ctrl),
		vertex:        mocks.NewMockVertex(ctrl),
		fingerprints:  map[string]string{},
	}

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	f.fingerprinter.EXPECT().Fingerprint(gomock.Any(), gomock.Any()).DoAndReturn(
		func(job *domain.JobSpec, _ []string) (string, error) {
			if f.fingerprintErr != nil {
				return "", f.fingerprintErr
			}
			if fp, ok := f.fingerprints[job.Name.String()]; ok {
				return fp, nil
			}
			return "fp-" + job.Name.String(), nil
		}).AnyTimes()

	f.reporter.EXPECT().StepStarted(gomock.Any(), gomock.Any()).AnyTimes()
	f.reporter.EXPECT().StepFinished(gomock.Any()).AnyTimes()
	f.telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, f.vertex
		}).AnyTimes()
	f.vertex.EXPECT().Complete(gomock.Any()).AnyTimes()

	f.executor = workflow.NewExecutor(f.runner, f.fingerprinter, f.reporter, f.telemetry, mockLogger)
	return f
}

// table builds a lookup over a static name -> steps table.
func table(jobs map[string][]string) domain.JobLookup {
	return func(name domain.InternedString) (*domain.JobSpec, error) {
		steps, ok := jobs[name.String()]
		if !ok {
			return nil, zerr.With(domain.ErrUnknownJob, "job", name.String())
		}
		return &domain.JobSpec{
			Name:       name,
			Executable: "npx",
			Subcommand: name.String(),
			Steps:      domain.NewInternedStrings(steps),
			Envs:       map[string]string{},
		}, nil
	}
}

// withInputs declares input patterns on every job the lookup returns.
func withInputs(lookup domain.JobLookup) domain.JobLookup {
	return func(name domain.InternedString) (*domain.JobSpec, error) {
		job, err := lookup(name)
		if err != nil {
			return nil, err
		}
		job.Inputs = []string{"src/**"}
		return job, nil
	}
}

func succeed(_ context.Context, job *domain.JobSpec, _ []string) (domain.ExecutionResult, error) {
	return domain.ExecutionResult{Name: job.Name}, nil
}

func exitWith(code int) func(context.Context, *domain.JobSpec, []string) (domain.ExecutionResult, error) {
	return func(_ context.Context, job *domain.JobSpec, _ []string) (domain.ExecutionResult, error) {
		err := errors.New("exit status")
		return domain.ExecutionResult{
				Name:   job.Name,
				Status: domain.ExitStatus{Kind: domain.StatusNonZeroExit, Code: code},
				Err:    err,
			}, &domain.Failure{
				Kind:     domain.FailureNonZeroExit,
				Step:     job.Name.String(),
				ExitCode: code,
				Err:      err,
			}
	}
}

var releaseChain = map[string][]string{
	"release": {"build"},
	"build":   {"check"},
	"check":   nil,
}

func TestExecute_RunsStepsInOrder(t *testing.T) {
	f := newFixture(t)

	var ran []string
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, job *domain.JobSpec, passthrough []string) (domain.ExecutionResult, error) {
			ran = append(ran, job.Name.String())
			return succeed(ctx, job, passthrough)
		}).Times(3)

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "release",
		Lookup: table(releaseChain),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"check", "build", "release"}, ran)
	assert.Equal(t, domain.RunSucceeded, run.State)
	assert.Len(t, run.Results, 3)

	for name, status := range f.executor.GetStepStatusMap() {
		assert.Equal(t, workflow.StatusSucceeded, status, name.String())
	}
}

func TestExecute_ShortCircuitsOnFirstFailure(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed),
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(exitWith(2)),
	)

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "release",
		Lookup: table(releaseChain),
	})
	require.Error(t, err)

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureNonZeroExit, failure.Kind)
	assert.Equal(t, "build", failure.Step)
	assert.Equal(t, 2, failure.ProcessExitCode())

	assert.Equal(t, domain.RunFailed, run.State)
	require.Len(t, run.Results, 2, "one result per attempted step")
	assert.True(t, run.Results[0].Status.Success())
	assert.Equal(t, domain.StatusNonZeroExit, run.Results[1].Status.Kind)
	assert.Equal(t, []string{"release"}, domain.Strings(run.NotAttempted()))

	statuses := f.executor.GetStepStatusMap()
	assert.Equal(t, workflow.StatusSucceeded, statuses[domain.NewInternedString("check")])
	assert.Equal(t, workflow.StatusFailed, statuses[domain.NewInternedString("build")])
	assert.Equal(t, workflow.StatusPending, statuses[domain.NewInternedString("release")])
}

func TestExecute_CycleLaunchesNothing(t *testing.T) {
	f := newFixture(t)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "A",
		Lookup: table(map[string][]string{"A": {"B"}, "B": {"A"}}),
	})

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureCycleDetected, failure.Kind)
	assert.Equal(t, domain.RunFailed, run.State)
	assert.Empty(t, run.Results)
}

func TestExecute_UnresolvableStepLaunchesNothing(t *testing.T) {
	f := newFixture(t)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "build",
		Lookup: table(map[string][]string{"build": {"missing"}}),
	})

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureConfiguration, failure.Kind)
	assert.Equal(t, domain.ExitCodeFailure, failure.ProcessExitCode())
}

func TestExecute_PassthroughOnlyReachesTarget(t *testing.T) {
	f := newFixture(t)

	got := map[string][]string{}
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, job *domain.JobSpec, passthrough []string) (domain.ExecutionResult, error) {
			got[job.Name.String()] = passthrough
			return succeed(ctx, job, passthrough)
		}).Times(2)

	_, err := f.executor.Execute(context.Background(), workflow.Request{
		Target:      "build",
		Lookup:      table(releaseChain),
		Passthrough: []string{"--minify"},
	})

	require.NoError(t, err)
	assert.Nil(t, got["check"])
	assert.Equal(t, []string{"--minify"}, got["build"])
}

func TestExecute_TargetOnlySkipsPrerequisites(t *testing.T) {
	f := newFixture(t)

	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), []string{"--help"}).DoAndReturn(
		func(ctx context.Context, job *domain.JobSpec, passthrough []string) (domain.ExecutionResult, error) {
			assert.Equal(t, "release", job.Name.String())
			return succeed(ctx, job, passthrough)
		})

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target:      "release",
		Lookup:      table(releaseChain),
		Passthrough: []string{"--help"},
		TargetOnly:  true,
	})

	require.NoError(t, err)
	assert.Len(t, run.Plan, 1)
	assert.Equal(t, domain.RunSucceeded, run.State)
}

func TestExecute_TargetOnlyStillValidatesGraph(t *testing.T) {
	f := newFixture(t)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := f.executor.Execute(context.Background(), workflow.Request{
		Target:     "A",
		Lookup:     table(map[string][]string{"A": {"A"}}),
		TargetOnly: true,
	})

	assert.Error(t, err)
}

func TestExecute_CancelledBeforeStep(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(c context.Context, job *domain.JobSpec, passthrough []string) (domain.ExecutionResult, error) {
			cancel()
			return succeed(c, job, passthrough)
		})

	run, err := f.executor.Execute(ctx, workflow.Request{
		Target: "build",
		Lookup: table(releaseChain),
	})

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureInterrupted, failure.Kind)
	assert.Equal(t, "build", failure.Step)
	assert.Equal(t, domain.ExitCodeInterrupted, failure.ProcessExitCode())
	assert.Equal(t, domain.RunFailed, run.State)
	assert.Len(t, run.Results, 1)
}

func TestExecute_UnclassifiedRunnerErrorIsLaunchFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ExecutionResult{}, errors.New("boom"))

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "check",
		Lookup: table(releaseChain),
	})

	var failure *domain.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, domain.FailureLaunch, failure.Kind)
	require.Len(t, run.Results, 1)
	assert.Equal(t, domain.StatusLaunchFailed, run.Results[0].Status.Kind)
	assert.Equal(t, "check", run.Results[0].Name.String())
}

func TestExecute_ReportsAndRecordsEveryAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)
	reporter := mocks.NewMockReporter(ctrl)
	telemetry := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	fingerprinter := mocks.NewMockFingerprinter(ctrl)
	fingerprinter.EXPECT().Fingerprint(gomock.Any(), gomock.Any()).Return("fp", nil).AnyTimes()
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	gomock.InOrder(
		reporter.EXPECT().StepStarted(gomock.Any(), []string{"npx", "check"}),
		telemetry.EXPECT().Record(gomock.Any(), "check").Return(context.Background(), vertex),
		runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(exitWith(1)),
		vertex.EXPECT().Complete(gomock.Not(gomock.Nil())),
		reporter.EXPECT().StepFinished(gomock.Any()),
	)

	executor := workflow.NewExecutor(runner, fingerprinter, reporter, telemetry, mockLogger)
	_, err := executor.Execute(context.Background(), workflow.Request{
		Target: "build",
		Lookup: table(releaseChain),
	})

	assert.Error(t, err)
}

func TestExecute_SkipsStepsWithUnchangedInputs(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get("check").Return(&domain.CacheEntry{Job: "check", Fingerprint: "fp-check"}, nil)
	f.cache.EXPECT().Get("build").Return(nil, nil)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, job *domain.JobSpec, passthrough []string) (domain.ExecutionResult, error) {
			assert.Equal(t, "build", job.Name.String())
			return succeed(ctx, job, passthrough)
		})
	f.cache.EXPECT().Put(gomock.Any()).DoAndReturn(func(entry domain.CacheEntry) error {
		assert.Equal(t, "build", entry.Job)
		assert.Equal(t, "fp-build", entry.Fingerprint)
		assert.Equal(t, []string{"npx", "build"}, entry.Command)
		assert.False(t, entry.Timestamp.IsZero())
		return nil
	})

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "build",
		Lookup: withInputs(table(releaseChain)),
		Cache:  f.cache,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, run.State)
	require.Len(t, run.Results, 2)
	assert.True(t, run.Results[0].Cached)
	assert.True(t, run.Results[0].Status.Success())
	assert.Equal(t, "fp-check", run.Results[0].Fingerprint)
	assert.False(t, run.Results[1].Cached)
	assert.Equal(t, "fp-build", run.Results[1].Fingerprint)

	statuses := f.executor.GetStepStatusMap()
	assert.Equal(t, workflow.StatusSucceeded, statuses[domain.NewInternedString("check")])
}

func TestExecute_RerunsStepWhenInputsChange(t *testing.T) {
	f := newFixture(t)
	f.fingerprints["check"] = "fp-after-edit"

	f.cache.EXPECT().Get("check").Return(&domain.CacheEntry{Job: "check", Fingerprint: "fp-before-edit"}, nil)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)
	f.cache.EXPECT().Put(gomock.Any()).DoAndReturn(func(entry domain.CacheEntry) error {
		assert.Equal(t, "fp-after-edit", entry.Fingerprint)
		return nil
	})

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "check",
		Lookup: withInputs(table(releaseChain)),
		Cache:  f.cache,
	})

	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.False(t, run.Results[0].Cached)
}

func TestExecute_ForceRunsAndRefreshesCache(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any()).Times(0)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)
	f.cache.EXPECT().Put(gomock.Any()).Return(nil)

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "check",
		Lookup: withInputs(table(releaseChain)),
		Cache:  f.cache,
		Force:  true,
	})

	require.NoError(t, err)
	assert.False(t, run.Results[0].Cached)
}

func TestExecute_FailedStepIsNotCached(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get("check").Return(nil, nil)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(exitWith(1))
	f.cache.EXPECT().Put(gomock.Any()).Times(0)

	_, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "check",
		Lookup: withInputs(table(releaseChain)),
		Cache:  f.cache,
	})

	assert.Error(t, err)
}

func TestExecute_CacheBypassed(t *testing.T) {
	tests := []struct {
		name           string
		lookup         domain.JobLookup
		targetOnly     bool
		fingerprintErr error
	}{
		{name: "job without inputs", lookup: table(releaseChain)},
		{name: "target only", lookup: withInputs(table(releaseChain)), targetOnly: true},
		{name: "fingerprint error", lookup: withInputs(table(releaseChain)), fingerprintErr: errors.New("unreadable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.fingerprintErr = tt.fingerprintErr

			f.cache.EXPECT().Get(gomock.Any()).Times(0)
			f.cache.EXPECT().Put(gomock.Any()).Times(0)
			f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)

			run, err := f.executor.Execute(context.Background(), workflow.Request{
				Target:     "check",
				Lookup:     tt.lookup,
				Cache:      f.cache,
				TargetOnly: tt.targetOnly,
			})

			require.NoError(t, err)
			assert.False(t, run.Results[0].Cached)
		})
	}
}

func TestExecute_CacheLookupErrorRunsStep(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get("check").Return(nil, errors.New("corrupt cache"))
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)
	f.cache.EXPECT().Put(gomock.Any()).Return(errors.New("read-only"))

	run, err := f.executor.Execute(context.Background(), workflow.Request{
		Target: "check",
		Lookup: withInputs(table(releaseChain)),
		Cache:  f.cache,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, run.State)
}
