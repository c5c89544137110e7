// Package app implements the application layer for cargonode.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/cargonode/internal/engine/resolver"
	"go.trai.ch/cargonode/internal/engine/workflow"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     *workflow.Executor
	journals     ports.JournalFactory
	caches       ports.ResultCacheFactory
	reporter     ports.Reporter
	logger       ports.Logger
	workDir      string
	now          func() time.Time
}

// New creates a new App instance. The journal and result cache are opened
// under the invocation directory on each call.
func New(
	loader ports.ConfigLoader,
	executor *workflow.Executor,
	journals ports.JournalFactory,
	caches ports.ResultCacheFactory,
	reporter ports.Reporter,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		journals:     journals,
		caches:       caches,
		reporter:     reporter,
		logger:       logger,
		now:          time.Now,
	}
}

// WithWorkDir sets the invocation directory. It defaults to the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithClock sets the clock used to timestamp journal entries.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// Run resolves job, runs it with its prerequisite steps and reports the outcome.
// Any returned error is a *domain.Failure.
func (a *App) Run(ctx context.Context, job string, ov domain.Overrides) error {
	a.logger.SetVerbosity(ov.Verbosity)

	cwd, err := a.resolveWorkDir()
	if err != nil {
		return domain.NewFailure(domain.FailureConfiguration, "", err)
	}

	project, err := a.configLoader.Load(cwd, ov.ConfigFile)
	if err != nil {
		return domain.NewFailure(domain.FailureConfiguration, "", zerr.Wrap(err, "failed to load configuration"))
	}
	if project.Source != "" {
		a.logger.Info(fmt.Sprintf("loaded configuration from %s", project.Source))
	}

	res := resolver.New(project, job, ov, cwd)
	run, runErr := a.executor.Execute(ctx, workflow.Request{
		Target:      job,
		Lookup:      res.Lookup(),
		Passthrough: ov.Passthrough,
		TargetOnly:  domain.RequestsHelp(ov.Passthrough),
		Cache:       a.caches(cwd),
		Force:       ov.Force,
	})

	a.record(a.journals(cwd), run)
	a.reporter.Summary(run)

	return runErr
}

// Journal returns up to limit of the most recent journal entries.
func (a *App) Journal(limit int) ([]domain.JournalEntry, error) {
	cwd, err := a.resolveWorkDir()
	if err != nil {
		return nil, err
	}

	entries, err := a.journals(cwd).Recent(limit)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read journal")
	}
	return entries, nil
}

// ClearCache forgets the cached result of job, or of every job when job is
// empty, and returns how many entries were removed.
func (a *App) ClearCache(job string) (int, error) {
	cwd, err := a.resolveWorkDir()
	if err != nil {
		return 0, err
	}

	n, err := a.caches(cwd).Clear(job)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to clear cache")
	}
	return n, nil
}

func (a *App) resolveWorkDir() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to get working directory")
	}
	return cwd, nil
}

// record appends one journal entry per attempted step. Journal failures never fail the run.
func (a *App) record(journal ports.Journal, run *domain.Run) {
	if run == nil || len(run.Results) == 0 {
		return
	}

	at := a.now()
	entries := make([]domain.JournalEntry, 0, len(run.Results))
	for i, res := range run.Results {
		entries = append(entries, domain.NewJournalEntry(res, run.ArgvFor(run.Plan[i]), at))
	}

	if err := journal.Append(entries); err != nil {
		a.logger.Warn(fmt.Sprintf("failed to update journal: %v", err))
	}
}
