package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cargonode/cmd/cargonode/commands"
	"go.trai.ch/cargonode/internal/build"
	"go.trai.ch/cargonode/internal/core/domain"
)

type mockApp struct {
	runFunc     func(ctx context.Context, job string, ov domain.Overrides) error
	journalFunc func(limit int) ([]domain.JournalEntry, error)
	clearFunc   func(job string) (int, error)
}

func (m *mockApp) Run(ctx context.Context, job string, ov domain.Overrides) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, job, ov)
	}
	return nil
}

func (m *mockApp) Journal(limit int) ([]domain.JournalEntry, error) {
	if m.journalFunc != nil {
		return m.journalFunc(limit)
	}
	return nil, nil
}

func (m *mockApp) ClearCache(job string) (int, error) {
	if m.clearFunc != nil {
		return m.clearFunc(job)
	}
	return 0, nil
}

type captured struct {
	called bool
	job    string
	ov     domain.Overrides
}

func capture(c *captured) *mockApp {
	return &mockApp{
		runFunc: func(_ context.Context, job string, ov domain.Overrides) error {
			c.called = true
			c.job = job
			c.ov = ov
			return nil
		},
	}
}

func execute(t *testing.T, app commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(app)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Builtin(t *testing.T) {
	t.Run("wires overrides and passthrough", func(t *testing.T) {
		var got captured
		_, err := execute(t, capture(&got), "build", "-x", "pnpm", "-e", "CI=1", "--", "--minify")

		require.NoError(t, err)
		assert.True(t, got.called)
		assert.Equal(t, "build", got.job)
		assert.Equal(t, "pnpm", *got.ov.Layer.Executable)
		assert.Equal(t, map[string]string{"CI": "1"}, got.ov.Layer.Envs)
		assert.Equal(t, []string{"--minify"}, got.ov.Passthrough)
	})

	t.Run("aliases", func(t *testing.T) {
		for alias, job := range map[string]string{"b": "build", "c": "check", "t": "test", "r": "run"} {
			var got captured
			_, err := execute(t, capture(&got), alias)

			require.NoError(t, err)
			assert.Equal(t, job, got.job, alias)
		}
	})

	t.Run("help flag reaches the tool", func(t *testing.T) {
		var got captured
		out, err := execute(t, capture(&got), "test", "--help")

		require.NoError(t, err)
		assert.True(t, got.called)
		assert.Equal(t, []string{"--help"}, got.ov.Passthrough)
		assert.NotContains(t, out, "Usage:")
	})

	t.Run("forwarder errors are configuration failures", func(t *testing.T) {
		var got captured
		_, err := execute(t, capture(&got), "fmt", "-e", "BROKEN")

		require.Error(t, err)
		assert.False(t, got.called)
		assert.Equal(t, domain.FailureConfiguration, domain.AsFailure(err).Kind)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		app := &mockApp{
			runFunc: func(_ context.Context, _ string, _ domain.Overrides) error {
				return errors.New("simulated error")
			},
		}

		_, err := execute(t, app, "release")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Job(t *testing.T) {
	var got captured
	_, err := execute(t, capture(&got), "job", "lint", "-v", "--", "--fix")

	require.NoError(t, err)
	assert.Equal(t, "lint", got.job)
	assert.Equal(t, 1, got.ov.Verbosity)
	assert.Equal(t, []string{"--fix"}, got.ov.Passthrough)
}

func TestCommands_Job_MissingName(t *testing.T) {
	var got captured
	_, err := execute(t, capture(&got), "job")

	require.Error(t, err)
	assert.False(t, got.called)
	assert.ErrorContains(t, err, "job name required")
}

func TestCommands_Journal(t *testing.T) {
	var limit int
	app := &mockApp{
		journalFunc: func(n int) ([]domain.JournalEntry, error) {
			limit = n
			return []domain.JournalEntry{{
				Job:       "build",
				Command:   []string{"npx", "tsup"},
				Status:    "succeeded",
				Duration:  1500 * time.Millisecond,
				Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			}}, nil
		},
	}

	out, err := execute(t, app, "journal", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, 3, limit)
	assert.Contains(t, out, "2026-03-01 12:00:00")
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "npx tsup")
}

func TestCommands_Journal_MarksCachedEntries(t *testing.T) {
	app := &mockApp{
		journalFunc: func(int) ([]domain.JournalEntry, error) {
			return []domain.JournalEntry{{Job: "check", Status: "succeeded", Cached: true}}, nil
		},
	}

	out, err := execute(t, app, "journal")

	require.NoError(t, err)
	assert.Contains(t, out, "succeeded (cached)")
}

func TestCommands_Journal_Clear(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantJob string
		wantOut string
	}{
		{name: "every job", args: []string{"journal", "--clear"}, wantOut: "Cleared 3 cache entries\n"},
		{
			name:    "one job",
			args:    []string{"journal", "--clear", "build"},
			wantJob: "build",
			wantOut: "Cleared 3 cache entries for job 'build'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := "unset"
			app := &mockApp{
				clearFunc: func(j string) (int, error) {
					job = j
					return 3, nil
				},
				journalFunc: func(int) ([]domain.JournalEntry, error) {
					t.Fatal("listing must not run when clearing")
					return nil, nil
				},
			}

			out, err := execute(t, app, tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.wantJob, job)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestCommands_Journal_ClearError(t *testing.T) {
	app := &mockApp{
		clearFunc: func(string) (int, error) { return 0, errors.New("permission denied") },
	}

	_, err := execute(t, app, "journal", "--clear")

	assert.ErrorContains(t, err, "permission denied")
}

func TestCommands_Journal_JobRequiresClear(t *testing.T) {
	_, err := execute(t, &mockApp{}, "journal", "build")

	assert.ErrorContains(t, err, "only accepted with --clear")
}

func TestCommands_Journal_Empty(t *testing.T) {
	out, err := execute(t, &mockApp{}, "journal")

	require.NoError(t, err)
	assert.Contains(t, out, "No executions recorded yet.")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")

	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}

func TestCommands_UnknownCommand(t *testing.T) {
	_, err := execute(t, &mockApp{}, "deploy")

	assert.Error(t, err)
}
