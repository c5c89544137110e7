package flags_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cargonode/internal/adapters/flags"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestSplit_NoArguments(t *testing.T) {
	ov, err := flags.Split(nil)

	require.NoError(t, err)
	assert.Empty(t, ov.Passthrough)
	assert.Nil(t, ov.Layer.Executable)
	assert.Nil(t, ov.Layer.Args)
	assert.Zero(t, ov.Verbosity)
}

func TestSplit_OwnFlags(t *testing.T) {
	ov, err := flags.Split([]string{
		"-c", "ci.toml",
		"-x", "pnpm",
		"--subcommand=tsup",
		"-a", "--format 'esm cjs'",
		"-a", "--dts",
		"-e", "NODE_ENV=production",
		"--envs", "EMPTY=",
		"-w", "packages/web",
		"--steps", "lint,docs",
		"--steps", "check",
		"-t", "90s",
		"-vv",
	})
	require.NoError(t, err)

	assert.Equal(t, "ci.toml", ov.ConfigFile)
	assert.Equal(t, "pnpm", *ov.Layer.Executable)
	assert.Equal(t, "tsup", *ov.Layer.Subcommand)
	assert.Equal(t, []string{"--format", "esm cjs", "--dts"}, ov.Layer.Args)
	assert.Equal(t, map[string]string{"NODE_ENV": "production", "EMPTY": ""}, ov.Layer.Envs)
	assert.Equal(t, "packages/web", *ov.Layer.WorkingDir)
	assert.Equal(t, []string{"lint", "docs", "check"}, ov.ExtraSteps)
	assert.Equal(t, 90*time.Second, *ov.Layer.Timeout)
	assert.Equal(t, 2, ov.Verbosity)
	assert.Empty(t, ov.Passthrough)
}

func TestSplit_Force(t *testing.T) {
	ov, err := flags.Split([]string{"--force", "--watch"})

	require.NoError(t, err)
	assert.True(t, ov.Force)
	assert.Equal(t, []string{"--watch"}, ov.Passthrough)

	ov, err = flags.Split([]string{"--", "--force"})

	require.NoError(t, err)
	assert.False(t, ov.Force)
	assert.Equal(t, []string{"--force"}, ov.Passthrough)
}

func TestSplit_DelimiterIsConsumed(t *testing.T) {
	ov, err := flags.Split([]string{"-v", "--", "-x", "--watch"})

	require.NoError(t, err)
	assert.Equal(t, 1, ov.Verbosity)
	assert.Nil(t, ov.Layer.Executable, "flags after the delimiter belong to the tool")
	assert.Equal(t, []string{"-x", "--watch"}, ov.Passthrough)
}

func TestSplit_PositionalStartsPassthrough(t *testing.T) {
	ov, err := flags.Split([]string{"-x", "node", "server.js", "-v", "--port", "3000"})

	require.NoError(t, err)
	assert.Equal(t, "node", *ov.Layer.Executable)
	assert.Zero(t, ov.Verbosity)
	assert.Equal(t, []string{"server.js", "-v", "--port", "3000"}, ov.Passthrough)
}

func TestSplit_UnknownFlagStartsPassthrough(t *testing.T) {
	ov, err := flags.Split([]string{"--minify", "-x", "other"})

	require.NoError(t, err)
	assert.Nil(t, ov.Layer.Executable)
	assert.Equal(t, []string{"--minify", "-x", "other"}, ov.Passthrough)
}

func TestSplit_UnknownShorthandGroupIsForwardedWhole(t *testing.T) {
	ov, err := flags.Split([]string{"-vq"})

	require.NoError(t, err)
	assert.Zero(t, ov.Verbosity)
	assert.Equal(t, []string{"-vq"}, ov.Passthrough)
}

func TestSplit_HelpIsForwarded(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"short", []string{"-h"}, []string{"-h"}},
		{"long", []string{"-v", "--help"}, []string{"--help"}},
		{"help token", []string{"help"}, []string{"help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov, err := flags.Split(tt.args)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ov.Passthrough)
			assert.True(t, domain.RequestsHelp(ov.Passthrough))
		})
	}
}

func TestSplit_PreservesPassthroughOrder(t *testing.T) {
	args := []string{"--", "b", "--", "a", "-c"}

	ov, err := flags.Split(args)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "--", "a", "-c"}, ov.Passthrough)
}

func TestSplit_InlineShorthandValue(t *testing.T) {
	ov, err := flags.Split([]string{"-vxbun", "run"})

	require.NoError(t, err)
	assert.Equal(t, 1, ov.Verbosity)
	assert.Equal(t, "bun", *ov.Layer.Executable)
	assert.Equal(t, []string{"run"}, ov.Passthrough)
}

func TestSplit_EmptyArgsClears(t *testing.T) {
	ov, err := flags.Split([]string{"--args", ""})

	require.NoError(t, err)
	assert.NotNil(t, ov.Layer.Args)
	assert.Empty(t, ov.Layer.Args)
}

func TestSplit_ExplicitEmptySubcommand(t *testing.T) {
	ov, err := flags.Split([]string{"-s", ""})

	require.NoError(t, err)
	require.NotNil(t, ov.Layer.Subcommand)
	assert.Empty(t, *ov.Layer.Subcommand)
}

func TestSplit_MissingFlagValue(t *testing.T) {
	_, err := flags.Split([]string{"-v", "--executable"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "flag needs an argument")
}

func TestSplit_InvalidEnv(t *testing.T) {
	for _, kv := range []string{"NOEQUALS", "=value"} {
		_, err := flags.Split([]string{"-e", kv})
		require.Error(t, err, kv)

		zErr, ok := err.(*zerr.Error)
		require.True(t, ok, "expected *zerr.Error, got %T", err)
		assert.Equal(t, kv, zErr.Metadata()["env"])
	}
}

func TestSplit_UnbalancedArgsQuote(t *testing.T) {
	_, err := flags.Split([]string{"-a", "--name 'oops"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid args override")
}

func TestSplit_InvalidTimeout(t *testing.T) {
	_, err := flags.Split([]string{"--timeout", "soon"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid flag")
}

func TestSplitJob(t *testing.T) {
	name, ov, err := flags.SplitJob([]string{"-v", "lint", "-x", "eslint", "--", "--fix", "."})

	require.NoError(t, err)
	assert.Equal(t, "lint", name)
	assert.Equal(t, 1, ov.Verbosity)
	assert.Equal(t, "eslint", *ov.Layer.Executable)
	assert.Equal(t, []string{"--fix", "."}, ov.Passthrough)
}

func TestSplitJob_PassthroughAfterName(t *testing.T) {
	name, ov, err := flags.SplitJob([]string{"docs", "serve", "-v"})

	require.NoError(t, err)
	assert.Equal(t, "docs", name)
	assert.Zero(t, ov.Verbosity)
	assert.Equal(t, []string{"serve", "-v"}, ov.Passthrough)
}

func TestSplitJob_MissingName(t *testing.T) {
	for _, args := range [][]string{nil, {"-v"}, {"--", "lint"}, {"--help"}} {
		_, _, err := flags.SplitJob(args)
		assert.ErrorContains(t, err, "job name required", "%v", args)
	}
}

func TestSplitJob_MissingFlagValueWinsOverMissingName(t *testing.T) {
	for _, args := range [][]string{{"-c"}, {"-v", "--executable"}} {
		_, _, err := flags.SplitJob(args)
		require.Error(t, err, "%v", args)
		assert.ErrorContains(t, err, "flag needs an argument", "%v", args)
		assert.NotContains(t, err.Error(), "job name required", "%v", args)

		zErr, ok := err.(*zerr.Error)
		require.True(t, ok, "expected *zerr.Error, got %T", err)
		assert.Equal(t, args[len(args)-1], zErr.Metadata()["flag"])
	}
}

func TestFlagSet_ListsOverrides(t *testing.T) {
	fs := flags.FlagSet()

	for _, name := range []string{"config-file", "executable", "subcommand", "args", "envs", "working-dir", "steps", "timeout", "verbose", "force"} {
		assert.NotNil(t, fs.Lookup(name), name)
	}
	assert.Nil(t, fs.Lookup("help"))
}
