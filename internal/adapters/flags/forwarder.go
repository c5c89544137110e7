// Package flags separates cargonode's own override flags from the arguments
// forwarded to the delegated tool.
package flags

import (
	"io"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/pflag"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/zerr"
)

// Delimiter ends cargonode's own flags. It is consumed, not forwarded.
const Delimiter = "--"

type values struct {
	configFile string
	executable string
	subcommand string
	workingDir string
	args       []string
	envs       []string
	steps      []string
	timeout    time.Duration
	verbose    int
	force      bool
}

func newFlagSet(v *values) *pflag.FlagSet {
	fs := pflag.NewFlagSet("cargonode", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVarP(&v.configFile, "config-file", "c", "", "Path to the project configuration file")
	fs.StringVarP(&v.executable, "executable", "x", "", "Override the executable")
	fs.StringVarP(&v.subcommand, "subcommand", "s", "", "Override the subcommand")
	fs.StringArrayVarP(&v.args, "args", "a", nil, "Override the arguments (shell-split, repeatable)")
	fs.StringArrayVarP(&v.envs, "envs", "e", nil, "Set an environment variable as KEY=VALUE (repeatable)")
	fs.StringVarP(&v.workingDir, "working-dir", "w", "", "Run the job in this directory")
	fs.StringSliceVar(&v.steps, "steps", nil, "Extra steps to run before the job (comma separated, repeatable)")
	fs.DurationVarP(&v.timeout, "timeout", "t", 0, "Kill the job after this duration (0 disables)")
	fs.CountVarP(&v.verbose, "verbose", "v", "Increase log verbosity (repeatable)")
	fs.BoolVar(&v.force, "force", false, "Run every step even when its inputs are unchanged")

	return fs
}

// FlagSet returns a detached copy of the override flags, for help output.
func FlagSet() *pflag.FlagSet {
	return newFlagSet(&values{})
}

// Split partitions the raw arguments of a built-in job command into
// cargonode's overrides and the tool's passthrough arguments.
// Own flags end at the delimiter, at the first positional argument, at the
// first flag cargonode does not know, or at a help flag.
func Split(args []string) (domain.Overrides, error) {
	var v values
	fs := newFlagSet(&v)

	end, next := scan(fs, args)
	if err := parse(fs, args[:end]); err != nil {
		return domain.Overrides{}, err
	}
	return v.overrides(fs, args[next:])
}

// SplitJob is Split for custom jobs: the first positional argument names the job.
// Own flags may appear on either side of the name.
func SplitJob(args []string) (string, domain.Overrides, error) {
	var v values
	fs := newFlagSet(&v)

	end, next := scan(fs, args)
	if next != end || end == len(args) || isFlag(args[end]) {
		// A flag that swallowed the would-be name is the real problem.
		if err := parse(fs, args[:end]); err != nil {
			return "", domain.Overrides{}, err
		}
		return "", domain.Overrides{}, zerr.With(domain.ErrMissingJobName, "args", strings.Join(args, " "))
	}
	name := args[end]

	own := append(args[:end:end], args[end+1:]...)
	end2, next2 := scan(fs, own[end:])
	if err := parse(fs, own[:end+end2]); err != nil {
		return "", domain.Overrides{}, err
	}

	ov, err := v.overrides(fs, own[end+next2:])
	if err != nil {
		return "", domain.Overrides{}, err
	}
	return name, ov, nil
}

// scan returns the length of the leading run of own flags and the index where
// passthrough arguments start. They differ only when a delimiter was consumed.
func scan(fs *pflag.FlagSet, args []string) (end, next int) {
	i := 0
	for i < len(args) {
		tok := args[i]
		if tok == Delimiter {
			return i, i + 1
		}
		if !isFlag(tok) || domain.IsHelpFlag(tok) {
			return i, i
		}

		n, ok := consumes(fs, tok)
		if !ok {
			return i, i
		}
		if i+n > len(args) {
			// Let the parser report the missing value.
			return len(args), len(args)
		}
		i += n
	}
	return i, i
}

// consumes reports how many tokens an own flag occupies, or false when tok is
// not entirely made of cargonode flags.
func consumes(fs *pflag.FlagSet, tok string) (int, bool) {
	if strings.HasPrefix(tok, "--") {
		name, _, inline := strings.Cut(tok[2:], "=")
		f := fs.Lookup(name)
		if f == nil {
			return 0, false
		}
		if f.NoOptDefVal != "" || inline {
			return 1, true
		}
		return 2, true
	}

	group := tok[1:]
	for j := 0; j < len(group); j++ {
		f := fs.ShorthandLookup(group[j : j+1])
		if f == nil {
			return 0, false
		}
		if f.NoOptDefVal != "" {
			continue
		}
		if j+1 < len(group) {
			return 1, true
		}
		return 2, true
	}
	return 1, true
}

func isFlag(tok string) bool {
	return len(tok) > 1 && tok[0] == '-'
}

func parse(fs *pflag.FlagSet, own []string) error {
	if err := fs.Parse(own); err != nil {
		if strings.Contains(err.Error(), "needs an argument") {
			return zerr.With(domain.ErrMissingFlagValue, "flag", lastFlag(own))
		}
		return zerr.Wrap(err, "invalid flag")
	}
	return nil
}

func lastFlag(own []string) string {
	for i := len(own) - 1; i >= 0; i-- {
		if isFlag(own[i]) {
			return own[i]
		}
	}
	return ""
}

func (v *values) overrides(fs *pflag.FlagSet, passthrough []string) (domain.Overrides, error) {
	ov := domain.Overrides{
		ConfigFile:  v.configFile,
		Verbosity:   v.verbose,
		Force:       v.force,
		Passthrough: append([]string{}, passthrough...),
	}

	if fs.Changed("executable") {
		ov.Layer.Executable = domain.Ptr(v.executable)
	}
	if fs.Changed("subcommand") {
		ov.Layer.Subcommand = domain.Ptr(v.subcommand)
	}
	if fs.Changed("working-dir") {
		ov.Layer.WorkingDir = domain.Ptr(v.workingDir)
	}
	if fs.Changed("timeout") {
		ov.Layer.Timeout = domain.Ptr(v.timeout)
	}

	if fs.Changed("args") {
		ov.Layer.Args = []string{}
		for _, line := range v.args {
			words, err := shellwords.Parse(line)
			if err != nil {
				return domain.Overrides{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidArgs.Error()), "args", line)
			}
			ov.Layer.Args = append(ov.Layer.Args, words...)
		}
	}

	for _, kv := range v.envs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return domain.Overrides{}, zerr.With(domain.ErrInvalidEnv, "env", kv)
		}
		if ov.Layer.Envs == nil {
			ov.Layer.Envs = make(map[string]string, len(v.envs))
		}
		ov.Layer.Envs[key] = value
	}

	for _, step := range v.steps {
		if step = strings.TrimSpace(step); step != "" {
			ov.ExtraSteps = append(ov.ExtraSteps, step)
		}
	}

	return ov, nil
}
