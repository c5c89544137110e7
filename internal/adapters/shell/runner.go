// Package shell provides the process runner adapter.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultWaitDelay bounds how long Wait blocks on open output pipes after the
// child has been killed.
const DefaultWaitDelay = 5 * time.Second

var _ ports.ProcessRunner = (*Runner)(nil)

// Runner implements ports.ProcessRunner using os/exec.
// Child stdio is inherited so tools keep their terminal behaviour.
type Runner struct {
	logger    ports.Logger
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	environ   func() []string
	waitDelay time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdio overrides the streams handed to child processes.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithEnviron overrides the base environment the job's envs are merged into.
func WithEnviron(environ func() []string) Option {
	return func(r *Runner) {
		r.environ = environ
	}
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// NewRunner creates a Runner wired to the current process's stdio and environment.
func NewRunner(logger ports.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:    logger,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		environ:   os.Environ,
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes `executable [subcommand] [args...] [passthrough...]` and waits for it.
// The child runs in its own process group; timeouts and interrupts kill the whole group.
// The job's envs are merged over the inherited environment (job wins).
// Launch problems (missing executable, permission denied, bad working directory)
// are reported as LaunchFailure before any process is created where possible.
func (r *Runner) Run(
	ctx context.Context,
	job *domain.JobSpec,
	passthrough []string,
) (domain.ExecutionResult, error) {
	res := domain.ExecutionResult{Name: job.Name}
	argv := job.Argv(passthrough)
	vertex, hasVertex := ports.VertexFromContext(ctx)
	if hasVertex {
		_, _ = fmt.Fprintf(vertex.Stdout(), "$ %s\n", strings.Join(argv, " "))
	}

	env := mergeEnvironment(r.environ(), job.Envs)

	dir, err := checkWorkingDir(job.WorkingDir)
	if err != nil {
		return r.launchFailure(ctx, res, err)
	}

	executable, err := resolveExecutable(argv[0], dir, env)
	if err != nil {
		return r.launchFailure(ctx, res, err)
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if job.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, executable, argv[1:]...) //nolint:gosec // user configured command

	// exec sets Args[0] to the resolved path; tools see the name they were invoked by.
	cmd.Args[0] = argv[0]
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.WaitDelay = r.waitDelay
	restore := isolate(cmd, r.stdin)
	defer restore()

	r.logger.Debug(fmt.Sprintf("launching %q in %q", argv, dir))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Duration = time.Since(start)
		return r.launchFailure(ctx, res, zerr.With(zerr.Wrap(err, domain.ErrLaunchFailed.Error()), "executable", argv[0]))
	}
	err = cmd.Wait()
	res.Duration = time.Since(start)

	return classify(ctx, runCtx, job, res, err)
}

func (r *Runner) launchFailure(
	ctx context.Context,
	res domain.ExecutionResult,
	err error,
) (domain.ExecutionResult, error) {
	if vertex, ok := ports.VertexFromContext(ctx); ok {
		_, _ = fmt.Fprintln(vertex.Stderr(), err.Error())
	}
	err = zerr.With(err, "job", res.Name.String())
	res.Status = domain.ExitStatus{Kind: domain.StatusLaunchFailed, Code: -1}
	res.Err = err
	return res, domain.NewFailure(domain.FailureLaunch, res.Name.String(), err)
}

func classify(
	ctx, runCtx context.Context,
	job *domain.JobSpec,
	res domain.ExecutionResult,
	waitErr error,
) (domain.ExecutionResult, error) {
	name := res.Name.String()

	if waitErr == nil {
		res.Status = domain.ExitStatus{Kind: domain.StatusSucceeded, Code: 0}
		return res, nil
	}

	code := -1
	signaled := false
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code = exitErr.ExitCode()
		signaled = interruptedBySignal(exitErr.ProcessState)
	}

	var err error
	switch {
	case ctx.Err() != nil, signaled && runCtx.Err() == nil:
		res.Status = domain.ExitStatus{Kind: domain.StatusInterrupted, Code: code}
		err = zerr.With(zerr.Wrap(waitErr, domain.ErrInterrupted.Error()), "job", name)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Status = domain.ExitStatus{Kind: domain.StatusTimedOut, Code: code}
		err = zerr.With(zerr.Wrap(waitErr, domain.ErrTimeoutExceeded.Error()), "timeout", job.Timeout.String())
	default:
		res.Status = domain.ExitStatus{Kind: domain.StatusNonZeroExit, Code: code}
		err = zerr.With(zerr.Wrap(waitErr, domain.ErrNonZeroExit.Error()), "exit_code", code)
	}

	res.Err = err
	return res, &domain.Failure{
		Kind:     domain.FailureKindOf(res.Status.Kind),
		Step:     name,
		ExitCode: code,
		Err:      err,
	}
}

// checkWorkingDir resolves dir against the invocation directory and verifies it is a directory.
func checkWorkingDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "path", dir)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", zerr.With(domain.ErrWorkingDirNotFound, "path", abs)
		}
		return "", zerr.With(zerr.Wrap(err, "failed to stat working directory"), "path", abs)
	}
	if !info.IsDir() {
		return "", zerr.With(domain.ErrWorkingDirNotDir, "path", abs)
	}

	return abs, nil
}

// mergeEnvironment overlays job envs onto the inherited environment.
// The result is sorted by key.
func mergeEnvironment(sysEnv []string, jobEnv map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(jobEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}
	maps.Copy(envMap, jobEnv)

	result := make([]string, 0, len(envMap))
	for _, k := range slices.Sorted(maps.Keys(envMap)) {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// resolveExecutable finds name on the merged PATH. Names containing a path
// separator are used as given and evaluated relative to dir by exec.
func resolveExecutable(name, dir string, env []string) (string, error) {
	if name == "" {
		return "", domain.ErrExecutableNotFound
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}
	return lookPath(name, dir, env)
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file, dir string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
		}
	}

	denied := ""
	for _, entry := range filepath.SplitList(path) {
		if entry == "" {
			// Unix shell semantics: path element "" means "."
			entry = "."
		}
		candidate := filepath.Join(entry, file)
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, candidate)
			if !filepath.IsAbs(candidate) {
				if abs, err := filepath.Abs(candidate); err == nil {
					candidate = abs
				}
			}
		}
		err := findExecutable(candidate)
		if err == nil {
			return candidate, nil
		}
		if errors.Is(err, iofs.ErrPermission) && denied == "" {
			denied = candidate
		}
	}

	if denied != "" {
		return "", zerr.With(zerr.Wrap(iofs.ErrPermission, domain.ErrLaunchFailed.Error()), "executable", denied)
	}
	return "", zerr.With(domain.ErrExecutableNotFound, "executable", file)
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	m := d.Mode()
	if m.IsDir() {
		return iofs.ErrNotExist
	}
	if m&0o111 != 0 {
		return nil
	}
	return iofs.ErrPermission
}
