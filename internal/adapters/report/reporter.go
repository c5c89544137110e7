// Package report prints step banners and the run summary to the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/cargonode/internal/core/ports"
)

// Icons.
const (
	Check  = "✓"
	Cross  = "✗"
	Circle = "○"
)

var _ ports.Reporter = (*Reporter)(nil)

// Reporter implements ports.Reporter with plain, line-oriented output.
type Reporter struct {
	w      io.Writer
	output *termenv.Output
	mu     sync.Mutex
}

// NewReporter creates a Reporter writing to w, or stderr when w is nil.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stderr
	}
	return &Reporter{
		w:      w,
		output: termenv.NewOutput(w, termenv.WithProfile(colorProfile())),
	}
}

// colorProfile returns the color profile based on environment.
func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

func (r *Reporter) prefix(name string) string {
	return r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
}

// StepStarted prints the command line about to run.
func (r *Reporter) StepStarted(job *domain.JobSpec, argv []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.w, "%s Running `%s`\n", r.prefix(job.Name.String()), strings.Join(argv, " "))
}

// StepFinished prints the outcome of one step.
func (r *Reporter) StepFinished(res domain.ExecutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := r.prefix(res.Name.String())
	duration := res.Duration.Round(time.Millisecond)
	if res.Cached {
		symbol := r.output.String(Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.w, "%s %s Cached (inputs unchanged)\n", prefix, symbol)
		return
	}
	if res.Status.Success() {
		symbol := r.output.String(Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.w, "%s %s Completed in %v\n", prefix, symbol, duration)
		return
	}

	symbol := r.output.String(Cross).Foreground(termenv.ANSIRed).String()
	_, _ = fmt.Fprintf(r.w, "%s %s Failed after %v: %s\n", prefix, symbol, duration, describe(res))
}

// Summary lists every planned step. Single-step runs that succeeded print nothing.
func (r *Reporter) Summary(run *domain.Run) {
	if run == nil || len(run.Plan) == 0 {
		return
	}
	if len(run.Plan) == 1 && run.State == domain.RunSucceeded {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintln(r.w, r.output.String("Summary:").Bold().String())
	for _, res := range run.Results {
		if res.Cached {
			symbol := r.output.String(Check).Foreground(termenv.ANSIGreen).String()
			_, _ = fmt.Fprintf(r.w, "  %s %s %s\n", symbol, res.Name, r.output.String("(cached)").Faint().String())
			continue
		}
		if res.Status.Success() {
			symbol := r.output.String(Check).Foreground(termenv.ANSIGreen).String()
			_, _ = fmt.Fprintf(r.w, "  %s %s (%v)\n", symbol, res.Name, res.Duration.Round(time.Millisecond))
			continue
		}
		symbol := r.output.String(Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.w, "  %s %s: %s\n", symbol, res.Name, describe(res))
	}
	for _, name := range run.NotAttempted() {
		symbol := r.output.String(Circle).Faint().String()
		_, _ = fmt.Fprintf(r.w, "  %s %s %s\n", symbol, name, r.output.String("(not run)").Faint().String())
	}
}

func describe(res domain.ExecutionResult) string {
	switch res.Status.Kind {
	case domain.StatusNonZeroExit:
		if res.Status.Code >= 0 {
			return fmt.Sprintf("%s (exit code %d)", res.Status.Kind, res.Status.Code)
		}
		return res.Status.Kind.String()
	case domain.StatusLaunchFailed, domain.StatusTimedOut, domain.StatusInterrupted:
		if res.Err != nil {
			return fmt.Sprintf("%s: %v", res.Status.Kind, res.Err)
		}
		return res.Status.Kind.String()
	case domain.StatusSucceeded:
		return res.Status.Kind.String()
	default:
		return res.Status.Kind.String()
	}
}
