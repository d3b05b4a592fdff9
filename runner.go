package ptest

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// ErrRunInProgress is the panic value raised when a run is started on a
// registry that is already being run, by any Runner.
var ErrRunInProgress = errors.New("ptest: run already in progress on this runner")

// Options configures a Runner. The zero value writes the text report to
// stdout and discards logs.
type Options struct {
	// Reporter receives run events. Nil means a TextReporter on Output.
	Reporter Reporter

	// Output receives test output written through T.Logf. Nil means stdout.
	Output io.Writer

	// Logger receives structured debug logs. Nil discards them.
	Logger *slog.Logger

	// IDs generates run identifiers. Nil means UUIDv7Generator.
	IDs IDGenerator

	// Trace captures the goroutine stack with every failure.
	Trace bool
}

// Runner executes registry entries sequentially. A Runner is not safe for
// concurrent use, and no run may start on a registry while another run over
// it is in progress.
type Runner struct {
	reg      *Registry
	reporter Reporter
	out      io.Writer
	logger   *slog.Logger
	ids      IDGenerator
	trace    bool
}

// NewRunner creates a runner over reg.
func NewRunner(reg *Registry, opts Options) *Runner {
	r := &Runner{
		reg:      reg,
		reporter: opts.Reporter,
		out:      opts.Output,
		logger:   opts.Logger,
		ids:      opts.IDs,
		trace:    opts.Trace,
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.reporter == nil {
		r.reporter = NewTextReporter(r.out, TextOptions{})
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.ids == nil {
		r.ids = UUIDv7Generator{}
	}
	return r
}

// RunAll runs every entry in registration order on the Default registry with
// default options.
func RunAll() Summary {
	return NewRunner(Default, Options{}).RunAll()
}

// RunMatching runs the entries of the Default registry whose name contains
// pattern, with default options.
func RunMatching(pattern string) Summary {
	return NewRunner(Default, Options{}).RunMatching(pattern)
}

// RunAll executes every entry in registration order.
func (r *Runner) RunAll() Summary {
	return r.run(r.reg.Entries(), RunInfo{})
}

// RunMatching executes, in registration order, only the entries whose name
// contains pattern (case-sensitive). Unmatched entries are skipped entirely.
//
// The run is OK when every matched entry succeeded; a pattern matching no
// entries yields an OK run.
func (r *Runner) RunMatching(pattern string) Summary {
	return r.run(r.reg.Match(pattern), RunInfo{Filter: pattern, Filtered: true})
}

func (r *Runner) run(entries []*Entry, info RunInfo) Summary {
	r.reg.begin()
	defer r.reg.end()

	info.ID = r.ids.Generate()
	info.Selected = len(entries)

	summary := Summary{
		RunID:    info.ID,
		Filter:   info.Filter,
		Filtered: info.Filtered,
		Results:  make([]TestResult, 0, len(entries)),
	}

	r.logger.Debug("run started",
		"run_id", info.ID,
		"filter", info.Filter,
		"selected", info.Selected,
	)
	r.reporter.RunStarted(info)

	for _, e := range entries {
		res := r.runEntry(e.index, e)
		summary.Run++
		if res.Passed() {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, res)
	}

	r.reporter.RunFinished(summary)
	r.logger.Debug("run finished",
		"run_id", summary.RunID,
		"run", summary.Run,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed(),
	)
	return summary
}

// runEntry drives one entry through fixture create, body and teardown.
func (r *Runner) runEntry(index int, e *Entry) TestResult {
	t := newT(index, e.Name, r.out, r.trace)
	res := TestResult{Index: index, Name: e.Name}

	r.reporter.TestStarted(index, e.Name)
	r.logger.Debug("test started", "test", e.Name, "index", index, "kind", e.Kind.String())

	status := StatusOK
	res.Failure = capture(t, func() {
		if e.bind != nil {
			e.bind(t)
		}
		status = e.body(t)
	})

	res.Message, res.HasMessage = t.Message()
	switch {
	case res.Failure != nil:
		res.Outcome = OutcomeRaised
	case status == StatusOK:
		res.Outcome = OutcomePassed
	case res.HasMessage:
		res.Status = status
		res.Outcome = OutcomeReturnedFail
	default:
		res.Status = status
		res.Outcome = OutcomeReturnedUncounted
	}

	// Teardown only runs over bound data: a create that aborted left nothing
	// to release.
	if e.teardown != nil && e.Bound() {
		res.TeardownFailure = capture(t, func() {
			e.teardown(t)
		})
	}

	r.reporter.TestFinished(res)
	r.logger.Debug("test finished",
		"test", e.Name,
		"index", index,
		"outcome", res.Outcome.String(),
		"teardown_failed", res.TeardownFailure != nil,
	)
	return res
}
