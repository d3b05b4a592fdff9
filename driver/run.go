package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/ptest"
	"github.com/roach88/ptest/internal/history"
)

func runTests(reg *ptest.Registry, opts *RootOptions, prog Options, args []string, cmd *cobra.Command) error {
	filter, filtered := opts.Filter, opts.Filter != ""
	if len(args) == 1 {
		filter, filtered = args[0], true
	}

	jsonMode := opts.Format == "json"
	stdout := cmd.OutOrStdout()

	// Test bodies write to stdout in text mode; in JSON mode stdout carries
	// only the response.
	testOut := stdout
	if jsonMode {
		testOut = cmd.ErrOrStderr()
	}

	var reporters ptest.MultiReporter
	if !jsonMode {
		if prog.Banner != "" {
			fmt.Fprint(stdout, prog.Banner)
		}
		if filtered {
			fmt.Fprintf(stdout, "Running all tests containing \"%s\"...\n\n", filter)
		}
		reporters = append(reporters, ptest.NewTextReporter(stdout, ptest.TextOptions{NoColor: opts.NoColor}))
	} else {
		reporters = append(reporters, announcer{w: testOut})
	}

	var rec *history.Recorder
	if opts.History != "" {
		st, err := history.Open(opts.History)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				opts.Logger.Error("error closing history database", "error", closeErr)
			}
		}()

		var seq history.SeqSource
		if prog.Seq != nil {
			seq = prog.Seq
		}
		rec, err = history.NewRecorder(commandContext(cmd), st, seq, opts.Logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start history recorder", err)
		}
		reporters = append(reporters, rec)
		opts.Logger.Debug("recording history", "path", opts.History)
	}

	runner := ptest.NewRunner(reg, ptest.Options{
		Reporter: reporters,
		Output:   testOut,
		Logger:   opts.Logger,
		IDs:      prog.IDs,
		Trace:    opts.Trace,
	})

	var summary ptest.Summary
	if filtered {
		summary = runner.RunMatching(filter)
	} else {
		summary = runner.RunAll()
	}

	if rec != nil && rec.Err() != nil {
		opts.Logger.Warn("run history incomplete", "run_id", summary.RunID, "error", rec.Err())
	}

	if jsonMode {
		if err := outputSummaryJSON(opts.formatter(cmd), summary); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
	}

	if !summary.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d test(s) failed", summary.Failed()))
	}
	return nil
}

// announcer names each test on w before it runs, so a crash in JSON mode can
// still be attributed from the diagnostic stream.
type announcer struct {
	w io.Writer
}

func (a announcer) RunStarted(ptest.RunInfo) {}

func (a announcer) TestStarted(index int, name string) {
	fmt.Fprintf(a.w, "[Test: %s]\n", name)
}

func (a announcer) TestFinished(ptest.TestResult) {}

func (a announcer) RunFinished(ptest.Summary) {}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// outputSummaryJSON writes the run summary as a CLIResponse.
func outputSummaryJSON(f *OutputFormatter, s ptest.Summary) error {
	resp := CLIResponse{Status: "ok", Data: summaryObject(s)}
	if !s.OK() {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    CodeTestFailed,
			Message: fmt.Sprintf("%d test(s) failed", s.Failed()),
		}
	}
	return f.Encode(resp)
}

func summaryObject(s ptest.Summary) map[string]any {
	results := make([]any, len(s.Results))
	for i, r := range s.Results {
		results[i] = resultObject(r)
	}
	obj := map[string]any{
		"run_id":    s.RunID,
		"filtered":  s.Filtered,
		"run":       s.Run,
		"succeeded": s.Succeeded,
		"failed":    s.Failed(),
		"results":   results,
	}
	if s.Filtered {
		obj["filter"] = s.Filter
	}
	return obj
}

func resultObject(r ptest.TestResult) map[string]any {
	obj := map[string]any{
		"index":   r.Index,
		"name":    r.Name,
		"outcome": r.Outcome.String(),
		"passed":  r.Passed(),
		"status":  r.Status,
	}
	if r.HasMessage {
		obj["message"] = r.Message
	}
	if r.Failure != nil {
		obj["failure"] = history.FailureFields(r.Failure)
	}
	if r.TeardownFailure != nil {
		obj["teardown_failure"] = history.FailureFields(r.TeardownFailure)
	}
	return obj
}

