package driver

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ptest/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	Test  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded in the history database.

Without arguments, the most recent runs are listed. With a run ID, the
per-test results of that run are shown. With --test, the recorded results of
one test across runs are shown.

Examples:
  ptest history --history ./ptest.db
  ptest history --history ./ptest.db 0190a3c2-...
  ptest history --history ./ptest.db --test FileIO`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of rows to show (0 for all)")
	cmd.Flags().StringVar(&opts.Test, "test", "", "show results of one test across runs")

	return cmd
}

func showHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if opts.History == "" {
		return commandError(f, CodeInvalidInput,
			"no history database configured (use --history or set history in the config file)", nil)
	}
	if len(args) == 1 && opts.Test != "" {
		return commandError(f, CodeInvalidInput, "a run ID and --test cannot be combined", nil)
	}

	st, err := history.Open(opts.History)
	if err != nil {
		return commandError(f, CodeHistory, "failed to open history database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger.Error("error closing history database", "error", closeErr)
		}
	}()

	ctx := commandContext(cmd)
	switch {
	case len(args) == 1:
		run, err := st.ReadRun(ctx, args[0])
		if errors.Is(err, sql.ErrNoRows) {
			return commandError(f, CodeNotFound, fmt.Sprintf("run not found: %s", args[0]), nil)
		}
		if err != nil {
			return commandError(f, CodeHistory, "failed to read run", err)
		}
		results, err := st.ReadResults(ctx, run.ID)
		if err != nil {
			return commandError(f, CodeHistory, "failed to read results", err)
		}
		return outputRun(f, run, results)

	case opts.Test != "":
		results, err := st.ReadTestHistory(ctx, opts.Test, opts.Limit)
		if err != nil {
			return commandError(f, CodeHistory, "failed to read test history", err)
		}
		return outputTestHistory(f, opts.Test, results)

	default:
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return commandError(f, CodeHistory, "failed to list runs", err)
		}
		return outputRuns(f, runs)
	}
}

// commandError reports a command error. In JSON mode the error response goes
// to stdout; the returned error is printed to stderr by Execute either way.
func commandError(f *OutputFormatter, code, message string, err error) error {
	if f.Format == "json" {
		var details any
		if err != nil {
			details = err.Error()
		}
		_ = f.Error(code, message, details)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, message, err)
	}
	return NewExitError(ExitCommandError, message)
}

func outputRuns(f *OutputFormatter, runs []history.Run) error {
	if f.Format == "json" {
		items := make([]any, len(runs))
		for i, r := range runs {
			items[i] = runObject(r)
		}
		return f.Success(map[string]any{"runs": items})
	}

	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintln(f.Writer, runLine(r))
	}
	return nil
}

func outputRun(f *OutputFormatter, run history.Run, results []history.Result) error {
	if f.Format == "json" {
		obj := runObject(run)
		items := make([]any, len(results))
		for i, r := range results {
			items[i] = storedResultObject(r)
		}
		obj["results"] = items
		return f.Success(obj)
	}

	fmt.Fprintln(f.Writer, runLine(run))
	fmt.Fprintln(f.Writer)
	for _, r := range results {
		fmt.Fprintln(f.Writer, resultLine(r, false))
	}
	return nil
}

func outputTestHistory(f *OutputFormatter, name string, results []history.Result) error {
	if f.Format == "json" {
		items := make([]any, len(results))
		for i, r := range results {
			items[i] = storedResultObject(r)
		}
		return f.Success(map[string]any{"test": name, "results": items})
	}

	if len(results) == 0 {
		fmt.Fprintf(f.Writer, "No results recorded for %s.\n", name)
		return nil
	}
	for _, r := range results {
		fmt.Fprintln(f.Writer, resultLine(r, true))
	}
	return nil
}

func runLine(r history.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  run=%d succeeded=%d failed=%d", r.ID, r.Run, r.Succeeded, r.Failed())
	if r.Filtered {
		fmt.Fprintf(&b, "  filter=%q", r.Filter)
	}
	if !r.Finished {
		b.WriteString("  (unfinished)")
	}
	return b.String()
}

func resultLine(r history.Result, withRun bool) string {
	var b strings.Builder
	if withRun {
		fmt.Fprintf(&b, "%s  ", r.RunID)
	}
	mark := "FAIL"
	if r.Passed {
		mark = "ok  "
	}
	fmt.Fprintf(&b, "%s  %-18s  %s", mark, r.Outcome, r.Name)
	if r.Failure != nil {
		fmt.Fprintf(&b, "\n      %s", r.Failure.Summary)
	}
	if r.HasMessage {
		fmt.Fprintf(&b, "\n      %s", r.Message)
	}
	if r.TeardownFailure != nil {
		fmt.Fprintf(&b, "\n      teardown: %s", r.TeardownFailure.Summary)
	}
	return b.String()
}

func runObject(r history.Run) map[string]any {
	obj := map[string]any{
		"run_id":    r.ID,
		"seq":       r.Seq,
		"filtered":  r.Filtered,
		"selected":  r.Selected,
		"run":       r.Run,
		"succeeded": r.Succeeded,
		"failed":    r.Failed(),
		"finished":  r.Finished,
	}
	if r.Filtered {
		obj["filter"] = r.Filter
	}
	return obj
}

func storedResultObject(r history.Result) map[string]any {
	obj := map[string]any{
		"run_id":  r.RunID,
		"seq":     r.Seq,
		"index":   r.Index,
		"name":    r.Name,
		"outcome": r.Outcome,
		"passed":  r.Passed,
		"status":  r.Status,
	}
	if r.HasMessage {
		obj["message"] = r.Message
	}
	if r.Failure != nil {
		obj["failure"] = failureRecordObject(r.Failure)
	}
	if r.TeardownFailure != nil {
		obj["teardown_failure"] = failureRecordObject(r.TeardownFailure)
	}
	return obj
}

func failureRecordObject(f *history.FailureRecord) map[string]any {
	obj := map[string]any{"summary": f.Summary}
	if f.Panic != "" {
		obj["panic"] = f.Panic
	} else {
		obj["func"] = f.Func
		obj["file"] = f.File
		obj["line"] = f.Line
		obj["condition"] = f.Condition
	}
	if f.Note != "" {
		obj["note"] = f.Note
	}
	return obj
}
