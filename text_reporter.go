package ptest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const rule = "====================================="

// TextOptions configures a TextReporter.
type TextOptions struct {
	// NoColor disables styling of the pass/fail markers.
	NoColor bool
}

// TextReporter writes the human-readable report: a banner before each test,
// a pass/fail marker and optional message after it, and a trailing summary.
//
// Every event is written as soon as it arrives.
type TextReporter struct {
	w       io.Writer
	noColor bool

	okStyle       lipgloss.Style
	failStyle     lipgloss.Style
	teardownStyle lipgloss.Style
}

// NewTextReporter creates a text reporter writing to w. Colors follow the
// terminal capabilities of w; a plain writer gets no escape sequences.
func NewTextReporter(w io.Writer, opts TextOptions) *TextReporter {
	r := lipgloss.NewRenderer(w)
	return &TextReporter{
		w:             w,
		noColor:       opts.NoColor,
		okStyle:       r.NewStyle().Foreground(lipgloss.Color("2")),
		failStyle:     r.NewStyle().Foreground(lipgloss.Color("1")),
		teardownStyle: r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (r *TextReporter) RunStarted(info RunInfo) {
	fmt.Fprintln(r.w)
}

func (r *TextReporter) TestStarted(index int, name string) {
	fmt.Fprintf(r.w, "\n%s\n[Test: %s]\n%s\n", rule, name, rule)
}

func (r *TextReporter) TestFinished(res TestResult) {
	switch res.Outcome {
	case OutcomePassed:
		fmt.Fprintf(r.w, "\n%s\n", r.style(r.okStyle, "[OK]"))
	case OutcomeReturnedFail, OutcomeReturnedUncounted:
		fmt.Fprintf(r.w, "\n%s\n", r.style(r.failStyle, "[FAILURE] Test returned TEST_FAIL"))
		r.message(res.Message, res.HasMessage)
	case OutcomeRaised:
		r.failure(res.Failure)
		r.message(res.Message, res.HasMessage)
		fmt.Fprintf(r.w, "\n%s\n", r.style(r.failStyle, "[FAILURE]"))
	}

	if res.TeardownFailure != nil {
		r.failure(res.TeardownFailure)
		r.message(res.TeardownFailure.Message, res.TeardownFailure.HasMessage)
		fmt.Fprintf(r.w, "\n%s\n", r.style(r.teardownStyle, "[TEARDOWN FAILURE]"))
	}
}

func (r *TextReporter) RunFinished(s Summary) {
	fmt.Fprintf(r.w, "\n%s\n\nTests run: %d  Tests Succeeded: %d  Tests Failed: %d\n\n",
		rule, s.Run, s.Succeeded, s.Failed())
}

func (r *TextReporter) failure(f *Failure) {
	if f == nil {
		return
	}
	fmt.Fprintf(r.w, "\n%s\n", f.Error())
	if f.Note != "" {
		fmt.Fprintln(r.w, f.Note)
	}
	if len(f.Stack) > 0 {
		fmt.Fprintln(r.w, "Trace:")
		sc := bufio.NewScanner(bytes.NewReader(f.Stack))
		for sc.Scan() {
			fmt.Fprintf(r.w, "\t%s\n", sc.Text())
		}
	}
}

func (r *TextReporter) message(msg string, ok bool) {
	if ok {
		fmt.Fprintln(r.w, msg)
	}
}

func (r *TextReporter) style(s lipgloss.Style, text string) string {
	if r.noColor {
		return text
	}
	return s.Render(text)
}
