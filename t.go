package ptest

import (
	"fmt"
	"io"
	"runtime/debug"
)

// T is the execution context of a single test invocation. It owns the
// failure message slot and raises failures for assertions.
//
// A T is created fresh for every test, so no message ever leaks from one test
// into the next. It must only be used from the goroutine running the test:
// a failure raised on another goroutine is not captured by the runner.
type T struct {
	name  string
	index int
	out   io.Writer
	trace bool

	message    string
	hasMessage bool
}

func newT(index int, name string, out io.Writer, trace bool) *T {
	if out == nil {
		out = io.Discard
	}
	return &T{name: name, index: index, out: out, trace: trace}
}

// Name returns the name of the running test.
func (t *T) Name() string {
	return t.name
}

// SetMessage sets the failure message displayed if the test fails. The last
// call wins.
func (t *T) SetMessage(msg string) {
	t.message = msg
	t.hasMessage = true
}

// ClearMessage empties the failure message slot.
func (t *T) ClearMessage() {
	t.message = ""
	t.hasMessage = false
}

// Message returns the current failure message and whether one is set.
func (t *T) Message() (string, bool) {
	return t.message, t.hasMessage
}

// Assert aborts the current test phase if cond is false. expr is the literal
// text of the condition, reported in the failure description. A passing
// assertion clears the failure message.
func (t *T) Assert(cond bool, expr string) {
	if cond {
		t.ClearMessage()
		return
	}
	panic(t.failure(2, expr, ""))
}

// AssertMsg is Assert with an extra message that is reported alongside the
// failure description. msg does not replace the failure message slot.
func (t *T) AssertMsg(cond bool, expr, msg string) {
	if cond {
		t.ClearMessage()
		return
	}
	panic(t.failure(2, expr, msg))
}

// Fail aborts the current test phase unconditionally.
func (t *T) Fail(reason string) {
	panic(t.failure(2, reason, ""))
}

// Logf writes a line of test output.
func (t *T) Logf(format string, args ...any) {
	if len(format) == 0 || format[len(format)-1] != '\n' {
		format += "\n"
	}
	fmt.Fprintf(t.out, format, args...)
}

// Output returns the writer test output goes to.
func (t *T) Output() io.Writer {
	return t.out
}

func (t *T) failure(skip int, expr, note string) *Failure {
	f := newFailure(skip+1, expr)
	f.Note = note
	f.Message, f.HasMessage = t.Message()
	if t.trace {
		f.Stack = debug.Stack()
	}
	return f
}
