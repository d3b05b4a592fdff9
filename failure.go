package ptest

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
)

// Failure describes an aborted test phase. Assertions raise a *Failure by
// panicking with it; the runner recovers it at the phase's capture point.
//
// Deferred functions between the failure site and the capture point still
// run, so scoped cleanup inside a test body is safe.
type Failure struct {
	// Func is the name of the function that raised the failure.
	Func string

	// File and Line locate the raising call.
	File string
	Line int

	// Condition is the literal text of the condition that failed.
	Condition string

	// Message is the failure message that was set when the failure was raised.
	Message    string
	HasMessage bool

	// Note is the extra message passed to AssertMsg. It is not stored in the
	// failure message slot.
	Note string

	// Panic holds the recovered value when the phase panicked with something
	// other than a *Failure.
	Panic any

	// Stack is the goroutine stack at the failure site, captured only when
	// tracing is enabled.
	Stack []byte
}

// Error formats the failure description.
func (f *Failure) Error() string {
	if f.Panic != nil {
		return fmt.Sprintf("Panic in test: %v", f.Panic)
	}
	return fmt.Sprintf("Failure in %s() %s:%d:  Assertion failed (%q)",
		f.Func, filepath.Base(f.File), f.Line, f.Condition)
}

// IsPanic reports whether the failure came from a foreign panic rather than
// an assertion.
func (f *Failure) IsPanic() bool {
	return f.Panic != nil
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// newFailure builds a failure located at the frame skip levels up the stack,
// where 0 is newFailure itself.
func newFailure(skip int, condition string) *Failure {
	f := &Failure{Condition: condition, Func: "?", File: "?"}
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return f
	}
	f.File = file
	f.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		f.Func = shortFuncName(fn.Name())
	}
	return f
}

// shortFuncName strips the import path from a fully qualified function name:
// "github.com/x/y.(*T).Method" becomes "(*T).Method" and "pkg.fn.func1"
// becomes "fn.func1".
func shortFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// capture runs fn under a capture point. It returns the failure raised by fn,
// or nil if fn returned normally. Foreign panics are converted into failures.
func capture(t *T, fn func()) (failure *Failure) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if f, ok := r.(*Failure); ok {
			failure = f
			return
		}
		failure = &Failure{Panic: r}
		failure.Message, failure.HasMessage = t.Message()
		if t.trace {
			failure.Stack = debug.Stack()
		}
	}()
	fn()
	return nil
}
