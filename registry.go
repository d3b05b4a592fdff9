package ptest

import (
	"errors"
	"fmt"
	"strings"
)

// Status values returned by test bodies.
const (
	StatusOK   = 0
	StatusFail = -1
)

// ErrRegistrySealed is the panic value raised when a test is registered after
// the registry has started executing.
var ErrRegistrySealed = errors.New("ptest: registry is sealed, register tests before the first run")

// Kind distinguishes plain entries from entries with a fixture.
type Kind int

const (
	// KindSimple is a body with no fixture.
	KindSimple Kind = iota
	// KindFixtured is a body bound to fixture data.
	KindFixtured
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindFixtured:
		return "fixtured"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is one registered test. Entries are created by Register and
// RegisterFixtured and are never removed.
type Entry struct {
	// Name identifies the test. Names need not be unique.
	Name string

	// Kind reports whether the entry carries a fixture.
	Kind Kind

	index int

	// body runs the test body with whatever data is bound.
	body func(t *T) int

	// bind runs the create hook if no data is bound yet. Nil for simple entries.
	bind func(t *T)

	// bound reports whether fixture data is currently bound. Nil for simple entries.
	bound func() bool

	// teardown releases bound data. Nil when the fixture has no teardown.
	teardown func(t *T)
}

// Index returns the entry's position in its registry.
func (e *Entry) Index() int {
	return e.index
}

// HasTeardown reports whether the entry has a teardown hook.
func (e *Entry) HasTeardown() bool {
	return e.teardown != nil
}

// Bound reports whether fixture data is bound to the entry. Simple entries
// always report false.
func (e *Entry) Bound() bool {
	if e.bound == nil {
		return false
	}
	return e.bound()
}

// Registry is the ordered, append-only collection of test entries.
//
// Registration is not safe for concurrent use and must complete before the
// first run; once a Runner starts executing the registry it is sealed.
type Registry struct {
	entries []*Entry
	sealed  bool
	running bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the registry used by the package-level Register, RunAll and
// RunMatching functions.
var Default = NewRegistry()

// Register appends a simple test to the Default registry.
func Register(name string, body func(t *T) int) *Entry {
	return Default.Register(name, body)
}

// Register appends a simple test to the registry.
func (r *Registry) Register(name string, body func(t *T) int) *Entry {
	if body == nil {
		panic(fmt.Sprintf("ptest: nil body for test %q", name))
	}
	return r.add(&Entry{
		Name: name,
		Kind: KindSimple,
		body: body,
	})
}

func (r *Registry) add(e *Entry) *Entry {
	if r.sealed {
		panic(ErrRegistrySealed)
	}
	e.index = len(r.entries)
	r.entries = append(r.entries, e)
	return e
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns the entries in registration order. The returned slice is a
// copy; the entries themselves are shared.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Match returns, in registration order, the entries whose name contains
// pattern. Matching is a case-sensitive substring test; the empty pattern
// matches every entry.
func (r *Registry) Match(pattern string) []*Entry {
	var out []*Entry
	for _, e := range r.entries {
		if strings.Contains(e.Name, pattern) {
			out = append(out, e)
		}
	}
	return out
}

// Sealed reports whether a run has started on the registry.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// begin seals the registry and marks a run in progress. It panics with
// ErrRunInProgress if a run is already in progress.
func (r *Registry) begin() {
	if r.running {
		panic(ErrRunInProgress)
	}
	r.running = true
	r.sealed = true
}

func (r *Registry) end() {
	r.running = false
}
