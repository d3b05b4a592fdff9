package ptest

import (
	"fmt"
	"reflect"
)

// Fixture binds per-test data to a fixtured entry.
//
// Create produces the data the first time the entry runs. Ownership passes to
// the entry: the data stays bound for the rest of the process and later runs
// of the same entry reuse it without calling Create again.
//
// Data is externally owned data supplied at registration. A non-zero Data is
// bound from the start, so Create is never called for it.
//
// Teardown receives the bound data after every body phase, whatever the
// body's outcome. Teardown is skipped when Create aborts, since no data was
// bound.
type Fixture[D any] struct {
	Create   func(t *T) D
	Teardown func(t *T, data D)
	Data     D
}

// fixtureSlot holds the memoized data of one entry.
type fixtureSlot[D any] struct {
	data  D
	bound bool
}

// RegisterFixtured appends a fixtured test to r. Use Default for the
// package-level registry.
func RegisterFixtured[D any](r *Registry, name string, body func(t *T, data D) int, fx Fixture[D]) *Entry {
	if body == nil {
		panic(fmt.Sprintf("ptest: nil body for test %q", name))
	}

	slot := &fixtureSlot[D]{data: fx.Data}
	slot.bound = fx.Create == nil || !isZero(fx.Data)

	e := &Entry{
		Name: name,
		Kind: KindFixtured,
		body: func(t *T) int {
			return body(t, slot.data)
		},
		bind: func(t *T) {
			if slot.bound {
				return
			}
			data := fx.Create(t)
			slot.data = data
			slot.bound = true
		},
		bound: func() bool {
			return slot.bound
		},
	}
	if fx.Teardown != nil {
		e.teardown = func(t *T) {
			fx.Teardown(t, slot.data)
		}
	}
	return r.add(e)
}

// isZero reports whether v is the zero value of its type, including nil
// pointers, maps and interfaces.
func isZero[D any](v D) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
