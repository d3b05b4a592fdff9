// Package ptest is a small native unit-test harness.
//
// Tests are registered explicitly, before the driver runs, and are executed
// sequentially in registration order. A failed assertion anywhere in the call
// chain of a test aborts that test only; the run continues with the next entry.
//
// # Registration
//
// Simple tests take the per-test context and return a status:
//
//	func init() {
//	    ptest.Register("Parse", func(t *ptest.T) int {
//	        v, err := parse("42")
//	        t.Assert(err == nil, "err == nil")
//	        t.Assert(v == 42, "v == 42")
//	        return ptest.StatusOK
//	    })
//	}
//
// Fixtured tests bind typed data produced by a create hook (or supplied up
// front) and released by a teardown hook:
//
//	ptest.RegisterFixtured(ptest.Default, "FileIO",
//	    func(t *ptest.T, f *os.File) int { ... },
//	    ptest.Fixture[*os.File]{Create: openTemp, Teardown: removeTemp},
//	)
//
// Create is invoked at most once per entry per process; the bound data is
// reused by later runs of the same entry. Teardown runs after every body
// phase, under its own capture point.
//
// # Outcome policy
//
//   - An assertion failure (or any panic) in the body is always a failure.
//   - A body returning StatusOK is a success.
//   - A body returning any other status prints a failure notice, but counts
//     as a failure only when a failure message is set at that moment.
//
// The failure message slot is reset at the start of every test and cleared
// by every assertion that passes.
//
// # Running
//
//	summary := ptest.NewRunner(ptest.Default, ptest.Options{}).RunMatching("Fail")
//	os.Exit(summary.Status())
//
// The driver package wraps this in a command line.
package ptest
