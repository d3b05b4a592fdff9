package ptest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Reporter that records the events it receives.
type recorder struct {
	events  []string
	info    RunInfo
	results []TestResult
	summary Summary
}

func (r *recorder) RunStarted(info RunInfo) {
	r.info = info
	r.events = append(r.events, "run:"+info.Filter)
}

func (r *recorder) TestStarted(index int, name string) {
	r.events = append(r.events, fmt.Sprintf("start:%d:%s", index, name))
}

func (r *recorder) TestFinished(res TestResult) {
	r.results = append(r.results, res)
	r.events = append(r.events, fmt.Sprintf("finish:%s:%s", res.Name, res.Outcome))
}

func (r *recorder) RunFinished(s Summary) {
	r.summary = s
	r.events = append(r.events, fmt.Sprintf("done:%d/%d", s.Succeeded, s.Run))
}

type fixedIDs string

func (f fixedIDs) Generate() string { return string(f) }

func quietOptions() Options {
	return Options{Reporter: MultiReporter{}, Output: io.Discard, IDs: fixedIDs("run-test")}
}

func failWithMessage(msg string) func(t *T) int {
	return func(t *T) int {
		t.SetMessage(msg)
		return StatusFail
	}
}

func TestRunAll_AllPass(t *testing.T) {
	reg := NewRegistry()
	reg.Register("A", pass)
	reg.Register("B", pass)
	reg.Register("C", pass)

	var out bytes.Buffer
	s := NewRunner(reg, Options{Output: &out, IDs: fixedIDs("run-1")}).RunAll()

	assert.Equal(t, 3, s.Run)
	assert.Equal(t, 3, s.Succeeded)
	assert.Equal(t, 0, s.Failed())
	assert.True(t, s.OK())
	assert.Equal(t, StatusOK, s.Status())
	assert.Equal(t, "run-1", s.RunID)
	assert.False(t, s.Filtered)
	assert.Contains(t, out.String(), "Tests run: 3  Tests Succeeded: 3  Tests Failed: 0")
}

func TestRunAll_MixedOutcomes(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Abort", func(t *T) int {
		t.Assert(false, "false")
		return StatusOK
	})
	reg.Register("Uncounted", func(t *T) int {
		t.SetMessage("cleared below")
		t.Assert(true, "true")
		return StatusFail
	})
	reg.Register("Counted", failWithMessage("built to fail"))

	rec := &recorder{}
	opts := quietOptions()
	opts.Reporter = rec
	s := NewRunner(reg, opts).RunAll()

	assert.Equal(t, 3, s.Run)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 2, s.Failed())
	assert.False(t, s.OK())
	assert.Equal(t, StatusFail, s.Status())

	require.Len(t, s.Results, 3)
	assert.Equal(t, OutcomeRaised, s.Results[0].Outcome)
	assert.NotNil(t, s.Results[0].Failure)
	assert.Equal(t, 0, s.Results[0].Status)

	assert.Equal(t, OutcomeReturnedUncounted, s.Results[1].Outcome)
	assert.True(t, s.Results[1].Passed())
	assert.False(t, s.Results[1].HasMessage)
	assert.Equal(t, StatusFail, s.Results[1].Status)

	assert.Equal(t, OutcomeReturnedFail, s.Results[2].Outcome)
	assert.False(t, s.Results[2].Passed())
	assert.Equal(t, "built to fail", s.Results[2].Message)

	assert.Equal(t, []string{
		"run:",
		"start:0:Abort", "finish:Abort:raised",
		"start:1:Uncounted", "finish:Uncounted:returned_uncounted",
		"start:2:Counted", "finish:Counted:returned_fail",
		"done:1/3",
	}, rec.events)
}

func TestRunAll_AbortSkipsRestOfBody(t *testing.T) {
	reg := NewRegistry()
	reached := false
	reg.Register("Abort", func(t *T) int {
		t.Assert(false, "false")
		reached = true
		return StatusOK
	})
	reg.Register("Next", pass)

	s := NewRunner(reg, quietOptions()).RunAll()

	assert.False(t, reached)
	assert.Equal(t, 2, s.Run, "an abort does not stop the run")
	assert.Equal(t, 1, s.Succeeded)
}

func TestRunAll_NonzeroStatusesAreEquivalent(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Seven", func(t *T) int {
		t.SetMessage("seven")
		return 7
	})

	s := NewRunner(reg, quietOptions()).RunAll()
	assert.Equal(t, OutcomeReturnedFail, s.Results[0].Outcome)
	assert.Equal(t, 7, s.Results[0].Status)
}

func TestRunAll_MessageDoesNotLeakBetweenTests(t *testing.T) {
	reg := NewRegistry()
	reg.Register("SetsMessage", func(t *T) int {
		t.SetMessage("leftover")
		return StatusOK
	})
	var seen bool
	reg.Register("ReadsMessage", func(t *T) int {
		_, seen = t.Message()
		return StatusFail
	})

	s := NewRunner(reg, quietOptions()).RunAll()

	assert.False(t, seen)
	assert.Equal(t, OutcomeReturnedUncounted, s.Results[1].Outcome)
	assert.Equal(t, 2, s.Succeeded)
}

func TestRunAll_ForeignPanicCaptured(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Panics", func(t *T) int {
		panic("kaboom")
	})
	reg.Register("After", pass)

	s := NewRunner(reg, quietOptions()).RunAll()

	require.Len(t, s.Results, 2)
	f := s.Results[0].Failure
	require.NotNil(t, f)
	assert.Equal(t, "kaboom", f.Panic)
	assert.Equal(t, OutcomeRaised, s.Results[0].Outcome)
	assert.True(t, s.Results[1].Passed())
}

func TestRunAll_EmptyRegistry(t *testing.T) {
	s := NewRunner(NewRegistry(), quietOptions()).RunAll()

	assert.Equal(t, 0, s.Run)
	assert.True(t, s.OK())
	assert.Empty(t, s.Results)
}

func TestRunMatching_OnlyMatchedRun(t *testing.T) {
	reg := NewRegistry()
	ran := map[string]int{}
	body := func(name string) func(t *T) int {
		return func(t *T) int {
			ran[name]++
			return StatusOK
		}
	}
	reg.Register("FailWithMessage", body("FailWithMessage"))
	reg.Register("SomeStuff", body("SomeStuff"))
	reg.Register("FailInNested", body("FailInNested"))

	rec := &recorder{}
	opts := quietOptions()
	opts.Reporter = rec
	s := NewRunner(reg, opts).RunMatching("Fail")

	assert.Equal(t, map[string]int{"FailWithMessage": 1, "FailInNested": 1}, ran)
	assert.Equal(t, 2, s.Run)
	assert.True(t, s.OK())
	assert.True(t, s.Filtered)
	assert.Equal(t, "Fail", s.Filter)
	assert.Equal(t, RunInfo{ID: "run-test", Filter: "Fail", Filtered: true, Selected: 2}, rec.info)
	assert.Equal(t, 0, s.Results[0].Index)
	assert.Equal(t, 2, s.Results[1].Index)
}

func TestRunMatching_ComparesAgainstMatchedCount(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Fail1", failWithMessage("one"))
	reg.Register("Fail2", pass)
	reg.Register("Other", pass)

	s := NewRunner(reg, quietOptions()).RunMatching("Fail")

	assert.Equal(t, 2, s.Run)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, StatusFail, s.Status())
}

func TestRunMatching_NoMatchesIsOK(t *testing.T) {
	reg := NewRegistry()
	reg.Register("A", failWithMessage("never runs"))

	var out bytes.Buffer
	s := NewRunner(reg, Options{Output: &out, IDs: fixedIDs("r")}).RunMatching("Z")

	assert.Equal(t, 0, s.Run)
	assert.True(t, s.OK())
	assert.Equal(t, StatusOK, s.Status())
	assert.NotContains(t, out.String(), "[Test:")
	assert.Contains(t, out.String(), "Tests run: 0  Tests Succeeded: 0  Tests Failed: 0")
}

func TestRunMatching_UnmatchedFixtureUntouched(t *testing.T) {
	reg := NewRegistry()
	created := 0
	e := RegisterFixtured(reg, "Fixtured", func(t *T, n int) int { return StatusOK }, Fixture[int]{
		Create: func(t *T) int { created++; return 1 },
	})
	reg.Register("Plain", pass)

	NewRunner(reg, quietOptions()).RunMatching("Plain")

	assert.Equal(t, 0, created)
	assert.False(t, e.Bound())
}

func TestRunner_CountersResetBetweenRuns(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Pass", pass)
	reg.Register("Fail", failWithMessage("no"))

	runner := NewRunner(reg, quietOptions())
	first := runner.RunAll()
	second := runner.RunMatching("Pass")

	assert.Equal(t, 2, first.Run)
	assert.Equal(t, 1, first.Succeeded)
	assert.Equal(t, 1, second.Run)
	assert.Equal(t, 1, second.Succeeded)
	assert.True(t, second.OK())
}

func TestRunner_NotReentrant(t *testing.T) {
	reg := NewRegistry()
	var runner *Runner
	reg.Register("Nested", func(t *T) int {
		runner.RunAll()
		return StatusOK
	})
	runner = NewRunner(reg, quietOptions())

	s := runner.RunAll()

	require.Len(t, s.Results, 1)
	f := s.Results[0].Failure
	require.NotNil(t, f)
	assert.True(t, errors.Is(f.Panic.(error), ErrRunInProgress))

	// The guard is released once the outer run finishes.
	assert.NotPanics(t, func() { runner.RunMatching("none") })
}

func TestRunner_GuardCoversEveryRunnerOverRegistry(t *testing.T) {
	reg := NewRegistry()
	other := NewRunner(reg, quietOptions())
	reg.Register("Nested", func(t *T) int {
		other.RunAll()
		return StatusOK
	})

	s := NewRunner(reg, quietOptions()).RunAll()

	require.Len(t, s.Results, 1)
	f := s.Results[0].Failure
	require.NotNil(t, f)
	assert.Equal(t, ErrRunInProgress, f.Panic)

	assert.NotPanics(t, func() { other.RunMatching("none") })
}

func TestRunner_DefaultsWriteTextReport(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Logs", func(t *T) int {
		t.Logf("body output")
		return StatusOK
	})

	var out bytes.Buffer
	NewRunner(reg, Options{Output: &out}).RunAll()

	assert.Contains(t, out.String(), "[Test: Logs]\n=====================================\nbody output\n")
	assert.Contains(t, out.String(), "[OK]")
}

func TestRunner_GeneratesUUIDRunIDs(t *testing.T) {
	runner := NewRunner(NewRegistry(), Options{Reporter: MultiReporter{}})

	a := runner.RunAll()
	b := runner.RunAll()

	assert.Len(t, a.RunID, 36)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Less(t, a.RunID, b.RunID)
}

// Default is shared by the whole package, so every package-level case
// registers before the first run seals it.
func TestPackageLevel_DefaultRegistry(t *testing.T) {
	before := Default.Len()
	e := Register("PackageLevelDefaultRegistryPass", pass)
	Register("PackageLevelDefaultRegistryNested", func(t *T) int {
		RunAll()
		return StatusOK
	})
	assert.Equal(t, before, e.Index())

	s := RunMatching("PackageLevelDefaultRegistryPass")
	assert.Equal(t, 1, s.Run)
	assert.True(t, s.OK())
	assert.True(t, Default.Sealed())

	nested := RunMatching("PackageLevelDefaultRegistryNested")
	require.Len(t, nested.Results, 1)
	assert.Equal(t, OutcomeRaised, nested.Results[0].Outcome)
	require.NotNil(t, nested.Results[0].Failure)
	assert.Equal(t, ErrRunInProgress, nested.Results[0].Failure.Panic)
}

func TestMultiReporter_FansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	reg := NewRegistry()
	reg.Register("A", pass)

	opts := quietOptions()
	opts.Reporter = MultiReporter{a, b}
	NewRunner(reg, opts).RunAll()

	assert.Equal(t, a.events, b.events)
	assert.Len(t, a.events, 4)
}
