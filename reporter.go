package ptest

// Outcome classifies how a test's body phase ended.
type Outcome int

const (
	// OutcomePassed: the body returned StatusOK.
	OutcomePassed Outcome = iota

	// OutcomeReturnedFail: the body returned a nonzero status while a failure
	// message was set. Counted as a failure.
	OutcomeReturnedFail

	// OutcomeReturnedUncounted: the body returned a nonzero status with no
	// failure message set. A failure notice is shown, but the test is counted
	// as a success.
	OutcomeReturnedUncounted

	// OutcomeRaised: the body phase was aborted by a failure. Always counted
	// as a failure.
	OutcomeRaised
)

// String returns the outcome name used in reports.
func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeReturnedFail:
		return "returned_fail"
	case OutcomeReturnedUncounted:
		return "returned_uncounted"
	case OutcomeRaised:
		return "raised"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the outcome counts towards the success tally.
func (o Outcome) Succeeded() bool {
	return o == OutcomePassed || o == OutcomeReturnedUncounted
}

// TestResult is the recorded outcome of one test invocation.
type TestResult struct {
	// Index is the entry's position in the registry.
	Index int
	Name  string

	Outcome Outcome

	// Status is the value the body returned. Zero when the body was aborted.
	Status int

	// Message is the failure message shown with the result, if any.
	Message    string
	HasMessage bool

	// Failure is set when the body phase (fixture create included) was aborted.
	Failure *Failure

	// TeardownFailure is set when the teardown phase was aborted. It never
	// changes Outcome.
	TeardownFailure *Failure
}

// Passed reports whether the result counts as a success.
func (r TestResult) Passed() bool {
	return r.Outcome.Succeeded()
}

// RunInfo describes a run before any test executes.
type RunInfo struct {
	ID string

	// Filter is the pattern passed to RunMatching. Filtered is false for RunAll.
	Filter   string
	Filtered bool

	// Selected is the number of entries that will run.
	Selected int
}

// Summary aggregates one RunAll or RunMatching invocation.
type Summary struct {
	RunID    string
	Filter   string
	Filtered bool

	// Run is the number of entries executed, Succeeded the number counted as
	// successes.
	Run       int
	Succeeded int

	Results []TestResult
}

// Failed returns the number of tests counted as failures.
func (s Summary) Failed() int {
	return s.Run - s.Succeeded
}

// OK reports whether every selected test succeeded. A run that selected no
// tests is OK.
func (s Summary) OK() bool {
	return s.Succeeded == s.Run
}

// Status returns StatusOK when the run is OK and StatusFail otherwise.
func (s Summary) Status() int {
	if s.OK() {
		return StatusOK
	}
	return StatusFail
}

// Reporter receives run events in order: RunStarted, then TestStarted and
// TestFinished for each selected entry, then RunFinished.
//
// TestStarted is delivered before any part of the entry executes, so a
// reporter that writes it out immediately attributes a crash to the right
// test.
type Reporter interface {
	RunStarted(info RunInfo)
	TestStarted(index int, name string)
	TestFinished(result TestResult)
	RunFinished(summary Summary)
}

// MultiReporter fans events out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) RunStarted(info RunInfo) {
	for _, r := range m {
		r.RunStarted(info)
	}
}

func (m MultiReporter) TestStarted(index int, name string) {
	for _, r := range m {
		r.TestStarted(index, name)
	}
}

func (m MultiReporter) TestFinished(result TestResult) {
	for _, r := range m {
		r.TestFinished(result)
	}
}

func (m MultiReporter) RunFinished(summary Summary) {
	for _, r := range m {
		r.RunFinished(summary)
	}
}
