package history

// Run is one recorded RunAll/RunMatching invocation.
type Run struct {
	ID       string
	Seq      int64
	Filter   string
	Filtered bool

	// Selected is the number of entries the run was going to execute. Run and
	// Succeeded are filled in when the run finishes.
	Selected  int
	Run       int
	Succeeded int
	Finished  bool
}

// Failed returns the number of tests counted as failures.
func (r Run) Failed() int {
	return r.Run - r.Succeeded
}

// Result is one recorded test outcome.
type Result struct {
	RunID   string
	Seq     int64
	Index   int
	Name    string
	Outcome string
	Passed  bool
	Status  int

	Message    string
	HasMessage bool

	// Failure and TeardownFailure hold the decoded failure records, nil when
	// the phase completed.
	Failure         *FailureRecord
	TeardownFailure *FailureRecord
}

// FailureRecord is the stored form of a ptest.Failure.
type FailureRecord struct {
	Func      string `json:"func,omitempty"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Condition string `json:"condition,omitempty"`
	Note      string `json:"note,omitempty"`
	Panic     string `json:"panic,omitempty"`
	Summary   string `json:"summary"`
}
