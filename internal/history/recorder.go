package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ptest"
)

// Recorder is a ptest.Reporter that writes every run it observes to a Store.
//
// Reporter methods cannot return errors, so the first write error is kept
// and later events are ignored; check Err after the run.
type Recorder struct {
	ctx    context.Context
	store  *Store
	clock  SeqSource
	logger *slog.Logger

	runID string
	err   error
}

// NewRecorder creates a recorder writing to st. If clock is nil, a Clock
// resuming after the highest seq already in the store is used.
func NewRecorder(ctx context.Context, st *Store, clock SeqSource, logger *slog.Logger) (*Recorder, error) {
	if clock == nil {
		start, err := st.MaxSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("new recorder: %w", err)
		}
		clock = NewClockAt(start)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{ctx: ctx, store: st, clock: clock, logger: logger}, nil
}

// Err returns the first error encountered while recording.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) RunStarted(info ptest.RunInfo) {
	if r.err != nil {
		return
	}
	r.runID = info.ID
	r.fail(r.store.WriteRun(r.ctx, Run{
		ID:       info.ID,
		Seq:      r.clock.Next(),
		Filter:   info.Filter,
		Filtered: info.Filtered,
		Selected: info.Selected,
	}))
}

func (r *Recorder) TestStarted(index int, name string) {}

func (r *Recorder) TestFinished(res ptest.TestResult) {
	if r.err != nil {
		return
	}
	r.fail(r.store.WriteResult(r.ctx, r.runID, r.clock.Next(), res))
}

func (r *Recorder) RunFinished(s ptest.Summary) {
	if r.err != nil {
		return
	}
	r.fail(r.store.FinishRun(r.ctx, s.RunID, s.Run, s.Succeeded))
}

func (r *Recorder) fail(err error) {
	if err == nil {
		return
	}
	r.err = err
	r.logger.Warn("history recording stopped", "run_id", r.runID, "error", err)
}
