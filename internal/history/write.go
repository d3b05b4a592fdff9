package history

import (
	"context"
	"fmt"

	"github.com/roach88/ptest"
)

// WriteRun inserts a run record. Uses ON CONFLICT(id) DO NOTHING so a
// repeated write of the same run is ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, filter, filtered, selected, run, succeeded, finished)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.Filter,
		run.Filtered,
		run.Selected,
		run.Run,
		run.Succeeded,
		run.Finished,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun records the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, id string, run, succeeded int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET run = ?, succeeded = ?, finished = 1 WHERE id = ?
	`, run, succeeded, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: run %q not found", id)
	}
	return nil
}

// WriteResult inserts the result of one test. The run referenced by runID
// must exist (foreign key constraint).
func (s *Store) WriteResult(ctx context.Context, runID string, seq int64, res ptest.TestResult) error {
	failure, err := marshalFailure(res.Failure)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	teardown, err := marshalFailure(res.TeardownFailure)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results
		(run_id, seq, idx, name, outcome, passed, status, message, failure, teardown_failure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		seq,
		res.Index,
		res.Name,
		res.Outcome.String(),
		res.Passed(),
		res.Status,
		nullString(res.Message, res.HasMessage),
		failure,
		teardown,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
