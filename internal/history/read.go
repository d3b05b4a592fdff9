package history

import (
	"context"
	"database/sql"
	"fmt"
)

// ListRuns returns the most recent runs, latest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, seq, filter, filtered, selected, run, succeeded, finished
		FROM runs
		ORDER BY seq DESC, id ASC COLLATE BINARY
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.Filter, &r.Filtered, &r.Selected, &r.Run, &r.Succeeded, &r.Finished); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a single run. Returns sql.ErrNoRows (wrapped) if the run
// does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, filter, filtered, selected, run, succeeded, finished
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.Filter, &r.Filtered, &r.Selected, &r.Run, &r.Succeeded, &r.Finished)
	if err != nil {
		return Run{}, fmt.Errorf("read run %q: %w", id, err)
	}
	return r, nil
}

// ReadResults returns the results of one run in execution order.
func (s *Store) ReadResults(ctx context.Context, runID string) ([]Result, error) {
	return s.queryResults(ctx, `
		SELECT run_id, seq, idx, name, outcome, passed, status, message, failure, teardown_failure
		FROM results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
}

// ReadTestHistory returns the recorded results of every test named name,
// latest first. A limit of zero or less returns all of them.
func (s *Store) ReadTestHistory(ctx context.Context, name string, limit int) ([]Result, error) {
	query := `
		SELECT run_id, seq, idx, name, outcome, passed, status, message, failure, teardown_failure
		FROM results
		WHERE name = ?
		ORDER BY seq DESC
	`
	args := []any{name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryResults(ctx, query, args...)
}

func (s *Store) queryResults(ctx context.Context, query string, args ...any) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r                 Result
			message           sql.NullString
			failure, teardown sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Index, &r.Name, &r.Outcome, &r.Passed, &r.Status,
			&message, &failure, &teardown); err != nil {
			return nil, fmt.Errorf("read results: %w", err)
		}
		r.Message, r.HasMessage = message.String, message.Valid
		if r.Failure, err = unmarshalFailure(failure); err != nil {
			return nil, fmt.Errorf("read results: seq %d: %w", r.Seq, err)
		}
		if r.TeardownFailure, err = unmarshalFailure(teardown); err != nil {
			return nil, fmt.Errorf("read results: seq %d: %w", r.Seq, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return results, nil
}
