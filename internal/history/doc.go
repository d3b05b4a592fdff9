// Package history provides SQLite-backed storage for test run history.
//
// The store is an append-only log of runs and of the per-test results
// recorded during each run:
//   - runs: one row per RunAll/RunMatching invocation
//   - results: one row per executed test, keyed by (run_id, seq)
//
// # Ordering
//
// All ordering uses a logical clock seq, never wall time, so listing runs is
// deterministic and independent of the host clock. Every query orders by
// seq ASC (or DESC for "latest first") with id as the tie-breaker.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while a run is being recorded
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: results must reference an existing run
//
// Failure descriptions are stored as canonical JSON (internal/canonical) so
// identical failures produce identical rows.
package history
