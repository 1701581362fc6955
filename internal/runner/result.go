package runner

import "time"

// RunResult is the aggregate outcome of one job run: combined output across
// all pairs and the first failing pair's exit code. Immutable once returned.
type RunResult struct {
	Timestamp time.Time
	ExitCode  int
	Stdout    string
	Stderr    string

	// LogFile is the per-run log path, empty when the run was skipped
	// before a log was created (lock contention).
	LogFile string

	Duration time.Duration
}

// Skipped reports whether the run was a lock-contention no-op.
func (r *RunResult) Skipped() bool {
	return r.LogFile == "" && r.ExitCode == 0
}
