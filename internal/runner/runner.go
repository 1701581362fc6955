// Package runner orchestrates rclone bisync job executions: lock
// acquisition, per-pair attempts with bounded recovery retries, run log
// capture, and the aggregate result handed to the status layer.
package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/bisync-tools/bisyncd/internal/lock"
	"github.com/bisync-tools/bisyncd/internal/rclone"
	"github.com/bisync-tools/bisyncd/internal/utils"
)

// Runner executes sync jobs. Pairs run strictly sequentially and without a
// subprocess timeout; the run lock is the only overlap protection and a hung
// rclone hangs the run on purpose.
type Runner struct {
	// Builder constructs rclone invocations.
	Builder *rclone.Builder

	// Reclaimer cleans up bisync's own stale lock files.
	Reclaimer *lock.Reclaimer

	// Home is the user home directory, threaded in so path defaults and
	// ~-expansion never consult the environment mid-run.
	Home string

	// JobPath maps a job name to its config file, for validation messages.
	JobPath func(name string) string
}

func New(builder *rclone.Builder, reclaimer *lock.Reclaimer, home string, jobPath func(string) string) *Runner {
	return &Runner{
		Builder:   builder,
		Reclaimer: reclaimer,
		Home:      home,
		JobPath:   jobPath,
	}
}

// Run executes one job to completion: validate, pre-clean stale bisync
// locks, take the run lock, then run every pair through the recovery policy
// while appending to the per-run log. Lock contention returns a zero-exit
// result with an explanatory message and no log file. All pairs run even
// after a failure; the first failing pair's exit code becomes the aggregate.
func (r *Runner) Run(job *config.Job) (*RunResult, error) {
	start := time.Now()

	configPath := ""
	if r.JobPath != nil {
		configPath = r.JobPath(job.Name)
	}
	if err := job.Validate(configPath); err != nil {
		return nil, err
	}

	if job.CleanBisyncLocks {
		r.Reclaimer.CleanCacheLocks()
	}

	guard, err := lock.Acquire(r.lockPath(job))
	if err != nil {
		var already *lock.AlreadyRunningError
		if errors.As(err, &already) {
			slog.Info("sync already running, skipping", "job", job.Name, "pid", already.PID)
			return &RunResult{
				Timestamp: start,
				ExitCode:  0,
				Stderr:    fmt.Sprintf("Sync already running (PID: %d). Skipping this run.", already.PID),
			}, nil
		}
		return nil, err
	}
	defer guard.Release()

	rlog, logPath, err := newRunLog(r.logDir(job), start)
	if err != nil {
		return nil, err
	}
	defer rlog.Close()
	rlog.header(job, start)

	pairs := pairsFor(job)
	var combinedStdout, combinedStderr strings.Builder
	finalExit := 0

	for i, pair := range pairs {
		local, remote := resolvePair(job, pair)
		slog.Info("running bisync pair", "job", job.Name, "pair", i+1, "total", len(pairs), "local", local, "remote", remote)
		rlog.pairHeader(i+1, len(pairs), local, remote)

		attempt, err := r.runPair(job, local, remote, rlog)
		if err != nil {
			return nil, err
		}

		appendChunk(&combinedStdout, attempt.Stdout)
		appendChunk(&combinedStderr, attempt.Stderr)

		if attempt.ExitCode != 0 && finalExit == 0 {
			// First failing pair's code wins; later pairs still run.
			finalExit = attempt.ExitCode
		}
	}

	rlog.footer(finalExit)

	return &RunResult{
		Timestamp: start,
		ExitCode:  finalExit,
		Stdout:    combinedStdout.String(),
		Stderr:    combinedStderr.String(),
		LogFile:   logPath,
		Duration:  time.Since(start),
	}, nil
}

// runPair drives the recovery state machine for one pair: a normal attempt,
// then at most one retry after removing a reported stale bisync lock, then
// at most one --resync retry when the output carries a recovery signal. The
// returned attempt is always the last one executed.
func (r *Runner) runPair(job *config.Job, local, remote string, rlog *runLog) (*rclone.Attempt, error) {
	attempt, err := r.attempt(job, local, remote)
	if err != nil {
		return nil, err
	}
	rlog.attempt("normal", attempt)

	if attempt.ExitCode != 0 {
		if lckPath, ok := rclone.PriorLockFile(attempt.Stdout, attempt.Stderr); ok {
			if r.Reclaimer.RemoveStale(utils.ExpandHome(lckPath, r.Home)) {
				slog.Info("removed stale bisync lock, retrying", "job", job.Name, "lock", lckPath)
				attempt, err = r.attempt(job, local, remote)
				if err != nil {
					return nil, err
				}
				rlog.attempt("retry_after_lock_cleanup", attempt)
			}
		}
	}

	if attempt.ExitCode != 0 && rclone.NeedsResync(attempt.Stdout, attempt.Stderr) {
		if job.AutoResync {
			slog.Warn("bisync requires resync, retrying with --resync", "job", job.Name, "local", local, "remote", remote)
			attempt, err = r.attempt(job, local, remote, "--resync")
			if err != nil {
				return nil, err
			}
			rlog.attempt("resync_recovery", attempt)
		} else {
			rlog.note("Resync required, but auto_resync=false; run with --resync to recover.")
		}
	}

	return attempt, nil
}

func (r *Runner) attempt(job *config.Job, local, remote string, recovery ...string) (*rclone.Attempt, error) {
	cmd := r.Builder.Build(job, local, remote, recovery...)
	attempt, err := rclone.Run(cmd)
	if err != nil {
		return nil, fmt.Errorf("rclone bisync for job %s (%s <-> %s): %w", job.Name, local, remote, err)
	}
	return attempt, nil
}

func (r *Runner) lockPath(job *config.Job) string {
	path := strings.TrimSpace(job.LockFile)
	if path == "" {
		path = config.DefaultLockFile
	}
	return utils.ExpandHome(path, r.Home)
}

func (r *Runner) logDir(job *config.Job) string {
	dir := strings.TrimSpace(job.LogDir)
	if dir == "" {
		return filepath.Join(r.Home, "logs", "rclone-sync")
	}
	return utils.ExpandHome(dir, r.Home)
}

// appendChunk joins non-empty output chunks with single newlines.
func appendChunk(b *strings.Builder, chunk string) {
	if chunk == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(chunk)
}
