package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/bisync-tools/bisyncd/internal/runner"
	"github.com/bisync-tools/bisyncd/internal/utils"
	"github.com/gofrs/flock"
)

// Store persists one job's SyncState as JSON at
// <state-dir>/<job>-status.json. A flock sidecar guards the file against a
// scheduled run and an interactive status read racing each other.
type Store struct {
	path  string
	flock *flock.Flock
	state SyncState
}

// DefaultDir returns the application state directory,
// typically ~/.local/state/bisyncd.
func DefaultDir(home string) string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "bisyncd")
	}
	return filepath.Join(home, ".local", "state", "bisyncd")
}

// StatePath returns the state file path for a job under stateDir.
func StatePath(stateDir, job string) string {
	return filepath.Join(stateDir, job+"-status.json")
}

// Load reads the job's state, starting fresh when the file is missing or
// unreadable.
func Load(stateDir, job string) (*Store, error) {
	if err := utils.EnsureDir(stateDir); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", stateDir, err)
	}

	path := StatePath(stateDir, job)
	s := &Store{
		path:  path,
		flock: flock.New(path + ".lock"),
		state: newState(job),
	}

	locked, err := s.flock.TryRLock()
	if err == nil && locked {
		defer s.flock.Unlock()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, nil
	}
	// A corrupt state file is not worth failing a run over.
	if err := json.Unmarshal(data, &s.state); err != nil {
		s.state = newState(job)
	}
	if s.state.Job == "" {
		s.state.Job = job
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Store) State() SyncState {
	return s.state
}

func (s *Store) Path() string {
	return s.path
}

// Persist writes the state back under the exclusive sidecar lock.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	locked, err := s.flock.TryLock()
	if err == nil && locked {
		defer s.flock.Unlock()
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	return nil
}

// RunSync executes the job, folds the outcome into the state, and persists
// it. The result is returned for the caller's exit-code and notification
// decisions.
func (s *Store) RunSync(r *runner.Runner, job *config.Job) (*runner.RunResult, error) {
	res, err := r.Run(job)
	if err != nil {
		return nil, err
	}
	s.state.UpdateFromResult(res)
	if err := s.Persist(); err != nil {
		return nil, err
	}
	return res, nil
}

// SetLastError records a hard failure message; persistence is best-effort.
func (s *Store) SetLastError(msg string) {
	s.state.LastError = msg
	_ = s.Persist()
}
