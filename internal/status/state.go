package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/bisync-tools/bisyncd/internal/rclone"
	"github.com/bisync-tools/bisyncd/internal/runner"
)

// maxPreviewLines is how many trailing output lines the state keeps for
// display surfaces.
const maxPreviewLines = 6

// SyncState is the persisted per-job run summary consumed by the status
// command and the notifier.
type SyncState struct {
	Job              string     `json:"job"`
	LastRun          *time.Time `json:"last_run,omitempty"`
	LastSuccess      *time.Time `json:"last_success,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
	LogPreview       []string   `json:"log_preview"`
	RemoteSummary    string     `json:"remote_summary,omitempty"`
	LastExitCode     *int       `json:"last_exit_code,omitempty"`
	LastLogFile      string     `json:"last_log_file,omitempty"`
	LastChangedCount *int       `json:"last_changed_count,omitempty"`
	LastDurationSecs *int64     `json:"last_duration_secs,omitempty"`
}

func newState(job string) SyncState {
	return SyncState{Job: job, LogPreview: []string{}}
}

// UpdateFromResult folds one run's outcome into the state. A zero exit
// stamps a fresh success and clears the error; a failure preserves the
// previous success timestamp and records the synopsis.
func (s *SyncState) UpdateFromResult(res *runner.RunResult) {
	ts := res.Timestamp
	exit := res.ExitCode
	secs := int64(res.Duration.Seconds())

	s.LastRun = &ts
	s.LastExitCode = &exit
	s.LogPreview = previewLines(res.Stdout, res.Stderr)
	s.RemoteSummary = remoteSummary(res.Stdout, res.Stderr)
	s.LastLogFile = res.LogFile
	s.LastDurationSecs = &secs

	s.LastChangedCount = nil
	if n, ok := rclone.ChangedItems(res.Stdout + "\n" + res.Stderr); ok {
		s.LastChangedCount = &n
	}

	if exit == 0 {
		s.LastSuccess = &ts
		s.LastError = ""
	} else {
		s.LastError = errorSummary(res.Stderr, exit)
	}
}

// previewLines keeps the last few non-empty output lines, stdout before
// stderr.
func previewLines(stdout, stderr string) []string {
	preview := []string{}
	for _, line := range outputLines(stdout, stderr) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(preview) == maxPreviewLines {
			preview = preview[1:]
		}
		preview = append(preview, line)
	}
	return preview
}

// errorSummary is the last non-empty stderr line, or a generic message when
// stderr is blank but the exit code is non-zero.
func errorSummary(stderr string, exitCode int) string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed != "" {
		lines := strings.Split(trimmed, "\n")
		return strings.TrimSpace(lines[len(lines)-1])
	}
	if exitCode != 0 {
		return fmt.Sprintf("Exited with code %d", exitCode)
	}
	return ""
}

// remoteSummary is the first non-empty output line mentioning the remote.
func remoteSummary(stdout, stderr string) string {
	for _, line := range outputLines(stdout, stderr) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "remote") || strings.Contains(lower, "drive") || strings.Contains(lower, "sync") {
			return line
		}
	}
	return ""
}

func outputLines(stdout, stderr string) []string {
	lines := strings.Split(stdout, "\n")
	return append(lines, strings.Split(stderr, "\n")...)
}
