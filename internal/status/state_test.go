package status

import (
	"testing"
	"time"

	"github.com/bisync-tools/bisyncd/internal/runner"
	"github.com/stretchr/testify/assert"
)

func sampleResult(exitCode int, stdout, stderr string) *runner.RunResult {
	return &runner.RunResult{
		Timestamp: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
		ExitCode:  exitCode,
		Stdout:    stdout,
		Stderr:    stderr,
		LogFile:   "/tmp/logs/sync_20240105_120000.log",
		Duration:  123 * time.Second,
	}
}

func TestPreviewLines_LimitsAndSkipsEmpty(t *testing.T) {
	preview := previewLines("line1\n\nline2\nline3\nline4\nline5\nline6\nline7", "")
	assert.Len(t, preview, maxPreviewLines)
	assert.Equal(t, "line2", preview[0])
	assert.Equal(t, "line7", preview[len(preview)-1])
}

func TestPreviewLines_StdoutBeforeStderr(t *testing.T) {
	preview := previewLines("out", "err")
	assert.Equal(t, []string{"out", "err"}, preview)
}

func TestErrorSummary_PrefersLastStderrLine(t *testing.T) {
	assert.Equal(t, "more", errorSummary("first err\nmore", 1))
	assert.Equal(t, "Exited with code 3", errorSummary("", 3))
	assert.Equal(t, "Exited with code 3", errorSummary("  \n ", 3))
	assert.Empty(t, errorSummary("", 0))
}

func TestRemoteSummary_MatchesKeywords(t *testing.T) {
	assert.Equal(t, "Syncing local -> Remote Drive", remoteSummary("Syncing local -> Remote Drive", ""))
	assert.Equal(t, "Bisync successful", remoteSummary("done\nBisync successful", ""), "sync keyword matches case-insensitively")
	assert.Empty(t, remoteSummary("nothing relevant", ""))
}

func TestUpdateFromResult_SuccessAndFailure(t *testing.T) {
	state := newState("default")

	state.UpdateFromResult(sampleResult(0, "remote state reached", ""))
	assert.NotNil(t, state.LastSuccess)
	assert.Empty(t, state.LastError)
	assert.Equal(t, 0, *state.LastExitCode)
	assert.Equal(t, int64(123), *state.LastDurationSecs)
	assert.Equal(t, "/tmp/logs/sync_20240105_120000.log", state.LastLogFile)

	prevSuccess := *state.LastSuccess
	state.UpdateFromResult(sampleResult(2, "attempt", "failed"))
	assert.Equal(t, "failed", state.LastError)
	assert.Equal(t, 2, *state.LastExitCode)
	assert.Equal(t, prevSuccess, *state.LastSuccess, "failure keeps the previous success timestamp")
}

func TestUpdateFromResult_ChangedCountFromPathChanges(t *testing.T) {
	stderr := `2026/01/11 22:25:26 INFO  : Path1:   40 changes:    4 new,   36 newer,    0 older,    0 deleted
2026/01/11 22:28:49 INFO  : Path1:    5 changes:    0 new,    4 newer,    0 older,    1 deleted`
	state := newState("default")
	state.UpdateFromResult(sampleResult(0, "", stderr))

	assert.NotNil(t, state.LastChangedCount)
	assert.Equal(t, 45, *state.LastChangedCount, "sums across pairs")
}

func TestUpdateFromResult_ChangedCountFromTransferred(t *testing.T) {
	stderr := `Transferred:           52 / 262, 20%
Transferred:          262 / 262, 100%`
	state := newState("default")
	state.UpdateFromResult(sampleResult(0, "", stderr))

	assert.NotNil(t, state.LastChangedCount)
	assert.Equal(t, 262, *state.LastChangedCount)
}

func TestUpdateFromResult_NoCountSignals(t *testing.T) {
	state := newState("default")
	n := 9
	state.LastChangedCount = &n

	state.UpdateFromResult(sampleResult(0, "Bisync successful", ""))
	assert.Nil(t, state.LastChangedCount, "stale count does not linger")
}
