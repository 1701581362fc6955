package rclone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsResync(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		stderr string
		want   bool
	}{
		{
			name:   "missing listings",
			stderr: "2026/01/07 ERROR : Bisync critical error: cannot find prior Path1 or Path2 listings, likely due to critical error on prior run",
			want:   true,
		},
		{
			name:   "must run resync",
			stderr: "Must run --resync to recover.",
			want:   true,
		},
		{
			name:   "aborted",
			stdout: "NOTICE: Bisync aborted. Must run --resync to recover.",
			want:   true,
		},
		{
			name:   "case insensitive",
			stderr: "CANNOT FIND PRIOR PATH1 OR PATH2 LISTINGS",
			want:   true,
		},
		{
			name:   "clean run",
			stdout: "INFO : Bisync successful",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsResync(tt.stdout, tt.stderr))
		})
	}
}

func TestPriorLockFile(t *testing.T) {
	stderr := "2026/01/07 ERROR : Bisync critical error: prior lock file found: /home/u/.cache/rclone/bisync/path1..path2.lck\nNOTICE: Bisync aborted."
	path, ok := PriorLockFile("", stderr)
	assert.True(t, ok)
	assert.Equal(t, "/home/u/.cache/rclone/bisync/path1..path2.lck", path)

	_, ok = PriorLockFile("all good", "")
	assert.False(t, ok)

	// Marker with nothing after it yields no path.
	_, ok = PriorLockFile("", "prior lock file found:   ")
	assert.False(t, ok)
}

func TestChangedItems_SumsPathChangesAcrossPairs(t *testing.T) {
	text := `2026/01/11 22:25:26 INFO  : Path1:   40 changes:    4 new,   36 newer,    0 older,    0 deleted
2026/01/11 22:28:49 INFO  : Path1:    5 changes:    0 new,    4 newer,    0 older,    1 deleted
2026/01/11 22:33:08 INFO  : No changes found
2026/01/11 22:33:08 NOTICE:
Transferred:   	          0 B / 0 B, -, 0 B/s, ETA -`

	n, ok := ChangedItems(text)
	assert.True(t, ok)
	assert.Equal(t, 45, n, "sums 40 + 5 across pairs")
}

func TestChangedItems_Prefers100PercentTransferredLine(t *testing.T) {
	text := `2026/01/07 01:34:44 NOTICE:
Transferred:   	   72.278 MiB / 73.224 MiB, 99%, 2.528 MiB/s, ETA 0s
Checks:                29 / 29, 100%
Transferred:           52 / 262, 20%
Elapsed time:       4m0.6s
2026/01/07 01:35:44 NOTICE:
Transferred:           195 / 262, 74%
Elapsed time:       5m0.6s
2026/01/07 01:36:44 NOTICE:
Transferred:          262 / 262, 100%
Elapsed time:       6m0.6s`

	n, ok := ChangedItems(text)
	assert.True(t, ok)
	assert.Equal(t, 262, n, "extracts from the 100%% completion line")
}

func TestChangedItems_FallsBackToPartialLine(t *testing.T) {
	n, ok := ChangedItems("Transferred:           52 / 262, 20%")
	assert.True(t, ok)
	assert.Equal(t, 262, n, "uses the total from the last partial line when no 100%% line exists")
}

func TestChangedItems_SumsTransferredAndCopied(t *testing.T) {
	text := `Transferred:          10 / 10, 100%
Copied:                3 / 3, 100%`
	n, ok := ChangedItems(text)
	assert.True(t, ok)
	assert.Equal(t, 13, n)
}

func TestChangedItems_LastOfMultiple100PercentLines(t *testing.T) {
	text := `Transferred:          100 / 100, 100%
Transferred:          262 / 262, 100%`
	n, ok := ChangedItems(text)
	assert.True(t, ok)
	assert.Equal(t, 262, n)
}

func TestChangedItems_NoSignals(t *testing.T) {
	_, ok := ChangedItems("INFO : Bisync successful\nElapsed time: 1.2s")
	assert.False(t, ok)
}

func TestChangedItems_IgnoresByteProgressLines(t *testing.T) {
	text := `Transferred:   	   73.224 MiB / 73.224 MiB, 100%, 262.263 KiB/s, ETA 0s
Checks:                30 / 30, 100%
Transferred:          262 / 262, 100%`
	n, ok := ChangedItems(text)
	assert.True(t, ok)
	assert.Equal(t, 262, n, "byte-size lines are not item counts")
}
