package lock

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bisync-tools/bisyncd/internal/utils"
	"github.com/shirou/gopsutil/v4/process"
)

// staleAge is how old an unstamped bisync lock file must be before it is
// considered abandoned while a bisync process might still be running.
const staleAge = 60 * time.Minute

// Reclaimer removes bisync's own leftover .lck files. Everything here is
// best-effort housekeeping: failures are logged at debug and swallowed.
type Reclaimer struct {
	// CacheDir is bisync's internal lock directory,
	// typically ~/.cache/rclone/bisync.
	CacheDir string

	// IsBisyncRunning reports whether any rclone bisync process is running
	// system-wide. Overridable in tests.
	IsBisyncRunning func() bool
}

// NewReclaimer builds a reclaimer for the given home directory.
func NewReclaimer(home string) *Reclaimer {
	return &Reclaimer{
		CacheDir:        filepath.Join(home, ".cache", "rclone", "bisync"),
		IsBisyncRunning: bisyncRunning,
	}
}

// CleanCacheLocks sweeps .lck files from the bisync cache directory. When no
// bisync process is detected the sweep removes all of them; otherwise only
// locks with a dead recorded PID, or unstamped locks older than an hour, go.
func (r *Reclaimer) CleanCacheLocks() {
	entries, err := os.ReadDir(r.CacheDir)
	if err != nil {
		return
	}

	running := r.bisyncDetected()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lck") {
			continue
		}
		path := filepath.Join(r.CacheDir, entry.Name())
		if !running {
			remove(path)
			continue
		}
		if r.stale(path, false) {
			remove(path)
		}
	}
}

// RemoveStale deletes the named lock file when it is stale per the same
// liveness/age test the cache sweep uses. Reports whether a removal
// happened.
func (r *Reclaimer) RemoveStale(path string) bool {
	if !utils.FileExists(path) {
		return false
	}
	if !r.stale(path, true) {
		return false
	}
	remove(path)
	return true
}

// stale reports whether a lock file's recorded PID is dead, or, with no
// usable PID, the file is older than staleAge. When requireIdle is set an
// unstamped lock is only stale while no bisync process is around.
func (r *Reclaimer) stale(path string, requireIdle bool) bool {
	if data, err := os.ReadFile(path); err == nil {
		if pid, ok := parsePID(string(data)); ok {
			return !pidAlive(pid)
		}
	}
	if requireIdle && r.bisyncDetected() {
		return false
	}
	return utils.FileOlderThan(path, staleAge)
}

func (r *Reclaimer) bisyncDetected() bool {
	if r.IsBisyncRunning != nil {
		return r.IsBisyncRunning()
	}
	return bisyncRunning()
}

func remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Debug("failed to remove stale bisync lock", "path", path, "error", err)
		return
	}
	slog.Debug("removed stale bisync lock", "path", path)
}

// bisyncRunning scans the process table for a live `rclone ... bisync ...`
// command line.
func bisyncRunning() bool {
	procs, err := process.Processes()
	if err != nil {
		return false
	}
	for _, p := range procs {
		cmdline, err := p.Cmdline()
		if err != nil {
			continue
		}
		if strings.Contains(cmdline, "rclone") && strings.Contains(cmdline, "bisync") {
			return true
		}
	}
	return false
}
