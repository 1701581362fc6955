package lock

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bisync-tools/bisyncd/internal/utils"
	"github.com/shirou/gopsutil/v4/process"
)

// AlreadyRunningError reports that another live process holds the run lock.
// Callers treat this as contention, not failure.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("sync already running (PID: %d)", e.PID)
}

// Guard is a held run lock. Release must run on every exit path; it is
// idempotent.
type Guard struct {
	path     string
	released bool
}

// Acquire takes the run lock at path by writing the current PID into it.
// A lock file holding a live PID yields *AlreadyRunningError; a dead or
// garbled lock is reclaimed.
func Acquire(path string) (*Guard, error) {
	if data, err := os.ReadFile(path); err == nil {
		if pid, ok := parsePID(string(data)); ok && pidAlive(pid) {
			return nil, &AlreadyRunningError{PID: pid}
		}
		// Dead holder or unparsable content: the lock is abandoned.
		slog.Debug("reclaiming stale run lock", "path", path)
		_ = os.Remove(path)
	}

	if err := utils.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("create lock dir for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Another process beat us to it; re-read and report the holder.
			pid := 0
			if data, readErr := os.ReadFile(path); readErr == nil {
				pid, _ = parsePID(string(data))
			}
			return nil, &AlreadyRunningError{PID: pid}
		}
		return nil, fmt.Errorf("create lock file %s: %w", path, err)
	}

	_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(path)
		if werr == nil {
			werr = cerr
		}
		return nil, fmt.Errorf("write lock file %s: %w", path, werr)
	}

	return &Guard{path: path}, nil
}

// Release deletes the lock file.
func (g *Guard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove run lock", "path", g.path, "error", err)
	}
}

func (g *Guard) Path() string {
	return g.path
}

// RunningInfo describes a live run detected via its lock file.
type RunningInfo struct {
	PID       int
	StartedAt time.Time
}

// DetectRunning reports whether a sync is in progress per the lock file at
// path. A dead holder's lock is removed best-effort and counts as not
// running.
func DetectRunning(path string) (*RunningInfo, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	pid, ok := parsePID(string(data))
	if !ok {
		return nil, false
	}
	if !pidAlive(pid) {
		_ = os.Remove(path)
		return nil, false
	}

	info := &RunningInfo{PID: pid}
	if st, err := os.Stat(path); err == nil {
		info.StartedAt = st.ModTime()
	}
	return info, true
}

func parsePID(content string) (int, bool) {
	line, _, _ := strings.Cut(content, "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func pidAlive(pid int) bool {
	alive, err := process.PidExists(int32(pid))
	return err == nil && alive
}
