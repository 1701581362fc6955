package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/bisync-tools/bisyncd/internal/rclone"
	"github.com/bisync-tools/bisyncd/internal/utils"
)

// runLog appends human-readable records of each attempt to the per-run log
// file <log_dir>/sync_<YYYYMMDD_HHMMSS>.log.
type runLog struct {
	f *os.File
}

func newRunLog(dir string, ts time.Time) (*runLog, string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, "", fmt.Errorf("create log dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, "sync_"+ts.Format("20060102_150405")+".log")
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create run log %s: %w", path, err)
	}
	return &runLog{f: f}, path, nil
}

func (l *runLog) header(job *config.Job, ts time.Time) {
	fmt.Fprintln(l.f, "=== rclone bisync run started ===")
	fmt.Fprintf(l.f, "job=%s\n", job.Name)
	fmt.Fprintf(l.f, "local_base=%s\n", job.LocalPath)
	fmt.Fprintf(l.f, "remote_base=%s\n", job.Remote)
	fmt.Fprintf(l.f, "timestamp=%s\n", ts.Format(time.RFC3339))
	if len(job.Pairs) > 0 {
		parts := make([]string, 0, len(job.Pairs))
		for _, p := range job.Pairs {
			parts = append(parts, fmt.Sprintf("(%s, %s)", p.Local, p.Remote))
		}
		fmt.Fprintf(l.f, "pairs=[%s]\n", strings.Join(parts, ", "))
	}
}

func (l *runLog) pairHeader(i, n int, local, remote string) {
	fmt.Fprintf(l.f, "\n=== pair %d/%d: %s <-> %s ===\n", i, n, local, remote)
}

func (l *runLog) attempt(label string, a *rclone.Attempt) {
	fmt.Fprintf(l.f, "\n--- attempt=%s (exit=%d) ---\n", label, a.ExitCode)
	if strings.TrimSpace(a.Stdout) != "" {
		fmt.Fprintf(l.f, "STDOUT:\n%s\n", a.Stdout)
	}
	if strings.TrimSpace(a.Stderr) != "" {
		fmt.Fprintf(l.f, "STDERR:\n%s\n", a.Stderr)
	}
	_ = l.f.Sync()
}

func (l *runLog) note(msg string) {
	fmt.Fprintf(l.f, "\n--- note ---\n%s\n", msg)
	_ = l.f.Sync()
}

func (l *runLog) footer(exitCode int) {
	fmt.Fprintf(l.f, "=== rclone bisync run finished (exit=%d) ===\n", exitCode)
}

func (l *runLog) Close() {
	_ = l.f.Close()
}
