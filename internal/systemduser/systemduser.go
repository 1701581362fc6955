// Package systemduser manages the per-job systemd --user timer and service
// units by shelling out to systemctl --user.
package systemduser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bisync-tools/bisyncd/internal/utils"
)

// TimerStatus describes the scheduling state of one job's timer unit.
type TimerStatus struct {
	Unit       string
	Installed  bool
	Enabled    bool
	Active     bool
	NextElapse string
}

// Client writes unit files under the systemd user directory and drives
// systemctl --user.
type Client struct {
	unitDir string

	// executable returns the binary the service unit should run.
	executable func() (string, error)
}

// New resolves the systemd user unit directory
// ($XDG_CONFIG_HOME/systemd/user, HOME fallback).
func New() (*Client, error) {
	dir, err := unitDir()
	if err != nil {
		return nil, err
	}
	return NewAt(dir), nil
}

// NewAt builds a client writing units under the given directory.
func NewAt(dir string) *Client {
	return &Client{unitDir: dir, executable: os.Executable}
}

func unitDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "systemd", "user"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user"), nil
}

func ServiceUnit(job string) string {
	return fmt.Sprintf("bisyncd@%s.service", job)
}

func TimerUnit(job string) string {
	return fmt.Sprintf("bisyncd@%s.timer", job)
}

// Install writes (or rewrites) the service and timer unit files for a job
// and reloads the user daemon. It does not enable the timer.
func (c *Client) Install(ctx context.Context, job string) error {
	if err := utils.EnsureDir(c.unitDir); err != nil {
		return fmt.Errorf("create unit dir %s: %w", c.unitDir, err)
	}

	exe, err := c.executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	servicePath := filepath.Join(c.unitDir, ServiceUnit(job))
	if err := os.WriteFile(servicePath, []byte(serviceUnitText(job, exe)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", servicePath, err)
	}

	timerPath := filepath.Join(c.unitDir, TimerUnit(job))
	if err := os.WriteFile(timerPath, []byte(timerUnitText(job)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", timerPath, err)
	}

	return systemctl(ctx, "daemon-reload")
}

// Enable turns the timer on immediately.
func (c *Client) Enable(ctx context.Context, job string) error {
	return systemctl(ctx, "enable", "--now", TimerUnit(job))
}

// Disable stops and disables the timer.
func (c *Client) Disable(ctx context.Context, job string) error {
	return systemctl(ctx, "disable", "--now", TimerUnit(job))
}

// Status reports whether the units are installed, enabled, and active, plus
// the timer's next elapse when one is scheduled.
func (c *Client) Status(ctx context.Context, job string) (*TimerStatus, error) {
	unit := TimerUnit(job)

	installed := utils.FileExists(filepath.Join(c.unitDir, unit)) &&
		utils.FileExists(filepath.Join(c.unitDir, ServiceUnit(job)))

	st := &TimerStatus{
		Unit:      unit,
		Installed: installed,
		Enabled:   unitCheck(ctx, "is-enabled", unit),
		Active:    unitCheck(ctx, "is-active", unit),
	}

	// list-timers is the most reliable user-facing representation for
	// calendar timers; `show -p NextElapseUSecRealtime` is the fallback.
	if next, err := nextFromListTimers(ctx, unit); err == nil && next != "" {
		st.NextElapse = next
	} else if raw, err := showProperty(ctx, unit, "NextElapseUSecRealtime"); err == nil {
		st.NextElapse = parseNextElapse(raw)
	}

	return st, nil
}

func serviceUnitText(job, exe string) string {
	return fmt.Sprintf(`[Unit]
Description=rclone bisync job (%s)

[Service]
Type=oneshot
ExecStart=%s run --job %s
`, job, exe, job)
}

func timerUnitText(job string) string {
	return fmt.Sprintf(`[Unit]
Description=Run rclone bisync job (%s) hourly

[Timer]
OnCalendar=hourly
Persistent=true
Unit=%s

[Install]
WantedBy=timers.target
`, job, ServiceUnit(job))
}

func systemctl(ctx context.Context, args ...string) error {
	output, err := systemctlOutput(ctx, args...)
	if err != nil {
		return fmt.Errorf("systemctl --user %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(output))
	}
	return nil
}

func systemctlOutput(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "systemctl", append([]string{"--user"}, args...)...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func unitCheck(ctx context.Context, verb, unit string) bool {
	_, err := systemctlOutput(ctx, verb, unit)
	return err == nil
}

func showProperty(ctx context.Context, unit, prop string) (string, error) {
	out, err := systemctlOutput(ctx, "show", unit, "-p", prop)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if value, ok := strings.CutPrefix(line, prop+"="); ok {
			return value, nil
		}
	}
	return "", nil
}

// nextFromListTimers parses the NEXT column of `systemctl --user list-timers
// --no-legend <unit>`, e.g.
//
//	Tue 2026-01-06 14:05:00 CET 55min left Tue 2026-01-06 13:10:00 CET ... <unit>
func nextFromListTimers(ctx context.Context, unit string) (string, error) {
	out, err := systemctlOutput(ctx, "list-timers", "--all", "--no-pager", "--no-legend", unit)
	if err != nil {
		return "", err
	}
	return parseListTimersNext(out), nil
}

func parseListTimersNext(out string) string {
	line := strings.TrimSpace(strings.Split(out, "\n")[0])
	if line == "" {
		return ""
	}
	tokens := strings.Fields(line)
	if len(tokens) < 3 || strings.EqualFold(tokens[0], "n/a") || tokens[0] == "-" {
		return ""
	}

	next := tokens[:3]
	// Include the timezone token when it looks like one.
	if len(tokens) >= 4 && looksLikeTimezone(tokens[3]) {
		next = tokens[:4]
	}
	return strings.Join(next, " ")
}

func looksLikeTimezone(s string) bool {
	if len(s) == 0 || len(s) > 6 {
		return false
	}
	for _, c := range s {
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlpha && c != '_' && c != '/' {
			return false
		}
	}
	return true
}

// parseNextElapse normalizes the NextElapseUSecRealtime property, which is
// either a human-readable timestamp or raw microseconds depending on the
// systemd version. Empty, "n/a", and "0" mean no elapse is scheduled.
func parseNextElapse(value string) string {
	s := strings.TrimSpace(value)
	if s == "" || strings.EqualFold(s, "n/a") || s == "0" {
		return ""
	}

	if us, err := strconv.ParseUint(s, 10, 64); err == nil {
		ts := time.UnixMicro(int64(us)).Local()
		return ts.Format("2006-01-02 15:04:05")
	}

	return s
}
