package config

import (
	"fmt"
	"strings"
)

const DefaultLockFile = "/tmp/rclone-sync.lock"

// Pair is one local/remote sync unit within a job. Values may be suffixes
// resolved against the job's base paths at execution time.
type Pair struct {
	Local  string `toml:"local"`
	Remote string `toml:"remote"`
}

// Job holds the configuration for one rclone bisync job.
type Job struct {
	Name      string `toml:"name"`
	LocalPath string `toml:"local_path"`
	Remote    string `toml:"remote"`

	// ExtraArgs are passed to every rclone invocation (non-secret flags only).
	ExtraArgs []string `toml:"extra_args,omitempty"`

	// RcloneConfigPath selects an alternate rclone config file.
	RcloneConfigPath string `toml:"rclone_config_path,omitempty"`

	// Pairs to sync. If empty, a single bisync is run using local_path <-> remote.
	Pairs []Pair `toml:"pairs,omitempty"`

	// Deprecated: older configs used directories instead of pairs.
	Directories []string `toml:"directories,omitempty"`

	// LockFile prevents concurrent runs. Defaults to /tmp/rclone-sync.lock.
	LockFile string `toml:"lock_file,omitempty"`

	// LogDir holds per-run log files. Defaults to $HOME/logs/rclone-sync.
	LogDir string `toml:"log_dir,omitempty"`

	// AutoResync retries with --resync when bisync indicates recovery is required.
	AutoResync bool `toml:"auto_resync"`

	// CleanBisyncLocks removes stale bisync .lck files under
	// $HOME/.cache/rclone/bisync before starting.
	CleanBisyncLocks bool `toml:"clean_bisync_locks"`

	// UseNiceIonice runs rclone under low CPU/IO priority if nice and ionice exist.
	UseNiceIonice bool `toml:"use_nice_ionice"`
}

// DefaultJob returns an unconfigured job with the policy defaults applied.
func DefaultJob(name string) *Job {
	return &Job{
		Name:             name,
		AutoResync:       true,
		CleanBisyncLocks: true,
		UseNiceIonice:    true,
	}
}

// Validate checks that the job can actually produce at least one runnable
// pair. configPath is included in the message so the user knows which file
// to fix.
func (j *Job) Validate(configPath string) error {
	if configPath == "" {
		configPath = "<config file>"
	}

	baseLocalOK := strings.TrimSpace(j.LocalPath) != ""
	baseRemoteOK := strings.TrimSpace(j.Remote) != ""

	if len(j.Pairs) == 0 {
		if baseLocalOK && baseRemoteOK {
			return nil
		}
		return fmt.Errorf("job %q is not configured: set local_path and remote in %s", j.Name, configPath)
	}

	if !baseLocalOK {
		for _, p := range j.Pairs {
			local := strings.TrimSpace(p.Local)
			if local == "" || !strings.HasPrefix(local, "/") {
				return fmt.Errorf("job %q is missing local_path and has a relative/empty pair local %q: update %s", j.Name, p.Local, configPath)
			}
		}
	}

	if !baseRemoteOK {
		for _, p := range j.Pairs {
			remote := strings.TrimSpace(p.Remote)
			if remote == "" || !strings.Contains(remote, ":") {
				return fmt.Errorf("job %q is missing remote and has a non-qualified/empty pair remote %q: update %s", j.Name, p.Remote, configPath)
			}
		}
	}

	return nil
}

// migrate converts a legacy directories list into pairs. Each directory is
// treated as both the local and the remote suffix of one pair.
func (j *Job) migrate() {
	if len(j.Pairs) > 0 {
		return
	}
	for _, d := range j.Directories {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		j.Pairs = append(j.Pairs, Pair{Local: d, Remote: d})
	}
}
