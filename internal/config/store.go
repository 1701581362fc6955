package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bisync-tools/bisyncd/internal/utils"
)

const appDirName = "bisyncd"

// Store reads and writes per-job TOML configuration files under
// <dir>/jobs/<name>.toml.
type Store struct {
	dir string
}

// DefaultDir returns the application configuration directory,
// typically ~/.config/bisyncd.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) JobsDir() string {
	return filepath.Join(s.dir, "jobs")
}

// JobPath returns the config file path for a job, whether or not it exists.
func (s *Store) JobPath(name string) string {
	return filepath.Join(s.JobsDir(), name+".toml")
}

// Load reads and decodes one job config. Missing fields keep the policy
// defaults; a legacy directories list is migrated into pairs.
func (s *Store) Load(name string) (*Job, error) {
	path := s.JobPath(name)
	job := DefaultJob(name)
	if _, err := toml.DecodeFile(path, job); err != nil {
		return nil, fmt.Errorf("parse job config %s: %w", path, err)
	}
	if strings.TrimSpace(job.Name) == "" {
		job.Name = name
	}
	job.migrate()
	return job, nil
}

// Save encodes the job back to its config file.
func (s *Store) Save(job *Job) error {
	path := s.JobPath(job.Name)
	if err := utils.EnsureParent(path); err != nil {
		return fmt.Errorf("create jobs dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(job); err != nil {
		return fmt.Errorf("encode job config %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write job config %s: %w", path, err)
	}
	return nil
}

// LoadOrCreate loads a job config, writing a commented template on first use.
func (s *Store) LoadOrCreate(name string) (*Job, error) {
	path := s.JobPath(name)
	if utils.FileExists(path) {
		return s.Load(name)
	}

	if err := utils.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("create jobs dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(jobTemplate(name)), 0o644); err != nil {
		return nil, fmt.Errorf("write job template %s: %w", path, err)
	}
	return DefaultJob(name), nil
}

// List returns the names of all configured jobs, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.JobsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read jobs dir %s: %w", s.JobsDir(), err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := strings.CutSuffix(e.Name(), ".toml"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

func jobTemplate(name string) string {
	return fmt.Sprintf(`name = %q
local_path = ""
remote = ""

# Flags passed to every rclone invocation (non-secret flags only).
# extra_args = ["--drive-skip-gdocs"]

# Alternate rclone config file.
# rclone_config_path = "/home/user/.config/rclone/rclone.conf"

# Local/remote pairs. If empty, a single bisync runs local_path <-> remote.
# Relative values are resolved against local_path / remote.
# [[pairs]]
# local = "Documents"
# remote = "Documents"

# lock_file = "/tmp/rclone-sync.lock"
# log_dir = "~/logs/rclone-sync"

auto_resync = true
clean_bisync_locks = true
use_nice_ionice = true
`, name)
}
