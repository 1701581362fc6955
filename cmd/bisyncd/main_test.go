package main

import (
	"path/filepath"
	"testing"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestJobLockPath(t *testing.T) {
	job := config.DefaultJob("j")
	assert.Equal(t, config.DefaultLockFile, jobLockPath(job))

	job.LockFile = "   "
	assert.Equal(t, config.DefaultLockFile, jobLockPath(job), "blank override falls back to the default")

	job.LockFile = "/run/user/1000/sync.lock"
	assert.Equal(t, "/run/user/1000/sync.lock", jobLockPath(job))

	job.LockFile = "~/locks/sync.lock"
	assert.Equal(t, filepath.Join(home, "locks", "sync.lock"), jobLockPath(job))
}

func TestTailLines(t *testing.T) {
	assert.Equal(t, []string{"c", "d"}, tailLines("a\nb\nc\nd\n", 2))
	assert.Equal(t, []string{"a", "b"}, tailLines("a\nb", 5), "short input returned whole")
	assert.Equal(t, []string{""}, tailLines("", 3))
}
