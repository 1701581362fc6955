package runner

import (
	"testing"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestPairsFor(t *testing.T) {
	job := &config.Job{Name: "j", LocalPath: "/home/u", Remote: "gdrive:"}
	assert.Equal(t, []config.Pair{{Local: "/home/u", Remote: "gdrive:"}}, pairsFor(job),
		"no explicit pairs yields the single implicit base pair")

	job.Pairs = []config.Pair{{Local: "a", Remote: "a"}, {Local: "b", Remote: "b"}}
	assert.Equal(t, job.Pairs, pairsFor(job), "explicit pairs are used verbatim")
}

func TestResolvePair(t *testing.T) {
	base := &config.Job{Name: "j", LocalPath: "/home/u", Remote: "gdrive:"}

	tests := []struct {
		name       string
		job        *config.Job
		pair       config.Pair
		wantLocal  string
		wantRemote string
	}{
		{
			name:       "relative suffixes join the base",
			job:        base,
			pair:       config.Pair{Local: "foo", Remote: "sub"},
			wantLocal:  "/home/u/foo",
			wantRemote: "gdrive:sub",
		},
		{
			name:       "absolute local used verbatim",
			job:        base,
			pair:       config.Pair{Local: "/other", Remote: "sub"},
			wantLocal:  "/other",
			wantRemote: "gdrive:sub",
		},
		{
			name:       "empty values fall back to the base",
			job:        base,
			pair:       config.Pair{},
			wantLocal:  "/home/u",
			wantRemote: "gdrive:",
		},
		{
			name:       "qualified remote used verbatim",
			job:        base,
			pair:       config.Pair{Local: "foo", Remote: "box:backup/foo"},
			wantLocal:  "/home/u/foo",
			wantRemote: "box:backup/foo",
		},
		{
			name:       "remote base with its own path gets a separator",
			job:        &config.Job{LocalPath: "/home/u", Remote: "gdrive:base"},
			pair:       config.Pair{Local: "foo", Remote: "sub"},
			wantLocal:  "/home/u/foo",
			wantRemote: "gdrive:base/sub",
		},
		{
			name:       "trailing slashes on bases are not doubled",
			job:        &config.Job{LocalPath: "/home/u/", Remote: "gdrive:base/"},
			pair:       config.Pair{Local: "foo", Remote: "sub"},
			wantLocal:  "/home/u/foo",
			wantRemote: "gdrive:base/sub",
		},
		{
			name:       "whitespace-only values count as empty",
			job:        base,
			pair:       config.Pair{Local: "  ", Remote: "\t"},
			wantLocal:  "/home/u",
			wantRemote: "gdrive:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, remote := resolvePair(tt.job, tt.pair)
			assert.Equal(t, tt.wantLocal, local)
			assert.Equal(t, tt.wantRemote, remote)
		})
	}
}
