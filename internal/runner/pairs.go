package runner

import (
	"strings"

	"github.com/bisync-tools/bisyncd/internal/config"
)

// pairsFor expands a job into its execution units: the configured pair list,
// or the single implicit base pair when none are configured.
func pairsFor(job *config.Job) []config.Pair {
	if len(job.Pairs) == 0 {
		return []config.Pair{{Local: job.LocalPath, Remote: job.Remote}}
	}
	return job.Pairs
}

// resolvePair turns a pair's (possibly relative) values into the concrete
// local path and remote for one bisync invocation. An absolute local is used
// verbatim, empty falls back to the base, anything else joins the base as a
// suffix. A remote containing ":" is already fully qualified; a suffix is
// appended to the base, which may or may not carry its own trailing
// separator ("gdrive:" vs "gdrive:base").
func resolvePair(job *config.Job, pair config.Pair) (string, string) {
	local := strings.TrimSpace(pair.Local)
	remote := strings.TrimSpace(pair.Remote)

	var resolvedLocal string
	switch {
	case strings.HasPrefix(local, "/"):
		resolvedLocal = local
	case local == "":
		resolvedLocal = job.LocalPath
	default:
		resolvedLocal = strings.TrimSuffix(job.LocalPath, "/") + "/" + local
	}

	var resolvedRemote string
	switch {
	case strings.Contains(remote, ":"):
		resolvedRemote = remote
	case remote == "":
		resolvedRemote = job.Remote
	default:
		base := strings.TrimSuffix(job.Remote, "/")
		if strings.HasSuffix(base, ":") {
			resolvedRemote = base + remote
		} else {
			resolvedRemote = base + "/" + remote
		}
	}

	return resolvedLocal, resolvedRemote
}
