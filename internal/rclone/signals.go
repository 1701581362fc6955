package rclone

import (
	"strconv"
	"strings"
)

// Signal phrases and counters scraped from rclone bisync output. rclone has
// no machine-readable protocol for these, so everything here is best-effort
// text matching kept in one place for when the wording changes upstream.

var resyncPhrases = []string{
	"cannot find prior path1 or path2 listings",
	"must run --resync",
	"bisync aborted",
}

// NeedsResync reports whether the attempt output indicates bisync lost its
// listing state and requires a --resync pass to recover.
func NeedsResync(stdout, stderr string) bool {
	combined := strings.ToLower(stdout + "\n" + stderr)
	for _, phrase := range resyncPhrases {
		if strings.Contains(combined, phrase) {
			return true
		}
	}
	return false
}

const priorLockMarker = "prior lock file found:"

// PriorLockFile extracts the path of the leftover bisync lock file named in
// the attempt output, if any.
func PriorLockFile(stdout, stderr string) (string, bool) {
	for _, line := range outputLines(stdout, stderr) {
		_, rest, found := strings.Cut(line, priorLockMarker)
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) > 0 && fields[0] != "" {
			return fields[0], true
		}
	}
	return "", false
}

// ChangedItems derives the number of changed items from bisync output.
// Per-pair "Path1:/Path2: N changes:" counters are preferred and summed
// across pairs; otherwise the Transferred:/Copied: completion counts are
// used as a fallback. Returns false when neither signal is present.
func ChangedItems(text string) (int, bool) {
	if total, ok := sumPathChanges(text); ok {
		return total, true
	}

	transferred, okT := lastCompletedCount(text, "Transferred:")
	copied, okC := lastCompletedCount(text, "Copied:")
	switch {
	case okT && okC:
		return transferred + copied, true
	case okT:
		return transferred, true
	case okC:
		return copied, true
	}
	return 0, false
}

// sumPathChanges sums the per-pair change counters, e.g.
//
//	2026/01/11 22:25:26 INFO  : Path1:   40 changes:    4 new,   36 newer, ...
func sumPathChanges(text string) (int, bool) {
	total := 0
	sawAny := false

	for _, line := range strings.Split(text, "\n") {
		for _, label := range []string{"Path1:", "Path2:"} {
			_, after, found := strings.Cut(line, label)
			if !found {
				continue
			}
			fields := strings.Fields(after)
			if len(fields) < 2 || !strings.HasPrefix(fields[1], "changes") {
				continue
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				continue
			}
			total += n
			sawAny = true
		}
	}

	return total, sawAny
}

// lastCompletedCount extracts the completed count from progress lines like
//
//	Transferred:          262 / 262, 100%
//
// preferring the last 100% line and falling back to the last line at any
// percentage.
func lastCompletedCount(text, label string) (int, bool) {
	last100 := -1
	lastAny := -1

	for _, line := range strings.Split(text, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), label)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)

		_, afterSlash, found := strings.Cut(rest, " / ")
		if !found {
			continue
		}
		numStr, _, found := strings.Cut(afterSlash, ",")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(numStr))
		if err != nil {
			continue
		}

		if strings.Contains(rest, "100%") {
			last100 = n
		} else {
			lastAny = n
		}
	}

	if last100 >= 0 {
		return last100, true
	}
	if lastAny >= 0 {
		return lastAny, true
	}
	return 0, false
}

func outputLines(stdout, stderr string) []string {
	lines := strings.Split(stdout, "\n")
	return append(lines, strings.Split(stderr, "\n")...)
}
