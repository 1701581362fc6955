package rclone

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
)

// Attempt is the captured outcome of one subprocess invocation. A non-zero
// exit code is data for the recovery policy, not an error.
type Attempt struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes cmd to completion and captures both streams. It returns an
// error only when the subprocess could not be spawned at all.
func Run(cmd *exec.Cmd) (*Attempt, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	attempt := &Attempt{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("execute %s: %w", cmd.Path, err)
		}
		attempt.ExitCode = exitErr.ExitCode()
	}

	return attempt, nil
}
