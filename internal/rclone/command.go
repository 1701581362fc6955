package rclone

import (
	"os/exec"
	"strings"

	"github.com/bisync-tools/bisyncd/internal/config"
)

const DefaultTool = "rclone"

// Builder constructs rclone bisync invocations for a job.
type Builder struct {
	// Tool is the rclone binary to invoke. Defaults to "rclone".
	Tool string

	// lookPath resolves wrapper binaries; overridable in tests.
	lookPath func(string) (string, error)
}

func NewBuilder(tool string) *Builder {
	if tool == "" {
		tool = DefaultTool
	}
	return &Builder{Tool: tool, lookPath: exec.LookPath}
}

// Build returns the command for one bisync attempt:
//
//	<tool> bisync <local> <remote> [--config <path>] [extra...] [recovery...]
//
// wrapped with `nice -n 19 ionice -c 3` when the job allows it and both
// wrappers are present on the host.
func (b *Builder) Build(job *config.Job, local, remote string, recovery ...string) *exec.Cmd {
	args := []string{"bisync", local, remote}

	if path := strings.TrimSpace(job.RcloneConfigPath); path != "" {
		args = append(args, "--config", path)
	}

	args = append(args, job.ExtraArgs...)
	args = append(args, recovery...)

	if job.UseNiceIonice && b.wrapperAvailable("nice") && b.wrapperAvailable("ionice") {
		wrapped := []string{"-n", "19", "ionice", "-c", "3", b.Tool}
		return exec.Command("nice", append(wrapped, args...)...)
	}

	return exec.Command(b.Tool, args...)
}

func (b *Builder) wrapperAvailable(name string) bool {
	lookPath := b.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(name)
	return err == nil
}
