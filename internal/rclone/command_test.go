package rclone

import (
	"errors"
	"testing"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/stretchr/testify/assert"
)

func builderWithWrappers(tool string, available bool) *Builder {
	b := NewBuilder(tool)
	b.lookPath = func(name string) (string, error) {
		if available {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	return b
}

func TestBuild_BasicArgs(t *testing.T) {
	job := config.DefaultJob("j")
	job.UseNiceIonice = false

	cmd := builderWithWrappers("rclone", false).Build(job, "/home/u/docs", "gdrive:docs")
	assert.Equal(t, []string{"rclone", "bisync", "/home/u/docs", "gdrive:docs"}, cmd.Args)
}

func TestBuild_ConfigExtraAndRecoveryArgs(t *testing.T) {
	job := config.DefaultJob("j")
	job.UseNiceIonice = false
	job.RcloneConfigPath = "/etc/rclone.conf"
	job.ExtraArgs = []string{"--drive-skip-gdocs", "--fast-list"}

	cmd := builderWithWrappers("rclone", false).Build(job, "/a", "r:b", "--resync")
	assert.Equal(t, []string{
		"rclone", "bisync", "/a", "r:b",
		"--config", "/etc/rclone.conf",
		"--drive-skip-gdocs", "--fast-list",
		"--resync",
	}, cmd.Args)
}

func TestBuild_BlankConfigPathSkipped(t *testing.T) {
	job := config.DefaultJob("j")
	job.UseNiceIonice = false
	job.RcloneConfigPath = "   "

	cmd := builderWithWrappers("rclone", false).Build(job, "/a", "r:b")
	assert.NotContains(t, cmd.Args, "--config")
}

func TestBuild_NiceIoniceWrap(t *testing.T) {
	job := config.DefaultJob("j") // UseNiceIonice defaults true

	cmd := builderWithWrappers("rclone", true).Build(job, "/a", "r:b")
	assert.Equal(t, []string{
		"nice", "-n", "19", "ionice", "-c", "3",
		"rclone", "bisync", "/a", "r:b",
	}, cmd.Args)
}

func TestBuild_WrappersMissingFallsBackToDirect(t *testing.T) {
	job := config.DefaultJob("j")

	cmd := builderWithWrappers("rclone", false).Build(job, "/a", "r:b")
	assert.Equal(t, []string{"rclone", "bisync", "/a", "r:b"}, cmd.Args)
}

func TestNewBuilder_DefaultTool(t *testing.T) {
	assert.Equal(t, "rclone", NewBuilder("").Tool)
	assert.Equal(t, "/opt/rclone", NewBuilder("/opt/rclone").Tool)
}
