package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/bisync-tools/bisyncd/internal/lock"
	"github.com/bisync-tools/bisyncd/internal/rclone"
	"github.com/bisync-tools/bisyncd/internal/runner"
	"github.com/bisync-tools/bisyncd/internal/status"
	"github.com/bisync-tools/bisyncd/internal/utils"
	"github.com/bisync-tools/bisyncd/internal/version"
	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var home, _ = os.UserHomeDir()

var (
	red    = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "bisyncd",
	Short:   "Run, schedule and monitor rclone bisync jobs",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "bisyncd config file (default ~/.config/bisyncd/config.toml)")
}

func main() {
	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	fileHandler := slog.NewTextHandler(&lumberjack.Logger{
		Filename:   filepath.Join(status.DefaultDir(home), "bisyncd.log"),
		MaxSize:    5, // MB
		MaxBackups: 3,
		Compress:   true,
	}, &slog.HandlerOptions{Level: slog.LevelDebug})

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stderrHandler, fileHandler)))
}

func loadSettings(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		path, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".config", "bisyncd"))
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetDefault("default_job", "default")
	viper.SetDefault("rclone_path", rclone.DefaultTool)

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.SetEnvPrefix("BISYNCD")
	viper.AutomaticEnv()
	return nil
}

// jobName resolves the job a command targets: the --job flag when set,
// otherwise the configured default.
func jobName(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("job"); name != "" {
		return name
	}
	return viper.GetString("default_job")
}

func jobStore() (*config.Store, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	return config.NewStore(dir), nil
}

func stateDir() string {
	return status.DefaultDir(home)
}

func newRunner(jobs *config.Store) *runner.Runner {
	return runner.New(
		rclone.NewBuilder(viper.GetString("rclone_path")),
		lock.NewReclaimer(home),
		home,
		jobs.JobPath,
	)
}

// jobLockPath mirrors the runner's lock path resolution for read-only
// consumers like the status command.
func jobLockPath(job *config.Job) string {
	path := strings.TrimSpace(job.LockFile)
	if path == "" {
		path = config.DefaultLockFile
	}
	return utils.ExpandHome(path, home)
}
