package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bisync-tools/bisyncd/internal/config"
	"github.com/bisync-tools/bisyncd/internal/lock"
	"github.com/bisync-tools/bisyncd/internal/status"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last run's outcome for a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			name := jobName(cmd)
			asJSON, _ := cmd.Flags().GetBool("json")
			watch, _ := cmd.Flags().GetBool("watch")

			jobs, err := jobStore()
			if err != nil {
				return err
			}
			job, err := jobs.LoadOrCreate(name)
			if err != nil {
				return err
			}

			render := func() error {
				store, err := status.Load(stateDir(), name)
				if err != nil {
					return err
				}
				if asJSON {
					return printStateJSON(cmd.OutOrStdout(), store.State())
				}
				printState(cmd.OutOrStdout(), store.State(), job)
				return nil
			}

			if !watch {
				return render()
			}
			return watchState(cmd, name, render)
		},
	}
	cmd.Flags().String("job", "", "job name (default from config)")
	cmd.Flags().Bool("json", false, "print the raw state as JSON")
	cmd.Flags().BoolP("watch", "w", false, "re-render when the state file changes")
	return cmd
}

// watchState re-renders on state-file change events, with a periodic tick as
// a fallback for editors and filesystems that don't emit them.
func watchState(cmd *cobra.Command, name string, render func() error) error {
	if err := render(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(stateDir()); err != nil {
		return fmt.Errorf("watch %s: %w", stateDir(), err)
	}

	statePath := status.StatePath(stateDir(), name)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != statePath {
				continue
			}
			if err := render(); err != nil {
				return err
			}
		case <-ticker.C:
			if err := render(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}
}

func printStateJSON(w io.Writer, state status.SyncState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printState(w io.Writer, state status.SyncState, job *config.Job) {
	fmt.Fprintf(w, "%s %s\n", cyan("job:"), state.Job)

	if info, running := lock.DetectRunning(jobLockPath(job)); running {
		fmt.Fprintf(w, "%s sync in progress (PID %d, started %s)\n",
			yellow("●"), info.PID, humanize.Time(info.StartedAt))
	}

	switch {
	case state.LastError != "":
		fmt.Fprintf(w, "%s %s\n", red("✗"), state.LastError)
	case state.LastSuccess != nil:
		fmt.Fprintf(w, "%s last success %s\n", green("✓"), humanize.Time(*state.LastSuccess))
	default:
		fmt.Fprintf(w, "%s\n", faint("no runs recorded"))
	}

	if state.LastRun != nil {
		fmt.Fprintf(w, "last run:   %s\n", humanize.Time(*state.LastRun))
	}
	if state.LastExitCode != nil {
		fmt.Fprintf(w, "exit code:  %d\n", *state.LastExitCode)
	}
	if state.LastChangedCount != nil {
		fmt.Fprintf(w, "changed:    %d item(s)\n", *state.LastChangedCount)
	}
	if state.LastDurationSecs != nil {
		fmt.Fprintf(w, "duration:   %ds\n", *state.LastDurationSecs)
	}
	if state.RemoteSummary != "" {
		fmt.Fprintf(w, "remote:     %s\n", state.RemoteSummary)
	}
	if state.LastLogFile != "" {
		fmt.Fprintf(w, "log:        %s\n", state.LastLogFile)
	}

	if len(state.LogPreview) > 0 {
		fmt.Fprintln(w, faint("--- last output ---"))
		for _, line := range state.LogPreview {
			fmt.Fprintln(w, faint(line))
		}
	}
}
