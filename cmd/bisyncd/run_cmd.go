package main

import (
	"fmt"

	"github.com/bisync-tools/bisyncd/internal/notify"
	"github.com/bisync-tools/bisyncd/internal/status"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a configured job once (used by the systemd timer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()
			name := jobName(cmd)

			jobs, err := jobStore()
			if err != nil {
				return err
			}
			job, err := jobs.LoadOrCreate(name)
			if err != nil {
				return err
			}

			store, err := status.Load(stateDir(), name)
			if err != nil {
				return err
			}

			res, err := store.RunSync(newRunner(jobs), job)
			if err != nil {
				store.SetLastError(err.Error())
				_ = notify.Send(ctx, "Rclone Sync Failed", err.Error(), true)
				return err
			}

			if res.Skipped() {
				fmt.Fprintln(cmd.OutOrStdout(), res.Stderr)
				return nil
			}

			state := store.State()
			if res.ExitCode != 0 {
				body := state.LastError
				if body == "" {
					body = fmt.Sprintf("Job %s failed (exit %d)", name, res.ExitCode)
				}
				_ = notify.Send(ctx, "Rclone Sync Failed", body, true)
				return fmt.Errorf("job %s failed (exit %d): %s", name, res.ExitCode, body)
			}

			if n := state.LastChangedCount; n != nil && *n > 0 {
				_ = notify.Send(ctx, "Rclone Sync Completed", fmt.Sprintf("Job %s: synced %d item(s)", name, *n), false)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Job %s completed in %ds (log: %s)\n",
				name, int64(res.Duration.Seconds()), res.LogFile)
			return nil
		},
	}
	cmd.Flags().String("job", "", "job name (default from config)")
	return cmd
}
