package main

import (
	"fmt"

	"github.com/bisync-tools/bisyncd/internal/status"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newJobsCmd())
}

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage job configurations",
	}
	cmd.AddCommand(newJobsListCmd(), newJobsInitCmd(), newJobsPathCmd())
	return cmd
}

func newJobsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured jobs with their last outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			jobs, err := jobStore()
			if err != nil {
				return err
			}
			names, err := jobs.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no jobs configured; create one with `bisyncd jobs init --job <name>`")
				return nil
			}

			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", cyan(name), jobSummary(name))
			}
			return nil
		},
	}
}

// jobSummary is the one-line state shown next to each job in the list.
func jobSummary(name string) string {
	store, err := status.Load(stateDir(), name)
	if err != nil {
		return faint("state unavailable")
	}
	state := store.State()
	switch {
	case state.LastError != "":
		return red(state.LastError)
	case state.LastSuccess != nil:
		return green("ok " + humanize.Time(*state.LastSuccess))
	default:
		return faint("never run")
	}
}

func newJobsInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a job config template",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			name := jobName(cmd)
			jobs, err := jobStore()
			if err != nil {
				return err
			}
			if _, err := jobs.LoadOrCreate(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job config at %s\n", jobs.JobPath(name))
			return nil
		},
	}
	cmd.Flags().String("job", "", "job name (default from config)")
	return cmd
}

func newJobsPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print a job's config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := jobStore()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), jobs.JobPath(jobName(cmd)))
			return err
		},
	}
	cmd.Flags().String("job", "", "job name (default from config)")
	return cmd
}
