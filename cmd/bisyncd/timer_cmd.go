package main

import (
	"fmt"

	"github.com/bisync-tools/bisyncd/internal/systemduser"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newTimerCmd())
}

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Manage the per-job systemd --user timer",
	}

	install := &cobra.Command{
		Use:   "install",
		Short: "Create/update the unit files for a job (does not enable)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			sd, err := systemduser.New()
			if err != nil {
				return err
			}
			job := jobName(cmd)
			if err := sd.Install(cmd.Context(), job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s and %s\n",
				systemduser.ServiceUnit(job), systemduser.TimerUnit(job))
			return nil
		},
	}

	enable := &cobra.Command{
		Use:   "enable",
		Short: "Enable and start the hourly timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			sd, err := systemduser.New()
			if err != nil {
				return err
			}
			return sd.Enable(cmd.Context(), jobName(cmd))
		},
	}

	disable := &cobra.Command{
		Use:   "disable",
		Short: "Stop and disable the timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			sd, err := systemduser.New()
			if err != nil {
				return err
			}
			return sd.Disable(cmd.Context(), jobName(cmd))
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the timer's scheduling state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			sd, err := systemduser.New()
			if err != nil {
				return err
			}
			st, err := sd.Status(cmd.Context(), jobName(cmd))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cyan("unit:"), st.Unit)
			fmt.Fprintf(cmd.OutOrStdout(), "installed=%v enabled=%v active=%v\n", st.Installed, st.Enabled, st.Active)
			if st.NextElapse != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "next run: %s\n", st.NextElapse)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), faint("no run scheduled"))
			}
			return nil
		},
	}

	for _, sub := range []*cobra.Command{install, enable, disable, statusCmd} {
		sub.Flags().String("job", "", "job name (default from config)")
		cmd.AddCommand(sub)
	}
	return cmd
}
