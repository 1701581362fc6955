package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bisync-tools/bisyncd/internal/status"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newLogsCmd())
}

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the last run's log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			name := jobName(cmd)
			tail, _ := cmd.Flags().GetInt("tail")
			open, _ := cmd.Flags().GetBool("open")

			store, err := status.Load(stateDir(), name)
			if err != nil {
				return err
			}
			logFile := store.State().LastLogFile
			if logFile == "" {
				return fmt.Errorf("no log recorded for job %s yet", name)
			}

			if open {
				if err := exec.CommandContext(cmd.Context(), "xdg-open", logFile).Start(); err != nil {
					return fmt.Errorf("open %s: %w", logFile, err)
				}
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), faint(logFile))
			if tail <= 0 {
				return nil
			}

			data, err := os.ReadFile(logFile)
			if err != nil {
				return fmt.Errorf("read log %s: %w", logFile, err)
			}
			for _, line := range tailLines(string(data), tail) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().String("job", "", "job name (default from config)")
	cmd.Flags().IntP("tail", "n", 20, "number of trailing lines to print (0 for path only)")
	cmd.Flags().Bool("open", false, "open the log with xdg-open instead of printing")
	return cmd
}

func tailLines(text string, n int) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
