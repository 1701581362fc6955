// Package notify dispatches desktop notifications via notify-send. A host
// without a notification daemon silently degrades to a log line.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

const appName = "bisyncd"

// Send shows a desktop notification. Critical notifications use the error
// icon and urgency so they stay on screen until dismissed.
func Send(ctx context.Context, title, body string, critical bool) error {
	bin, err := exec.LookPath("notify-send")
	if err != nil {
		slog.Debug("notify-send not found, skipping notification", "title", title)
		return nil
	}

	urgency := "normal"
	icon := "drive-harddisk"
	if critical {
		urgency = "critical"
		icon = "dialog-error"
	}

	cmd := exec.CommandContext(ctx, bin,
		"--app-name="+appName,
		"--urgency="+urgency,
		"--icon="+icon,
		title, body,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send: %w: %s", err, output)
	}
	return nil
}
