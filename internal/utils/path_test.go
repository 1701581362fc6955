package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandHome(t *testing.T) {
	tests := []struct {
		name string
		path string
		home string
		want string
	}{
		{
			name: "tilde prefix",
			path: "~/logs/rclone-sync",
			home: "/home/u",
			want: "/home/u/logs/rclone-sync",
		},
		{
			name: "dollar home prefix",
			path: "$HOME/.cache/rclone",
			home: "/home/u",
			want: "/home/u/.cache/rclone",
		},
		{
			name: "absolute path untouched",
			path: "/tmp/rclone-sync.lock",
			home: "/home/u",
			want: "/tmp/rclone-sync.lock",
		},
		{
			name: "tilde mid-path untouched",
			path: "/data/~user/x",
			home: "/home/u",
			want: "/data/~user/x",
		},
		{
			name: "empty home untouched",
			path: "~/logs",
			home: "",
			want: "~/logs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandHome(tt.path, tt.home); got != tt.want {
				t.Errorf("ExpandHome(%q, %q) = %q, want %q", tt.path, tt.home, got, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{
			name:      "empty path",
			input:     "",
			wantError: true,
		},
		{
			name:      "relative path",
			input:     "./test",
			wantError: false,
		},
		{
			name:      "absolute path",
			input:     "/tmp/test",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ResolvePath(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
			if !tt.wantError && result == "" {
				t.Errorf("ResolvePath(%q) returned empty string", tt.input)
			}
		})
	}
}

func TestFileOlderThan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.lck")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if FileOlderThan(path, time.Hour) {
		t.Error("fresh file reported as old")
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	if !FileOlderThan(path, time.Hour) {
		t.Error("aged file not reported as old")
	}

	if FileOlderThan(filepath.Join(dir, "missing"), time.Hour) {
		t.Error("missing file reported as old")
	}
}
