package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestDownloadAudioReusesExistingFile(t *testing.T) {
	workDir := t.TempDir()
	existing := filepath.Join(workDir, "vid-1.mp3")
	if err := os.WriteFile(existing, []byte("audio"), 0o644); err != nil {
		t.Fatalf("expected fixture write, got %v", err)
	}

	// The binary path is never invoked when the file is already there.
	d := &Downloader{workDir: workDir, binary: "/nonexistent/yt-dlp", logger: zap.NewNop()}

	path, err := d.DownloadAudio(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("expected cached file to be reused, got %v", err)
	}
	if path != existing {
		t.Fatalf("expected %q, got %q", existing, path)
	}
}

func TestCleanupRemovesDownloadedFile(t *testing.T) {
	workDir := t.TempDir()
	path := filepath.Join(workDir, "vid-1.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("expected fixture write, got %v", err)
	}

	d := &Downloader{workDir: workDir, logger: zap.NewNop()}
	d.Cleanup(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}

	// Cleaning an already-removed or empty path is a no-op.
	d.Cleanup(path)
	d.Cleanup("")
}

func TestStderrTailBoundsLongOutput(t *testing.T) {
	short := []byte("short error")
	if got := stderrTail(short); got != "short error" {
		t.Fatalf("expected short output unchanged, got %q", got)
	}

	long := []byte(strings.Repeat("x", 600) + "TAIL")
	got := stderrTail(long)
	if len(got) != 500 {
		t.Fatalf("expected 500 trailing bytes, got %d", len(got))
	}
	if !strings.HasSuffix(got, "TAIL") {
		t.Fatalf("expected the tail end of the output, got %q", got[:20])
	}
}
