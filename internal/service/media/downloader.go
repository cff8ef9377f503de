package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kapu/speech-archive-go/pkg/errors"
	"go.uber.org/zap"
)

const downloaderBinary = "yt-dlp"

// Downloader pulls the audio track of a video into the work directory
// by shelling out to yt-dlp.
type Downloader struct {
	workDir string
	binary  string
	logger  *zap.Logger
}

// NewDownloader verifies the yt-dlp binary up front so a missing
// installation fails at startup, not on the first video.
func NewDownloader(workDir string, logger *zap.Logger) (*Downloader, error) {
	binary, err := exec.LookPath(downloaderBinary)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", downloaderBinary, err)
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio work directory: %w", err)
	}

	logger.Info("Audio downloader initialized",
		zap.String("binary", binary),
		zap.String("work_dir", workDir))

	return &Downloader{
		workDir: workDir,
		binary:  binary,
		logger:  logger,
	}, nil
}

// DownloadAudio fetches the video's audio as MP3 and returns the local
// path. An already-downloaded file is reused as-is.
func (d *Downloader) DownloadAudio(ctx context.Context, videoID string) (string, error) {
	outputPath := filepath.Join(d.workDir, videoID+".mp3")

	if _, err := os.Stat(outputPath); err == nil {
		d.logger.Debug("Audio already downloaded",
			zap.String("video_id", videoID),
			zap.String("path", outputPath))
		return outputPath, nil
	}

	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--no-playlist",
		"--no-progress",
		"--output", filepath.Join(d.workDir, videoID+".%(ext)s"),
		"https://www.youtube.com/watch?v=" + videoID,
	}

	d.logger.Info("Downloading audio",
		zap.String("video_id", videoID))

	cmd := exec.CommandContext(ctx, d.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		d.logger.Error("Audio download failed",
			zap.String("video_id", videoID),
			zap.String("stderr", stderrTail(stderr.Bytes())),
			zap.Error(err))
		return "", errors.NewAcquisitionError("audio download failed", videoID, "download", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", errors.NewAcquisitionError("downloader produced no output file", videoID, "download", err)
	}

	d.logger.Info("Audio downloaded",
		zap.String("video_id", videoID),
		zap.String("path", outputPath))

	return outputPath, nil
}

// Cleanup removes a downloaded audio file once the video is processed.
func (d *Downloader) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("Failed to remove audio file",
			zap.String("path", path),
			zap.Error(err))
	}
}

// stderrTail keeps log lines bounded when yt-dlp dumps long traces.
func stderrTail(output []byte) string {
	const limit = 500
	if len(output) <= limit {
		return string(output)
	}
	return string(output[len(output)-limit:])
}
