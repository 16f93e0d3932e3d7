package probe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpeg probes media with ffprobe (duration) and ffmpeg (frame capture).
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	logger      *slog.Logger
}

// NewFFmpeg locates both binaries. Explicit paths override PATH lookup.
func NewFFmpeg(ffmpegPath, ffprobePath string, logger *slog.Logger) (*FFmpeg, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var err error
	if ffmpegPath == "" {
		ffmpegPath, err = exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
	}
	if ffprobePath == "" {
		ffprobePath, err = exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
		}
	}

	tempDir, err := os.MkdirTemp("", "vidshelf-frames-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
		logger:      logger,
	}, nil
}

func (p *FFmpeg) Duration(ctx context.Context, path string) float64 {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		p.logger.Warn("duration probe failed", "path", path, "error", err)
		return 0
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil || duration < 0 {
		p.logger.Warn("unparsable duration", "path", path, "output", stdout.String())
		return 0
	}
	return duration
}

func (p *FFmpeg) FrameAt(ctx context.Context, path string, seconds float64) ([]byte, bool) {
	if seconds < 0 {
		seconds = 0
	}

	tempFile := filepath.Join(p.tempDir, fmt.Sprintf("frame_%f.jpg", seconds))
	defer os.Remove(tempFile)

	args := []string{
		"-ss", fmt.Sprintf("%.2f", seconds),
		"-i", path,
		"-vframes", "1",
		"-q:v", "2",
		"-f", "mjpeg",
		"-y",
		tempFile,
	}
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.logger.Warn("frame capture failed", "path", path, "at", seconds, "error", err, "stderr", stderr.String())
		return nil, false
	}

	data, err := os.ReadFile(tempFile)
	if err != nil || len(data) == 0 {
		p.logger.Warn("captured frame unreadable", "path", path, "error", err)
		return nil, false
	}
	return data, true
}

// Cleanup removes the frame scratch directory.
func (p *FFmpeg) Cleanup() error {
	return os.RemoveAll(p.tempDir)
}
