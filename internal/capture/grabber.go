package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bookdetector/internal/config"
	"bookdetector/internal/logging"
)

// Grabber captures single frames with ffmpeg.
type Grabber struct {
	ffmpeg      string
	inputFormat string
	device      string
	width       int
	height      int
	maxDevices  int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewGrabber builds a grabber from the [camera] section.
func NewGrabber(cfg *config.Config, logger *slog.Logger) *Grabber {
	return &Grabber{
		ffmpeg:      cfg.Camera.FFmpegBinary,
		inputFormat: cfg.Camera.InputFormat,
		device:      cfg.Camera.Device,
		width:       cfg.Camera.Width,
		height:      cfg.Camera.Height,
		maxDevices:  cfg.Camera.MaxDevices,
		timeout:     cfg.CameraTimeout(),
		logger:      logging.NewComponentLogger(logger, "capture"),
	}
}

// ResolveDevice returns the configured device or, when unset, the first
// detected camera.
func (g *Grabber) ResolveDevice(ctx context.Context) (string, error) {
	if g.device != "" {
		return g.device, nil
	}
	cam, err := FirstCamera(ctx, g.maxDevices)
	if err != nil {
		return "", err
	}
	return cam.Device, nil
}

// Capture writes one frame to dst. The image format follows dst's extension.
func (g *Grabber) Capture(ctx context.Context, dst string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	device, err := g.ResolveDevice(ctx)
	if err != nil {
		return err
	}
	if _, err := os.Stat(device); err != nil && strings.HasPrefix(device, "/dev/") {
		return fmt.Errorf("%w: %s", ErrNoCamera, device)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create frame directory: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, g.ffmpeg, g.args(device, dst)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("ffmpeg capture timed out after %s: %w", g.timeout, ctx.Err())
		}
		if detail := lastLine(stderr.String()); detail != "" {
			return fmt.Errorf("ffmpeg capture from %s: %w: %s", device, err, detail)
		}
		return fmt.Errorf("ffmpeg capture from %s: %w", device, err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced no frame at %s", dst)
	}

	g.logger.Info("frame captured",
		logging.String(logging.FieldEventType, "frame_captured"),
		logging.String("device", device),
		logging.String("path", dst),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (g *Grabber) args(device, dst string) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if g.inputFormat != "" {
		args = append(args, "-f", g.inputFormat)
	}
	if g.width > 0 && g.height > 0 {
		args = append(args, "-video_size", strconv.Itoa(g.width)+"x"+strconv.Itoa(g.height))
	}
	return append(args, "-i", device, "-frames:v", "1", "-y", dst)
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
