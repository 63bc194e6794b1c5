package capture

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"bookdetector/internal/logging"
	"bookdetector/internal/testsupport"
)

func TestDeviceHelpers(t *testing.T) {
	if got := devicePath("video2"); got != "/dev/video2" {
		t.Fatalf("devicePath = %q", got)
	}
	if got := devicePath("/dev/video0"); got != "/dev/video0" {
		t.Fatalf("devicePath = %q", got)
	}
	if devicePath("  ") != "" {
		t.Fatal("expected empty path for blank devname")
	}
	if deviceNumber("/dev/video10") != 10 || deviceNumber("/dev/video2") != 2 {
		t.Fatal("unexpected device numbers")
	}
	if deviceNumber("/dev/camera") <= deviceNumber("/dev/video99") {
		t.Fatal("unparsable devices should sort last")
	}
}

const ffmpegStub = `#!/bin/sh
printf '%s\n' "$@" > "$(dirname "$0")/ffmpeg-args.txt"
for last; do :; done
printf 'jpeg' > "$last"
`

func TestCaptureRunsFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("ffmpeg", ffmpegStub))
	device := filepath.Join(testsupport.BaseDir(cfg), "fake-video0")
	if err := os.WriteFile(device, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Camera.Device = device

	dst := filepath.Join(testsupport.BaseDir(cfg), "frames", "frame.jpg")
	if err := NewGrabber(cfg, logging.NewNop()).Capture(context.Background(), dst); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "jpeg" {
		t.Fatalf("expected frame written, got %q err=%v", data, err)
	}

	args, _ := os.ReadFile(filepath.Join(filepath.Dir(cfg.Camera.FFmpegBinary), "ffmpeg-args.txt"))
	got := strings.Fields(string(args))
	want := []string{"-hide_banner", "-loglevel", "error", "-f", "v4l2", "-video_size", "640x480", "-i", device, "-frames:v", "1", "-y", dst}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected ffmpeg args:\n%v\nwant\n%v", got, want)
	}
}

func TestCaptureReportsFFmpegError(t *testing.T) {
	script := "#!/bin/sh\necho 'Cannot open video device' >&2\nexit 1\n"
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("ffmpeg", script))
	cfg.Camera.Device = "rtsp://camera.local/stream"

	err := NewGrabber(cfg, nil).Capture(context.Background(), filepath.Join(t.TempDir(), "f.jpg"))
	if err == nil || !strings.Contains(err.Error(), "Cannot open video device") {
		t.Fatalf("expected ffmpeg stderr in error, got %v", err)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("expected wrapped exit error, got %v", err)
	}
}

func TestCaptureMissingDeviceNode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("ffmpeg", ffmpegStub))
	cfg.Camera.Device = "/dev/video-does-not-exist"

	err := NewGrabber(cfg, nil).Capture(context.Background(), filepath.Join(t.TempDir(), "f.jpg"))
	if !errors.Is(err, ErrNoCamera) {
		t.Fatalf("expected ErrNoCamera, got %v", err)
	}
}

func TestCaptureRejectsEmptyFrame(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("ffmpeg", "#!/bin/sh\nexit 0\n"))
	cfg.Camera.Device = "rtsp://camera.local/stream"

	if err := NewGrabber(cfg, nil).Capture(context.Background(), filepath.Join(t.TempDir(), "f.jpg")); err == nil {
		t.Fatal("expected error when ffmpeg writes nothing")
	}
}

func TestListCamerasHonoursLimit(t *testing.T) {
	cameras, err := ListCameras(context.Background(), 1)
	if err != nil {
		t.Skipf("camera discovery unavailable: %v", err)
	}
	if len(cameras) > 1 {
		t.Fatalf("expected at most one camera, got %d", len(cameras))
	}
}
