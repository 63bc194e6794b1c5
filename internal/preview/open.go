package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"bookdetector/internal/deps"
)

// Opener launches files in the desktop viewer.
type Opener struct {
	command []string
}

// NewOpener uses configured (a command line such as "gio open") or the
// platform default.
func NewOpener(configured string) *Opener {
	if opener := deps.DefaultOpener(configured); opener != "" {
		return &Opener{command: strings.Fields(opener)}
	}
	if runtime.GOOS == "windows" {
		return &Opener{command: []string{"cmd", "/c", "start", ""}}
	}
	return &Opener{}
}

// Open starts the viewer for path without waiting for it to exit.
func (o *Opener) Open(ctx context.Context, path string) error {
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if len(o.command) == 0 {
		return errors.New("no file opener configured for this platform")
	}
	args := append(append([]string(nil), o.command[1:]...), path)
	cmd := exec.Command(o.command[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", o.command[0], err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
