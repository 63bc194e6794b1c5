package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"bookdetector/internal/logging"
)

// Tesseract runs the tesseract command line program.
type Tesseract struct {
	settings Settings
	logger   *slog.Logger
}

// NewTesseract returns a CLI-backed engine.
func NewTesseract(settings Settings, logger *slog.Logger) *Tesseract {
	if strings.TrimSpace(settings.Binary) == "" {
		settings.Binary = "tesseract"
	}
	return &Tesseract{settings: settings, logger: logging.NewComponentLogger(logger, "ocr")}
}

// Name identifies the engine in logs and API responses.
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize returns the text tesseract prints for imagePath.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if t.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.settings.Timeout)
		defer cancel()
	}

	binary, err := exec.LookPath(t.settings.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrEngineUnavailable, t.settings.Binary)
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, binary, t.settings.args(imagePath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("tesseract timed out after %s: %w", t.settings.Timeout, ctxErr)
		}
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return "", fmt.Errorf("tesseract %s: %w: %s", imagePath, err, detail)
		}
		return "", fmt.Errorf("tesseract %s: %w", imagePath, err)
	}

	t.logger.Debug("tesseract finished",
		logging.String("image", imagePath),
		logging.String("languages", t.settings.languageArg()),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("chars", stdout.Len()),
	)
	return stdout.String(), nil
}
