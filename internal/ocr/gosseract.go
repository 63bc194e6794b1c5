//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"bookdetector/internal/logging"
)

// Gosseract recognizes text through libtesseract.
type Gosseract struct {
	settings Settings
	logger   *slog.Logger
}

// NewGosseract returns a libtesseract-backed engine.
func NewGosseract(settings Settings, logger *slog.Logger) (Engine, error) {
	return &Gosseract{settings: settings, logger: logging.NewComponentLogger(logger, "ocr")}, nil
}

// Name identifies the engine in logs and API responses.
func (g *Gosseract) Name() string { return "gosseract" }

// Recognize runs libtesseract on imagePath. A fresh client is used per call
// because gosseract clients are not safe for concurrent use.
func (g *Gosseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.settings.Languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(g.settings.PageSegMode)); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract %s: %w", imagePath, err)
	}
	g.logger.Debug("gosseract finished",
		logging.String("image", imagePath),
		logging.Int("chars", len(text)),
	)
	return text, nil
}
