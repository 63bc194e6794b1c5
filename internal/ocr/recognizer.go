package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bookdetector/internal/logging"
)

// Recognizer runs an engine over image files, optionally preprocessing them
// first, and returns trimmed text.
type Recognizer struct {
	engine     Engine
	preprocess bool
	logger     *slog.Logger
}

// NewRecognizer wraps engine.
func NewRecognizer(engine Engine, preprocess bool, logger *slog.Logger) *Recognizer {
	return &Recognizer{
		engine:     engine,
		preprocess: preprocess,
		logger:     logging.NewComponentLogger(logger, "ocr"),
	}
}

// EngineName returns the wrapped engine's name.
func (r *Recognizer) EngineName() string {
	return r.engine.Name()
}

// Recognize returns the text in imagePath with surrounding whitespace
// removed. Preprocessing failures fall back to the original image.
func (r *Recognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("ocr input: %w", err)
	}

	target := imagePath
	if r.preprocess {
		tmpDir, err := os.MkdirTemp("", "bookdetector-ocr-")
		if err != nil {
			return "", fmt.Errorf("create temp dir: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		prepared := filepath.Join(tmpDir, "prepared.png")
		if err := Preprocess(imagePath, prepared); err != nil {
			logging.WarnWithContext(r.logger, "image preprocessing failed; using original", "ocr_preprocess_failed",
				logging.String("image", imagePath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "recognition may be less accurate"),
			)
		} else {
			target = prepared
		}
	}

	text, err := r.engine.Recognize(ctx, target)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	r.logger.Info("text recognized",
		logging.String(logging.FieldEventType, "ocr_completed"),
		logging.String("engine", r.engine.Name()),
		logging.String("image", imagePath),
		logging.Int("chars", len([]rune(text))),
	)
	return text, nil
}
