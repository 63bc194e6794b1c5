package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"bookdetector/internal/config"
)

// ErrEngineUnavailable reports an OCR engine that is not compiled in or not
// installed.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Engine recognizes text in an image file.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
	Name() string
}

// Settings are the engine parameters shared by both implementations.
type Settings struct {
	Binary      string
	Languages   []string
	PageSegMode int
	EngineMode  int
	Timeout     time.Duration
}

// SettingsFromConfig maps the [ocr] section onto engine settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Binary:      cfg.OCR.Binary,
		Languages:   append([]string(nil), cfg.OCR.Languages...),
		PageSegMode: cfg.OCR.PageSegMode,
		EngineMode:  cfg.OCR.EngineMode,
		Timeout:     cfg.OCRTimeout(),
	}
}

// NewEngine constructs the engine named by ocr.engine.
func NewEngine(cfg *config.Config, logger *slog.Logger) (Engine, error) {
	settings := SettingsFromConfig(cfg)
	switch cfg.OCR.Engine {
	case config.OCREngineTesseract, "":
		return NewTesseract(settings, logger), nil
	case config.OCREngineGosseract:
		return NewGosseract(settings, logger)
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrEngineUnavailable, cfg.OCR.Engine)
	}
}

func (s Settings) languageArg() string {
	if len(s.Languages) == 0 {
		return "tel"
	}
	return strings.Join(s.Languages, "+")
}

// args builds the tesseract CLI arguments that print recognized text on stdout.
func (s Settings) args(imagePath string) []string {
	return []string{
		imagePath, "stdout",
		"-l", s.languageArg(),
		"--psm", strconv.Itoa(s.PageSegMode),
		"--oem", strconv.Itoa(s.EngineMode),
	}
}
