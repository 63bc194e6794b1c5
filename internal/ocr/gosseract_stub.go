//go:build !gosseract

package ocr

import (
	"fmt"
	"log/slog"
)

// NewGosseract reports that the binary was built without the gosseract tag.
func NewGosseract(Settings, *slog.Logger) (Engine, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags gosseract", ErrEngineUnavailable)
}
