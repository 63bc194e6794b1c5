package ocr

import (
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// Frames narrower than this are upscaled before recognition.
	minRecognitionWidth = 1280
	contrastBoost       = 20
	sharpenSigma        = 1.0
)

// Preprocess writes a cleaned-up copy of src to dst: grayscale, boosted
// contrast, light sharpening and Lanczos upscaling of narrow frames. The
// output format follows dst's extension.
func Preprocess(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, contrastBoost)
	out = imaging.Sharpen(out, sharpenSigma)
	if width := out.Bounds().Dx(); width > 0 && width < minRecognitionWidth {
		out = imaging.Resize(out, minRecognitionWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(out, dst); err != nil {
		return fmt.Errorf("save preprocessed image: %w", err)
	}
	return nil
}
