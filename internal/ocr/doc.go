// Package ocr turns photographs of book covers into text.
//
// Two engines are available. The default runs the tesseract command line
// program, matching `tesseract <image> stdout -l tel --psm 6 --oem 3`. The
// gosseract engine links libtesseract through cgo and is only compiled with
// the "gosseract" build tag:
//
//	go build -tags gosseract ./cmd/bookdetector
//
// Without the tag, selecting it returns ErrEngineUnavailable.
//
// Recognizer optionally cleans up frames before recognition (grayscale,
// contrast, sharpening, upscaling of small captures) and trims the result.
package ocr
