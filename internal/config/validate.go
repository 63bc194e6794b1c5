package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLookup(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"preview.width":  c.Preview.Width,
		"preview.height": c.Preview.Height,
		"preview.dpi":    c.Preview.DPI,
	}); err != nil {
		return err
	}
	if c.Watch.DebounceMS <= 0 {
		return errors.New("watch.debounce_ms must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if len(c.Catalog.Folders) == 0 {
		return errors.New("catalog.folders must include at least one folder")
	}
	if c.Catalog.CachePath == "" {
		return errors.New("catalog.cache_path must be set")
	}
	return nil
}

func (c *Config) validateLookup() error {
	if c.Lookup.Limit <= 0 {
		return errors.New("lookup.limit must be positive")
	}
	if c.Lookup.MinSimilarity < 0 || c.Lookup.MinSimilarity > 1 {
		return errors.New("lookup.min_similarity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateOCR() error {
	switch c.OCR.Engine {
	case OCREngineTesseract, OCREngineGosseract:
	default:
		return fmt.Errorf("ocr.engine: unsupported value %q (want %q or %q)", c.OCR.Engine, OCREngineTesseract, OCREngineGosseract)
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return errors.New("ocr.page_seg_mode must be between 0 and 13")
	}
	if c.OCR.EngineMode < 0 || c.OCR.EngineMode > 3 {
		return errors.New("ocr.engine_mode must be between 0 and 3")
	}
	if c.OCR.TimeoutSeconds <= 0 {
		return errors.New("ocr.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCamera() error {
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return errors.New("camera.width and camera.height must be >= 0")
	}
	return ensurePositiveMap(map[string]int{
		"camera.max_devices":     c.Camera.MaxDevices,
		"camera.timeout_seconds": c.Camera.TimeoutSeconds,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
