package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeLookup()
	c.normalizeOCR()
	c.normalizeCamera()
	c.normalizePreview()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = defaultWatchDebounceMS
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ThumbnailDir) == "" {
		c.Paths.ThumbnailDir = defaultThumbnailDir
	}
	if c.Paths.ThumbnailDir, err = expandPath(c.Paths.ThumbnailDir); err != nil {
		return fmt.Errorf("paths.thumbnail_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	folders := c.Catalog.Folders
	if len(folders) == 0 {
		if value, ok := os.LookupEnv("BOOKDETECTOR_FOLDERS"); ok {
			folders = filepath.SplitList(value)
		}
	}

	// Order is significant; only blanks and exact duplicates are dropped.
	expanded := make([]string, 0, len(folders))
	seen := make(map[string]struct{}, len(folders))
	for i, folder := range folders {
		if strings.TrimSpace(folder) == "" {
			continue
		}
		path, err := expandPath(strings.TrimSpace(folder))
		if err != nil {
			return fmt.Errorf("catalog.folders[%d]: %w", i, err)
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		expanded = append(expanded, path)
	}
	if len(expanded) == 0 {
		expanded = []string{filepath.Join(c.Paths.DataDir, defaultFolderName)}
	}
	c.Catalog.Folders = expanded

	var err error
	if strings.TrimSpace(c.Catalog.CachePath) == "" {
		c.Catalog.CachePath = filepath.Join(c.Paths.DataDir, defaultCacheFileName)
	}
	if c.Catalog.CachePath, err = expandPath(c.Catalog.CachePath); err != nil {
		return fmt.Errorf("catalog.cache_path: %w", err)
	}
	// The sentinel is compared byte-for-byte; never trim or fold it.
	if c.Catalog.UnknownAuthor == "" {
		c.Catalog.UnknownAuthor = defaultUnknownAuthor
	}
	return nil
}

func (c *Config) normalizeLookup() {
	if c.Lookup.Limit == 0 {
		c.Lookup.Limit = defaultLookupLimit
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	if c.OCR.Engine == "" {
		c.OCR.Engine = defaultOCREngine
	}
	c.OCR.Binary = strings.TrimSpace(c.OCR.Binary)
	if c.OCR.Binary == "" {
		c.OCR.Binary = defaultTesseractBinary
	}
	langs := make([]string, 0, len(c.OCR.Languages))
	seen := make(map[string]struct{}, len(c.OCR.Languages))
	for _, lang := range c.OCR.Languages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = []string{defaultOCRLanguage}
	}
	c.OCR.Languages = langs
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = defaultOCRTimeout
	}
}

func (c *Config) normalizeCamera() {
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	c.Camera.FFmpegBinary = strings.TrimSpace(c.Camera.FFmpegBinary)
	if c.Camera.FFmpegBinary == "" {
		c.Camera.FFmpegBinary = defaultFFmpegBinary
	}
	c.Camera.InputFormat = strings.TrimSpace(c.Camera.InputFormat)
	if c.Camera.InputFormat == "" {
		c.Camera.InputFormat = defaultCameraInputFormat
	}
	if c.Camera.MaxDevices <= 0 {
		c.Camera.MaxDevices = defaultCameraMaxDevices
	}
	if c.Camera.TimeoutSeconds <= 0 {
		c.Camera.TimeoutSeconds = defaultCameraTimeout
	}
}

func (c *Config) normalizePreview() {
	c.Preview.PdftoppmBinary = strings.TrimSpace(c.Preview.PdftoppmBinary)
	if c.Preview.PdftoppmBinary == "" {
		c.Preview.PdftoppmBinary = defaultPdftoppmBinary
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = defaultPreviewWidth
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = defaultPreviewHeight
	}
	if c.Preview.DPI <= 0 {
		c.Preview.DPI = defaultPreviewDPI
	}
	c.Preview.Opener = strings.TrimSpace(c.Preview.Opener)
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.DataDir, defaultHistoryFileName)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
