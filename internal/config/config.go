package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"bookdetector/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	LogDir       string `toml:"log_dir"`
	ThumbnailDir string `toml:"thumbnail_dir"`
	APIBind      string `toml:"api_bind"`
}

// Catalog controls which folders feed the book catalog and where the
// catalog cache is written.
type Catalog struct {
	// Folders are scanned in the listed order. Empty means the single
	// default folder <data_dir>/previewfiles.
	Folders   []string `toml:"folders"`
	CachePath string   `toml:"cache_path"`
	// UnknownAuthor is the filename author segment stored as an empty author.
	UnknownAuthor string `toml:"unknown_author"`
	// SortEntries sorts entries by filename within each folder instead of
	// keeping filesystem enumeration order.
	SortEntries bool `toml:"sort_entries"`
	// StrictCache reports cache write failures to the caller instead of
	// only logging them.
	StrictCache bool `toml:"strict_cache"`
}

// Lookup contains fuzzy title matching defaults.
type Lookup struct {
	Limit         int     `toml:"limit"`
	MinSimilarity float64 `toml:"min_similarity"`
}

// OCR contains text recognition settings.
type OCR struct {
	Engine         string   `toml:"engine"`
	Binary         string   `toml:"binary"`
	Languages      []string `toml:"languages"`
	PageSegMode    int      `toml:"page_seg_mode"`
	EngineMode     int      `toml:"engine_mode"`
	Preprocess     bool     `toml:"preprocess"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Camera contains frame capture settings.
type Camera struct {
	Device         string `toml:"device"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	InputFormat    string `toml:"input_format"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	MaxDevices     int    `toml:"max_devices"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Preview contains first-page thumbnail rendering settings.
type Preview struct {
	PdftoppmBinary string `toml:"pdftoppm_binary"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	DPI            int    `toml:"dpi"`
	Opener         string `toml:"opener"`
}

// History contains lookup history settings.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Watch contains folder watch settings.
type Watch struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for bookdetector.
//
// Configuration sections by subsystem:
//   - Paths: data, log and thumbnail directories plus the API bind address
//   - Catalog: scanned folders and the catalog cache file
//   - Lookup: fuzzy matching limit and similarity cutoff
//   - OCR: tesseract invocation
//   - Camera: ffmpeg frame capture
//   - Preview: first-page thumbnails and the file opener
//   - History: sqlite lookup history
//   - Watch: folder watch debounce
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Catalog Catalog `toml:"catalog"`
	Lookup  Lookup  `toml:"lookup"`
	OCR     OCR     `toml:"ocr"`
	Camera  Camera  `toml:"camera"`
	Preview Preview `toml:"preview"`
	History History `toml:"history"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bookdetector/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bookdetector.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories bookdetector writes into.
// Catalog folders are never created: a missing folder is reported by the
// catalog builder and skipped.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ThumbnailDir, filepath.Dir(c.Catalog.CachePath)}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Daily log files in paths.log_dir are named <prefix><date><suffix>, with the
// date in local time.
const (
	LogFilePrefix     = "bookdetector-"
	LogFileSuffix     = ".log"
	LogFileDateLayout = "20060102"
)

// LogFilePath returns today's log file inside paths.log_dir.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, LogFilePrefix+time.Now().Format(LogFileDateLayout)+LogFileSuffix)
}

// OCRTimeout returns ocr.timeout_seconds as a duration.
func (c *Config) OCRTimeout() time.Duration {
	return time.Duration(c.OCR.TimeoutSeconds) * time.Second
}

// CameraTimeout returns camera.timeout_seconds as a duration.
func (c *Config) CameraTimeout() time.Duration {
	return time.Duration(c.Camera.TimeoutSeconds) * time.Second
}

// WatchDebounce returns watch.debounce_ms as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
