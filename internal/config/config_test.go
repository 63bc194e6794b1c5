package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bookdetector/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BOOKDETECTOR_FOLDERS", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "bookdetector")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if len(cfg.Catalog.Folders) != 1 || cfg.Catalog.Folders[0] != filepath.Join(wantData, "previewfiles") {
		t.Fatalf("unexpected default folders: %v", cfg.Catalog.Folders)
	}
	if cfg.Catalog.CachePath != filepath.Join(wantData, "book_meta_data.csv") {
		t.Fatalf("unexpected cache path: %q", cfg.Catalog.CachePath)
	}
	if cfg.Catalog.UnknownAuthor != "తెలియదు" {
		t.Fatalf("unexpected unknown author sentinel: %q", cfg.Catalog.UnknownAuthor)
	}
	if cfg.Lookup.Limit != 5 || cfg.Lookup.MinSimilarity != 0.6 {
		t.Fatalf("unexpected lookup defaults: %+v", cfg.Lookup)
	}
	if cfg.OCR.Engine != config.OCREngineTesseract {
		t.Fatalf("unexpected OCR engine: %q", cfg.OCR.Engine)
	}
	if len(cfg.OCR.Languages) != 1 || cfg.OCR.Languages[0] != "tel" {
		t.Fatalf("unexpected OCR languages: %v", cfg.OCR.Languages)
	}
	if cfg.OCR.PageSegMode != 6 || cfg.OCR.EngineMode != 3 {
		t.Fatalf("unexpected OCR modes: psm=%d oem=%d", cfg.OCR.PageSegMode, cfg.OCR.EngineMode)
	}
	if cfg.History.Path != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.ThumbnailDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Catalog.Folders[0]); !os.IsNotExist(err) {
		t.Fatalf("catalog folder should not be created, stat err=%v", err)
	}
}

func TestLoadCustomPathKeepsFolderOrder(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bookdetector.toml")

	type payload struct {
		Catalog struct {
			Folders []string `toml:"folders"`
		} `toml:"catalog"`
		Lookup struct {
			Limit         int     `toml:"limit"`
			MinSimilarity float64 `toml:"min_similarity"`
		} `toml:"lookup"`
	}
	custom := payload{}
	second := filepath.Join(tempDir, "b")
	first := filepath.Join(tempDir, "a")
	custom.Catalog.Folders = []string{second, " ", first, second}
	custom.Lookup.Limit = 3
	custom.Lookup.MinSimilarity = 0.75
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if len(cfg.Catalog.Folders) != 2 || cfg.Catalog.Folders[0] != second || cfg.Catalog.Folders[1] != first {
		t.Fatalf("expected folder order preserved without blanks/duplicates, got %v", cfg.Catalog.Folders)
	}
	if cfg.Lookup.Limit != 3 || cfg.Lookup.MinSimilarity != 0.75 {
		t.Fatalf("unexpected lookup settings: %+v", cfg.Lookup)
	}
}

func TestFoldersFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base := t.TempDir()
	a := filepath.Join(base, "shelf-a")
	b := filepath.Join(base, "shelf-b")
	t.Setenv("BOOKDETECTOR_FOLDERS", a+string(os.PathListSeparator)+b)

	cfg, _, _, err := config.Load(filepath.Join(base, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Catalog.Folders) != 2 || cfg.Catalog.Folders[0] != a || cfg.Catalog.Folders[1] != b {
		t.Fatalf("expected folders from env, got %v", cfg.Catalog.Folders)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "unknown_author") {
		t.Fatalf("sample config missing unknown_author: %s", contents)
	}
	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".sample.toml.*.tmp"))
	if err != nil || len(leftovers) != 0 {
		t.Fatalf("expected no temp files after write, got %v (err=%v)", leftovers, err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Catalog.UnknownAuthor != "తెలియదు" {
		t.Fatalf("sample sentinel mangled: %q", cfg.Catalog.UnknownAuthor)
	}
	if cfg.Lookup.Limit != 5 {
		t.Fatalf("unexpected sample lookup limit: %d", cfg.Lookup.Limit)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Catalog.Folders = []string{"/books"}
		cfg.Catalog.CachePath = "/tmp/cache.csv"
		return cfg
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"min similarity above one", func(c *config.Config) { c.Lookup.MinSimilarity = 1.5 }, "lookup.min_similarity"},
		{"negative limit", func(c *config.Config) { c.Lookup.Limit = -1 }, "lookup.limit"},
		{"unknown engine", func(c *config.Config) { c.OCR.Engine = "easyocr" }, "ocr.engine"},
		{"page seg mode", func(c *config.Config) { c.OCR.PageSegMode = 14 }, "ocr.page_seg_mode"},
		{"no folders", func(c *config.Config) { c.Catalog.Folders = nil }, "catalog.folders"},
		{"camera timeout", func(c *config.Config) { c.Camera.TimeoutSeconds = 0 }, "camera.timeout_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not name %q", err, tc.want)
			}
		})
	}
}
