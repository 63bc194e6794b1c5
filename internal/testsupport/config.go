package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"bookdetector/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The single catalog folder is <base>/previewfiles and is created empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ThumbnailDir = filepath.Join(base, "thumbnails")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Catalog.Folders = []string{filepath.Join(base, "previewfiles")}
	cfgVal.Catalog.CachePath = filepath.Join(base, "data", "book_meta_data.csv")
	cfgVal.History.Path = filepath.Join(base, "data", "history.db")
	cfgVal.Logging.RetentionDays = 0

	if err := os.MkdirAll(cfgVal.Catalog.Folders[0], 0o755); err != nil {
		t.Fatalf("mkdir previewfiles: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFolders replaces the catalog folders with the given names, created
// under the base directory in order.
func WithFolders(names ...string) ConfigOption {
	return func(b *configBuilder) {
		folders := make([]string, 0, len(names))
		for _, name := range names {
			dir := filepath.Join(b.baseDir, name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				b.t.Fatalf("mkdir folder %s: %v", dir, err)
			}
			folders = append(folders, dir)
		}
		b.cfg.Catalog.Folders = folders
	}
}

// WithStrictCache makes catalog cache write failures visible to callers.
func WithStrictCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.StrictCache = true
	}
}

// WithHistoryDisabled turns off the sqlite lookup history.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries writes no-op executables for the provided names and
// prepends them to PATH. If names is empty, the default external programs are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"tesseract", "ffmpeg", "pdftoppm", "xdg-open"}
		}
		for _, name := range names {
			writeStub(b, name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithStubScript writes an executable shell script under the stub bin
// directory, prepends that directory to PATH and points the matching config
// binary at it when name is tesseract, ffmpeg or pdftoppm.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		target := writeStub(b, name, script)
		switch name {
		case "tesseract":
			b.cfg.OCR.Binary = target
		case "ffmpeg":
			b.cfg.Camera.FFmpegBinary = target
		case "pdftoppm":
			b.cfg.Preview.PdftoppmBinary = target
		}
	}
}

func writeStub(b *configBuilder, name, script string) string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
