package preview

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"bookdetector/internal/config"
	"bookdetector/internal/fileutil"
	"bookdetector/internal/logging"
	"bookdetector/internal/textutil"
)

// ErrUnsupported reports a file type that cannot be previewed.
var ErrUnsupported = errors.New("preview not supported for file type")

const renderTimeout = 30 * time.Second

var rasterExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// Renderer produces fitted PNG thumbnails.
type Renderer struct {
	pdftoppm string
	width    int
	height   int
	dpi      int
	cacheDir string
	logger   *slog.Logger
}

// NewRenderer builds a renderer from the [preview] section and
// paths.thumbnail_dir.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	return &Renderer{
		pdftoppm: cfg.Preview.PdftoppmBinary,
		width:    cfg.Preview.Width,
		height:   cfg.Preview.Height,
		dpi:      cfg.Preview.DPI,
		cacheDir: cfg.Paths.ThumbnailDir,
		logger:   logging.NewComponentLogger(logger, "preview"),
	}
}

// Supported reports whether path has a previewable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return true
	}
	_, ok := rasterExtensions[ext]
	return ok
}

// Thumbnail returns the path of a PNG showing the first page of source,
// fitted inside the configured width and height.
func (r *Renderer) Thumbnail(ctx context.Context, source string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("preview source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("preview source %s is a directory", source)
	}
	if !Supported(source) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(source))
	}

	target := filepath.Join(r.cacheDir, thumbnailName(source, info))
	if _, err := os.Stat(target); err == nil {
		r.logger.Debug("thumbnail cache hit", logging.String("source", source))
		return target, nil
	}

	img, err := r.firstPage(ctx, source)
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(img, r.width, r.height, imaging.Lanczos)

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail dir: %w", err)
	}
	if err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
		return imaging.Encode(w, thumb, imaging.PNG)
	}); err != nil {
		return "", fmt.Errorf("write thumbnail: %w", err)
	}

	r.logger.Info("thumbnail rendered",
		logging.String(logging.FieldEventType, "thumbnail_rendered"),
		logging.String("source", source),
		logging.String("thumbnail", target),
	)
	return target, nil
}

func (r *Renderer) firstPage(ctx context.Context, source string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(source), ".pdf") {
		return r.renderPDF(ctx, source)
	}
	img, err := imaging.Open(source, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(source), err)
	}
	return img, nil
}

func (r *Renderer) renderPDF(ctx context.Context, source string) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "bookdetector-preview-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-f", "1", "-l", "1", "-png", "-r", strconv.Itoa(r.dpi), "-singlefile", source, prefix}
	cmd := exec.CommandContext(ctx, r.pdftoppm, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return nil, fmt.Errorf("pdftoppm %s: %w: %s", filepath.Base(source), err, detail)
		}
		return nil, fmt.Errorf("pdftoppm %s: %w", filepath.Base(source), err)
	}

	img, err := imaging.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}

func thumbnailName(source string, info os.FileInfo) string {
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}
	sum := sha1.Sum([]byte(abs + "|" + strconv.FormatInt(info.ModTime().UnixNano(), 10) + "|" + strconv.FormatInt(info.Size(), 10)))
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	token := []rune(textutil.SanitizeToken(base))
	if len(token) > 48 {
		token = token[:48]
	}
	return string(token) + "-" + hex.EncodeToString(sum[:8]) + ".png"
}
