package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// WriteBooks creates empty book files with the given names inside dir.
func WriteBooks(t testing.TB, dir string, names ...string) []string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// ScenarioBooks are the three sample books used across package tests. Two
// share the title Mahabharatam; one carries the unknown-author sentinel.
var ScenarioBooks = []string{
	"Mahabharatam_Vyasa_1990_800_B001.pdf",
	"Ramayanam_తెలియదు_1985_650_B002.pdf",
	"Mahabharatam_VyasaCopy_2005_820_B003.pdf",
}

// WritePNG writes a width x height PNG with a two-tone pattern to path.
func WritePNG(t testing.TB, path string, width, height int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 240, G: 240, B: 240, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 20, G: 20, B: 60, A: 255})
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
