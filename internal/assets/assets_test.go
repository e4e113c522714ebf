package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keagan/lyricsmith/internal/config"
)

func testLoader(t *testing.T, limits config.LimitsConfig) *Loader {
	t.Helper()
	return NewLoader(zerolog.New(os.Stderr), nil, limits)
}

func writeTestPNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), A: 255})
		}
	}

	path := filepath.Join(dir, "art.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return path
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir)

	l := testLoader(t, config.LimitsConfig{MaxImageBytes: 1 << 20})
	img, err := l.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestLoadImageRejectsOversized(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir)

	l := testLoader(t, config.LimitsConfig{MaxImageBytes: 16})
	if _, err := l.LoadImage(path); err == nil {
		t.Error("oversized image accepted")
	}
}

func TestLoadImageRejectsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(path, []byte("not an image at all"), 0644); err != nil {
		t.Fatal(err)
	}

	l := testLoader(t, config.LimitsConfig{MaxImageBytes: 1 << 20})
	if _, err := l.LoadImage(path); err == nil {
		t.Error("corrupt image accepted")
	}
}

func TestLoadImageRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	l := testLoader(t, config.LimitsConfig{MaxImageBytes: 1 << 20})
	if _, err := l.LoadImage(path); err == nil {
		t.Error("empty file accepted")
	}
}

func TestDiscOverlay(t *testing.T) {
	disc := DiscOverlay(200)
	b := disc.Bounds()
	if b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("disc bounds %v", b)
	}

	// corners transparent, platter opaque, spindle hole open
	if _, _, _, a := disc.At(0, 0).RGBA(); a != 0 {
		t.Error("corner is not transparent")
	}
	if _, _, _, a := disc.At(100, 30).RGBA(); a == 0 {
		t.Error("platter is transparent")
	}
	if _, _, _, a := disc.At(100, 100).RGBA(); a != 0 {
		t.Error("spindle hole is filled")
	}
}
