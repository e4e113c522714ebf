package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/keagan/lyricsmith/internal/spectrum"
)

func testBackground() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 640, 480))
	for i := range img.Pix {
		img.Pix[i] = byte(i * 31)
	}
	return img
}

func testInputs() Inputs {
	frame := make(spectrum.Frame, 128)
	for i := range frame {
		frame[i] = byte(i * 2)
	}
	return Inputs{
		Backdrop: Backdrop(Aspect16x9, testBackground()),
		Spectrum: frame,
		Lyric:    "hello world",
		HasLyric: true,
		Title:    "Test Song",
		Creator:  "Test Artist",
		Elapsed:  3.2,
	}
}

func testFonts(t *testing.T) *FontSet {
	t.Helper()
	fonts, err := LoadFonts("", "", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	return fonts
}

func TestPaletteColorGradient(t *testing.T) {
	palette := []color.NRGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 100, G: 200, B: 50, A: 255},
	}

	if got := PaletteColor(palette, 0); got != palette[0] {
		t.Errorf("PaletteColor(0) = %v, want first stop", got)
	}
	if got := PaletteColor(palette, 1); got != palette[1] {
		t.Errorf("PaletteColor(1) = %v, want last stop", got)
	}
	mid := PaletteColor(palette, 0.5)
	if mid.R != 50 || mid.G != 100 || mid.B != 25 {
		t.Errorf("PaletteColor(0.5) = %v", mid)
	}

	// out-of-range t clamps
	if got := PaletteColor(palette, -3); got != palette[0] {
		t.Errorf("PaletteColor(-3) = %v", got)
	}
	if got := PaletteColor(palette, 7); got != palette[1] {
		t.Errorf("PaletteColor(7) = %v", got)
	}
}

func TestPaletteColorSingleEntry(t *testing.T) {
	palette := []color.NRGBA{{R: 10, G: 20, B: 30, A: 255}}

	// a one-color palette degenerates to a solid fill at every position
	for _, tt := range []float64{0, 0.25, 0.5, 1} {
		if got := PaletteColor(palette, tt); got != palette[0] {
			t.Errorf("PaletteColor(%v) = %v, want %v", tt, got, palette[0])
		}
	}
}

func TestVisualizersSinglePaletteNoPanic(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 320, 180))
	frame := make(spectrum.Frame, 64)
	for i := range frame {
		frame[i] = 200
	}
	palette := []color.NRGBA{{R: 255, A: 255}}

	Bars(dst, frame, palette, dst.Bounds())
	Line(dst, frame, palette[0], dst.Bounds())
	MirroredLine(dst, frame, palette[0], dst.Bounds())
}

func TestComposeAllStyles(t *testing.T) {
	fonts := testFonts(t)
	in := testInputs()
	in.Disc = image.NewNRGBA(image.Rect(0, 0, 64, 64))

	for _, style := range Styles() {
		for _, aspect := range []Aspect{Aspect16x9, Aspect9x16} {
			cfg := Config{
				Style:   style,
				Aspect:  aspect,
				Font:    FontA,
				Palette: []color.NRGBA{{R: 255, G: 0, B: 128, A: 255}, {R: 0, G: 255, B: 200, A: 255}},
			}
			in.Backdrop = Backdrop(aspect, testBackground())
			dst := NewCanvas(aspect)
			if err := Compose(dst, in, cfg, fonts); err != nil {
				t.Errorf("Compose(%v, %v): %v", style, aspect, err)
			}

			w, h := aspect.Dimensions()
			if dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
				t.Errorf("canvas %v is %v, want %dx%d", aspect, dst.Bounds(), w, h)
			}
		}
	}
}

func TestComposeNoLyricDrawsNothingExtra(t *testing.T) {
	fonts := testFonts(t)
	cfg := Config{
		Style:   StyleClassic,
		Aspect:  Aspect16x9,
		Font:    FontA,
		Palette: []color.NRGBA{{R: 255, A: 255}},
	}

	in := testInputs()
	in.Spectrum = make(spectrum.Frame, 128) // flat
	in.Title, in.Creator = "", ""
	in.HasLyric = false
	in.Lyric = ""

	without := NewCanvas(Aspect16x9)
	if err := Compose(without, in, cfg, fonts); err != nil {
		t.Fatalf("Compose: %v", err)
	}

	in.HasLyric = true
	in.Lyric = "something"
	with := NewCanvas(Aspect16x9)
	if err := Compose(with, in, cfg, fonts); err != nil {
		t.Fatalf("Compose: %v", err)
	}

	same := true
	for i := range without.Pix {
		if without.Pix[i] != with.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("drawing a lyric changed no pixels")
	}
}

func TestComposeRejectsUnknownStyle(t *testing.T) {
	fonts := testFonts(t)
	cfg := Config{Style: Style(99), Aspect: Aspect16x9, Palette: []color.NRGBA{{A: 255}}}
	if err := Compose(NewCanvas(Aspect16x9), testInputs(), cfg, fonts); err == nil {
		t.Error("unknown style accepted")
	}
}

func TestParseStyleAndAspect(t *testing.T) {
	for name, want := range map[string]Style{
		"classic": StyleClassic, "vinyl": StyleVinyl, "waves": StyleWaves, "big_text": StyleBigText,
	} {
		got, err := ParseStyle(name)
		if err != nil || got != want {
			t.Errorf("ParseStyle(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseStyle("neon"); err == nil {
		t.Error("unknown style name accepted")
	}

	if a, err := ParseAspect("9:16"); err != nil || a != Aspect9x16 {
		t.Errorf("ParseAspect(9:16) = %v, %v", a, err)
	}
	w, h := Aspect9x16.Dimensions()
	if w != 1080 || h != 1920 {
		t.Errorf("9:16 dimensions = %dx%d", w, h)
	}
}

func TestDrawCoverFillsCanvas(t *testing.T) {
	// a uniformly red source must cover every canvas pixel after crop
	src := image.NewNRGBA(image.Rect(0, 0, 100, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 100; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, 192, 108))
	DrawCover(dst, src)

	for _, pt := range []image.Point{{0, 0}, {191, 0}, {0, 107}, {191, 107}, {96, 54}} {
		r, _, _, a := dst.At(pt.X, pt.Y).RGBA()
		if a == 0 || r < 0xf000 {
			t.Errorf("pixel %v not covered: r=%#x a=%#x", pt, r, a)
		}
	}
}
