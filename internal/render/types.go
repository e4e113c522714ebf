package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/keagan/lyricsmith/internal/spectrum"
)

// Style selects one of the four frame layouts. The set is closed; Compose
// dispatches over it exhaustively.
type Style int

const (
	StyleClassic Style = iota
	StyleVinyl
	StyleWaves
	StyleBigText
)

var styleNames = map[Style]string{
	StyleClassic: "classic",
	StyleVinyl:   "vinyl",
	StyleWaves:   "waves",
	StyleBigText: "big_text",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// Styles returns all style variants in declaration order.
func Styles() []Style {
	return []Style{StyleClassic, StyleVinyl, StyleWaves, StyleBigText}
}

// ParseStyle resolves a style name.
func ParseStyle(s string) (Style, error) {
	for style, name := range styleNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return style, nil
		}
	}
	return 0, fmt.Errorf("unknown style %q (want classic, vinyl, waves or big_text)", s)
}

// Aspect selects the fixed output resolution.
type Aspect int

const (
	Aspect16x9 Aspect = iota // 1920x1080
	Aspect9x16               // 1080x1920
)

// Dimensions returns the output resolution for the aspect.
func (a Aspect) Dimensions() (width, height int) {
	if a == Aspect9x16 {
		return 1080, 1920
	}
	return 1920, 1080
}

func (a Aspect) String() string {
	if a == Aspect9x16 {
		return "9:16"
	}
	return "16:9"
}

// ParseAspect resolves "16:9" or "9:16".
func ParseAspect(s string) (Aspect, error) {
	switch strings.TrimSpace(s) {
	case "16:9", "landscape":
		return Aspect16x9, nil
	case "9:16", "portrait":
		return Aspect9x16, nil
	}
	return 0, fmt.Errorf("unknown aspect ratio %q (want 16:9 or 9:16)", s)
}

// FontChoice selects one of the three configured typefaces.
type FontChoice int

const (
	FontA FontChoice = iota
	FontB
	FontC
)

// ParseFontChoice resolves "a", "b" or "c".
func ParseFontChoice(s string) (FontChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "":
		return FontA, nil
	case "b":
		return FontB, nil
	case "c":
		return FontC, nil
	}
	return 0, fmt.Errorf("unknown font choice %q (want a, b or c)", s)
}

// Config is the immutable visual configuration for one export.
type Config struct {
	Style   Style
	Aspect  Aspect
	Font    FontChoice
	Palette []color.NRGBA // 1..n gradient stops
}

// Validate checks the config is renderable.
func (c Config) Validate() error {
	if _, ok := styleNames[c.Style]; !ok {
		return fmt.Errorf("invalid style %d", int(c.Style))
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette must have at least one color")
	}
	return nil
}

// Inputs carries everything one frame composite needs. The backdrop and
// disc images are shared read-only across frames; the spectrum frame is
// consumed by exactly one composite.
type Inputs struct {
	Backdrop *image.RGBA // prepared by Backdrop, matches the canvas size
	Disc     image.Image // vinyl overlay graphic, nil for other styles
	Spectrum spectrum.Frame
	Lyric    string
	HasLyric bool
	Title    string
	Creator  string
	Elapsed  float64 // seconds since playback start
}
