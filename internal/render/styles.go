package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

var (
	white     = color.NRGBA{255, 255, 255, 255}
	softWhite = color.NRGBA{255, 255, 255, 200}
)

// scrimOpacity is the fixed translucent black layer over the background
// that keeps text legible on any artwork.
const scrimOpacity = 0.6

// discAngularRate is the vinyl rotation speed in radians per second.
const discAngularRate = 0.5

// Backdrop prepares the static background layer once per export: the image
// cover-cropped to the output resolution under the legibility scrim.
func Backdrop(aspect Aspect, src image.Image) *image.RGBA {
	c := NewCanvas(aspect)
	DrawCover(c, src)
	Scrim(c, scrimOpacity)
	return c
}

// Compose renders one complete frame into dst. The canvas dimensions are
// fixed by cfg.Aspect for the whole export; callers reuse one canvas across
// frames.
func Compose(dst *image.RGBA, in Inputs, cfg Config, fonts *FontSet) error {
	if in.Backdrop == nil || len(in.Backdrop.Pix) != len(dst.Pix) {
		return fmt.Errorf("backdrop does not match canvas %v", dst.Bounds())
	}
	copy(dst.Pix, in.Backdrop.Pix)

	switch cfg.Style {
	case StyleClassic:
		return composeClassic(dst, in, cfg, fonts)
	case StyleVinyl:
		return composeVinyl(dst, in, cfg, fonts)
	case StyleWaves:
		return composeWaves(dst, in, cfg, fonts)
	case StyleBigText:
		return composeBigText(dst, in, cfg, fonts)
	}
	return fmt.Errorf("unknown style %v", cfg.Style)
}

// scale returns the factor converting 1080p-relative sizes to this canvas.
func scale(dst *image.RGBA) float64 {
	return float64(dst.Bounds().Dy()) / 1080
}

// drawLyric draws the active lyric centered at baseline y. Absent text
// draws nothing, never a placeholder.
func drawLyric(dst *image.RGBA, in Inputs, cfg Config, fonts *FontSet, y int) error {
	if !in.HasLyric || in.Lyric == "" {
		return nil
	}
	face, err := fonts.Face(cfg.Font, 64*scale(dst))
	if err != nil {
		return err
	}
	glow := PaletteColor(cfg.Palette, 0)
	DrawTextGlow(dst, face, in.Lyric, y, white, glow)
	return nil
}

// drawMeta draws title and creator centered, stacked above baseline y.
func drawMeta(dst *image.RGBA, in Inputs, cfg Config, fonts *FontSet, y int, titleSize float64) error {
	s := scale(dst)
	titleFace, err := fonts.Face(cfg.Font, titleSize*s)
	if err != nil {
		return err
	}
	creatorFace, err := fonts.Face(cfg.Font, titleSize*0.6*s)
	if err != nil {
		return err
	}

	if in.Title != "" {
		DrawTextCentered(dst, titleFace, in.Title, y, white)
	}
	if in.Creator != "" {
		DrawTextCentered(dst, creatorFace, in.Creator, y+int(titleSize*0.8*s), softWhite)
	}
	return nil
}

// classic: bars across the lower third, lyric mid-frame, metadata beneath
// the bars.
func composeClassic(dst *image.RGBA, in Inputs, cfg Config, fonts *FontSet) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()

	bars := image.Rect(w/10, int(float64(h)*0.55), w*9/10, int(float64(h)*0.78))
	Bars(dst, in.Spectrum, cfg.Palette, bars)

	if err := drawLyric(dst, in, cfg, fonts, int(float64(h)*0.42)); err != nil {
		return err
	}
	return drawMeta(dst, in, cfg, fonts, int(float64(h)*0.88), 48)
}

// vinyl: a rotating disc beside the metadata, bars along the bottom, lyric
// above them.
func composeVinyl(dst *image.RGBA, in Inputs, cfg Config, fonts *FontSet) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()

	if in.Disc != nil {
		angle := math.Mod(in.Elapsed*discAngularRate, 2*math.Pi)
		DrawRotated(dst, in.Disc, angle, w/4, int(float64(h)*0.38))
	}

	bars := image.Rect(w/8, int(float64(h)*0.68), w*7/8, int(float64(h)*0.85))
	Bars(dst, in.Spectrum, cfg.Palette, bars)

	if err := drawLyric(dst, in, cfg, fonts, int(float64(h)*0.62)); err != nil {
		return err
	}
	return drawMeta(dst, in, cfg, fonts, int(float64(h)*0.93), 44)
}

// waves: the line visualization mirrored on both sides of center, lyric
// above, metadata below.
func composeWaves(dst *image.RGBA, in Inputs, cfg Config, fonts *FontSet) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()

	waves := image.Rect(0, int(float64(h)*0.45), w, int(float64(h)*0.72))
	MirroredLine(dst, in.Spectrum, PaletteColor(cfg.Palette, 0), waves)

	if err := drawLyric(dst, in, cfg, fonts, int(float64(h)*0.36)); err != nil {
		return err
	}
	return drawMeta(dst, in, cfg, fonts, int(float64(h)*0.86), 48)
}

// big_text: the title as large stroke-only uppercase text with a palette
// glow, a thin full-width bar strip at the very bottom.
func composeBigText(dst *image.RGBA, in Inputs, cfg Config, fonts *FontSet) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	s := scale(dst)

	if in.Title != "" {
		face, err := fonts.Face(cfg.Font, 150*s)
		if err != nil {
			return err
		}
		title := strings.ToUpper(in.Title)
		y := int(float64(h) * 0.38)
		glow := PaletteColor(cfg.Palette, 0)
		DrawTextOutline(dst, face, title, y, int(6*s), WithAlpha(glow, 70))
		DrawTextOutline(dst, face, title, y, int(3*s), glow)
	}

	strip := image.Rect(0, h-int(60*s), w, h)
	Bars(dst, in.Spectrum, cfg.Palette, strip)

	if err := drawLyric(dst, in, cfg, fonts, int(float64(h)*0.58)); err != nil {
		return err
	}

	if in.Creator != "" {
		face, err := fonts.Face(cfg.Font, 32*s)
		if err != nil {
			return err
		}
		DrawTextCentered(dst, face, in.Creator, int(float64(h)*0.7), softWhite)
	}
	return nil
}
