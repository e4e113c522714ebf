package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// NewCanvas allocates a frame buffer at the aspect's output resolution.
func NewCanvas(aspect Aspect) *image.RGBA {
	w, h := aspect.Dimensions()
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// DrawCover paints src over the whole canvas preserving its aspect ratio:
// scaled up to cover, overflow cropped, centered.
func DrawCover(dst *image.RGBA, src image.Image) {
	b := dst.Bounds()
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	scale := math.Max(
		float64(b.Dx())/float64(sb.Dx()),
		float64(b.Dy())/float64(sb.Dy()),
	)
	sw := int(math.Ceil(float64(sb.Dx()) * scale))
	sh := int(math.Ceil(float64(sb.Dy()) * scale))

	scaled := resize.Resize(uint(sw), uint(sh), src, resize.Lanczos3)

	// crop the overflow symmetrically
	off := image.Pt((sw-b.Dx())/2, (sh-b.Dy())/2)
	draw.Draw(dst, b, scaled, scaled.Bounds().Min.Add(off), draw.Src)
}

// Scrim darkens the whole canvas with translucent black.
func Scrim(dst *image.RGBA, opacity float64) {
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}
	a := uint8(math.Round(opacity * 255))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{0, 0, 0, a}), image.Point{}, draw.Over)
}

// FillRect fills a rectangle with a solid color.
func FillRect(dst *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// PaletteColor samples the palette gradient at t in [0, 1]. Stops sit at
// normalized positions i/max(len-1, 1); a single-color palette is a solid
// fill at any t.
func PaletteColor(palette []color.NRGBA, t float64) color.NRGBA {
	if len(palette) == 0 {
		return color.NRGBA{255, 255, 255, 255}
	}
	if len(palette) == 1 {
		return palette[0]
	}

	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	span := t * float64(len(palette)-1)
	i := int(span)
	if i >= len(palette)-1 {
		return palette[len(palette)-1]
	}
	frac := span - float64(i)
	return lerpColor(palette[i], palette[i+1], frac)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// WithAlpha returns the color with its alpha replaced.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

// Point is a canvas coordinate.
type Point struct {
	X, Y float32
}

// StrokePolyline strokes connected segments with the given width.
func StrokePolyline(dst *image.RGBA, pts []Point, width float32, col color.Color) {
	if len(pts) < 2 || width <= 0 {
		return
	}

	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	half := width / 2

	for i := 0; i < len(pts)-1; i++ {
		p, q := pts[i], pts[i+1]
		dx, dy := q.X-p.X, q.Y-p.Y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		r.MoveTo(p.X+nx, p.Y+ny)
		r.LineTo(q.X+nx, q.Y+ny)
		r.LineTo(q.X-nx, q.Y-ny)
		r.LineTo(p.X-nx, p.Y-ny)
		r.ClosePath()
	}

	r.Draw(dst, b, image.NewUniform(col), image.Point{})
}

// GlowPolyline strokes a polyline with a soft halo: widening, fading passes
// under an opaque core stroke.
func GlowPolyline(dst *image.RGBA, pts []Point, width float32, col color.NRGBA) {
	StrokePolyline(dst, pts, width*4, WithAlpha(col, 28))
	StrokePolyline(dst, pts, width*2.25, WithAlpha(col, 70))
	StrokePolyline(dst, pts, width, col)
}

// TextWidth measures the advance of s in pixels.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// DrawText draws s with its baseline at (x, y).
func DrawText(dst draw.Image, face font.Face, s string, x, y int, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// DrawTextCentered draws s horizontally centered with its baseline at y.
func DrawTextCentered(dst *image.RGBA, face font.Face, s string, y int, col color.Color) {
	x := (dst.Bounds().Dx() - TextWidth(face, s)) / 2
	DrawText(dst, face, s, x, y, col)
}

// DrawTextGlow draws centered text over a halo of translucent copies.
func DrawTextGlow(dst *image.RGBA, face font.Face, s string, y int, col, glow color.NRGBA) {
	x := (dst.Bounds().Dx() - TextWidth(face, s)) / 2
	for _, r := range []int{3, 2, 1} {
		halo := WithAlpha(glow, uint8(90/r))
		for _, off := range ringOffsets(r) {
			DrawText(dst, face, s, x+off.X, y+off.Y, halo)
		}
	}
	DrawText(dst, face, s, x, y, col)
}

// DrawTextOutline draws centered stroke-only text: the glyph fill stays
// transparent, only a ring of the given radius is painted.
func DrawTextOutline(dst *image.RGBA, face font.Face, s string, y, radius int, col color.NRGBA) {
	b := dst.Bounds()
	x := (b.Dx() - TextWidth(face, s)) / 2

	mask := image.NewAlpha(b)
	DrawText(mask, face, s, x, y, color.Alpha{A: 255})

	ring := dilateRing(mask, radius)
	draw.DrawMask(dst, b, image.NewUniform(col), image.Point{}, ring, image.Point{}, draw.Over)
}

// dilateRing returns dilate(mask, radius) minus mask: the glyph outline.
func dilateRing(mask *image.Alpha, radius int) *image.Alpha {
	b := mask.Bounds()
	out := image.NewAlpha(b)
	offs := ringOffsets(radius)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.AlphaAt(x, y).A > 0 {
				continue
			}
			var best uint8
			for _, off := range offs {
				if a := mask.AlphaAt(x+off.X, y+off.Y).A; a > best {
					best = a
				}
			}
			if best > 0 {
				out.SetAlpha(x, y, color.Alpha{A: best})
			}
		}
	}
	return out
}

// ringOffsets lists the integer offsets within distance r of the origin,
// excluding the origin itself.
func ringOffsets(r int) []image.Point {
	var offs []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy <= r*r {
				offs = append(offs, image.Pt(dx, dy))
			}
		}
	}
	return offs
}

// DrawRotated paints src rotated by angle radians, its center placed at
// (cx, cy) on the canvas.
func DrawRotated(dst *image.RGBA, src image.Image, angle float64, cx, cy int) {
	sb := src.Bounds()
	sin, cos := math.Sincos(angle)
	hw, hh := float64(sb.Dx())/2, float64(sb.Dy())/2

	m := f64.Aff3{
		cos, -sin, float64(cx) - (cos*hw - sin*hh),
		sin, cos, float64(cy) - (sin*hw + cos*hh),
	}
	xdraw.BiLinear.Transform(dst, m, src, sb, xdraw.Over, nil)
}
