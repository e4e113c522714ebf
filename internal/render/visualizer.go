package render

import (
	"image"
	"image/color"

	"github.com/keagan/lyricsmith/internal/spectrum"
)

// Bars draws vertical spectrum bars across r, one per bin, heights mapped
// linearly from magnitude 0-255 to 0-r.Dy(), colored by the palette gradient.
func Bars(dst *image.RGBA, frame spectrum.Frame, palette []color.NRGBA, r image.Rectangle) {
	n := len(frame)
	if n == 0 || r.Empty() {
		return
	}

	w := float64(r.Dx()) / float64(n)
	gap := int(w * 0.2)
	denom := float64(max(n-1, 1))

	for i, mag := range frame {
		h := int(float64(mag) / 255.0 * float64(r.Dy()))
		if h <= 0 {
			continue
		}
		x0 := r.Min.X + int(float64(i)*w)
		x1 := r.Min.X + int(float64(i+1)*w) - gap
		if x1 <= x0 {
			x1 = x0 + 1
		}
		col := PaletteColor(palette, float64(i)/denom)
		FillRect(dst, image.Rect(x0, r.Max.Y-h, x1, r.Max.Y), col)
	}
}

// Line draws the spectrum as a single glowing polyline across r, each bin a
// vertex with height normalized into the rect.
func Line(dst *image.RGBA, frame spectrum.Frame, col color.NRGBA, r image.Rectangle) {
	pts := linePoints(frame, r, false)
	GlowPolyline(dst, pts, lineWidth(r), col)
}

// MirroredLine draws the line visualization on the left half of r and its
// horizontal mirror on the right half, meeting in the middle.
func MirroredLine(dst *image.RGBA, frame spectrum.Frame, col color.NRGBA, r image.Rectangle) {
	mid := r.Min.X + r.Dx()/2
	left := image.Rect(r.Min.X, r.Min.Y, mid, r.Max.Y)

	pts := linePoints(frame, left, false)
	GlowPolyline(dst, pts, lineWidth(r), col)

	mirrored := linePoints(frame, left, true)
	for i := range mirrored {
		mirrored[i].X = float32(2*mid) - mirrored[i].X
	}
	GlowPolyline(dst, mirrored, lineWidth(r), col)
}

// linePoints maps bins to vertices across r. reverse flips the bin order so
// a mirrored copy lines up against the original at the seam.
func linePoints(frame spectrum.Frame, r image.Rectangle, reverse bool) []Point {
	n := len(frame)
	if n < 2 || r.Empty() {
		return nil
	}

	pts := make([]Point, n)
	step := float32(r.Dx()) / float32(n-1)
	for i := range frame {
		bin := i
		if reverse {
			bin = n - 1 - i
		}
		h := float32(frame[bin]) / 255 * float32(r.Dy())
		pts[i] = Point{
			X: float32(r.Min.X) + float32(i)*step,
			Y: float32(r.Max.Y) - h,
		}
	}
	return pts
}

func lineWidth(r image.Rectangle) float32 {
	w := float32(r.Dy()) / 90
	if w < 2 {
		w = 2
	}
	return w
}
