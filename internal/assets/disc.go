package assets

import (
	"image"
	"image/color"
	"math"
)

// DiscOverlay synthesizes the static vinyl disc graphic: a dark platter
// with groove rings, a label and a spindle hole. Rendered once at asset
// load and rotated per frame by the renderer.
func DiscOverlay(diameter int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, diameter, diameter))
	c := float64(diameter) / 2
	maxR := c - 1

	labelR := maxR * 0.33
	holeR := maxR * 0.04

	for y := 0; y < diameter; y++ {
		for x := 0; x < diameter; x++ {
			r := math.Hypot(float64(x)-c, float64(y)-c)
			switch {
			case r > maxR, r < holeR:
				// outside the platter / through the spindle hole
			case r < labelR:
				img.SetNRGBA(x, y, color.NRGBA{R: 178, G: 34, B: 52, A: 255})
			default:
				shade := uint8(16)
				// groove rings every few pixels
				if int(r)%6 == 0 {
					shade = 44
				}
				img.SetNRGBA(x, y, color.NRGBA{R: shade, G: shade, B: shade, A: 255})
			}
		}
	}

	return img
}
