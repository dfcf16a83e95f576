package resize

import (
	"image"
	"image/color"
	stddraw "image/draw"

	"golang.org/x/image/draw"
)

// Contain scales src to fit inside a width x height box while
// preserving its aspect ratio, centered on an opaque white canvas
// of exactly the requested size.
func Contain(src image.Image, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	stddraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, stddraw.Src)

	srcBounds := src.Bounds()
	srcW := srcBounds.Dx()
	srcH := srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return canvas
	}

	scaleX := float64(width) / float64(srcW)
	scaleY := float64(height) / float64(srcH)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	dstW := int(float64(srcW)*scale + 0.5)
	dstH := int(float64(srcH)*scale + 0.5)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}
	if dstW > width {
		dstW = width
	}
	if dstH > height {
		dstH = height
	}

	x0 := (width - dstW) / 2
	y0 := (height - dstH) / 2
	dstRect := image.Rect(x0, y0, x0+dstW, y0+dstH)

	draw.CatmullRom.Scale(canvas, dstRect, src, srcBounds, draw.Over, nil)

	return canvas
}
