package web

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// encodeScreen writes img as a grayscale PNG, each pixel enlarged to a
// scale x scale block.
func encodeScreen(w io.Writer, img image.Image, scale int) error {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y))
			ox, oy := (x-b.Min.X)*scale, (y-b.Min.Y)*scale
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					out.Set(ox+dx, oy+dy, c)
				}
			}
		}
	}
	return png.Encode(w, out)
}
