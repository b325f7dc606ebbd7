package display

import (
	"image"
	"image/color"
	"sync"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// textAscent is the distance from the top of a text line to its baseline.
const textAscent = 9

var ink = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Sink receives the buffer on every Show. *ssd1306.Dev satisfies it.
type Sink interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// Framebuffer is a Screen backed by an in-memory 1-bit image.
// The last shown frame is kept for the status page.
type Framebuffer struct {
	mu    sync.Mutex
	back  *image1bit.VerticalLSB
	front *image1bit.VerticalLSB
	sink  Sink
}

// NewFramebuffer creates a blank framebuffer. sink may be nil when no panel
// is attached.
func NewFramebuffer(sink Sink) *Framebuffer {
	r := image.Rect(0, 0, Width, Height)
	return &Framebuffer{
		back:  image1bit.NewVerticalLSB(r),
		front: image1bit.NewVerticalLSB(r),
		sink:  sink,
	}
}

// FillRect sets every pixel of the rectangle, clipped to the screen.
func (f *Framebuffer) FillRect(x, y, w, h int, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := image.Rect(x, y, x+w, y+h).Intersect(f.back.Bounds())
	bit := image1bit.Bit(on)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			f.back.SetBit(px, py, bit)
		}
	}
}

// Text draws s with its top-left corner at (x, y).
func (f *Framebuffer) Text(s string, x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tinyfont.WriteLine(canvas{f.back}, &proggy.TinySZ8pt7b, int16(x), int16(y+textAscent), s, ink)
}

// Show publishes the buffer as the current frame and pushes it to the sink.
func (f *Framebuffer) Show() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copy(f.front.Pix, f.back.Pix)
	if f.sink == nil {
		return nil
	}
	return f.sink.Draw(f.back.Bounds(), f.back, image.Point{})
}

// Snapshot returns a copy of the last shown frame.
func (f *Framebuffer) Snapshot() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()

	img := image1bit.NewVerticalLSB(f.front.Bounds())
	copy(img.Pix, f.front.Pix)
	return img
}

// Lit reports whether the pixel at (x, y) is set in the working buffer.
func (f *Framebuffer) Lit(x, y int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !(image.Point{X: x, Y: y}).In(f.back.Bounds()) {
		return false
	}
	return bool(f.back.BitAt(x, y))
}

// canvas adapts the buffer to the tinyfont drawing interface.
// Callers hold the framebuffer lock.
type canvas struct {
	img *image1bit.VerticalLSB
}

var _ drivers.Displayer = canvas{}

func (c canvas) Size() (x, y int16) {
	b := c.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (c canvas) SetPixel(x, y int16, col color.RGBA) {
	if !(image.Point{X: int(x), Y: int(y)}).In(c.img.Bounds()) {
		return
	}
	c.img.SetBit(int(x), int(y), image1bit.Bit(col.R|col.G|col.B != 0))
}

func (c canvas) Display() error { return nil }
