// Package display renders the selected plant and its moisture status on the
// 128x64 OLED and drives the RGB indicator.
package display

// Screen geometry.
const (
	Width   = 128
	Height  = 64
	StatusY = 50 // top of the status line
)

// Screen is a monochrome pixel-buffer display. Drawing calls only touch the
// buffer; Show pushes it to the panel.
type Screen interface {
	FillRect(x, y, w, h int, on bool)
	Text(s string, x, y int)
	Show() error
}

// Indicator is the RGB status light.
type Indicator interface {
	SetColor(rgb uint32) error
}
