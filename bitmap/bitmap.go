/*
Package bitmap implements a monochrome, one bit per pixel image and the
conversion of arbitrary decoded images into one.

A set bit is an "on" pixel. Pixels are stored row-major, eight to a byte,
most significant bit first, with each row starting on a byte boundary.
*/
package bitmap

import (
	"errors"
	"image"
	"image/color"
)

// ErrEmpty is returned when an image has no pixels.
var ErrEmpty = errors.New("bitmap: empty image")

// Image is the read-only view of a monochrome image consumed by the
// encoders. Bit must be valid for every x in [0, Width()) and y in
// [0, Height()).
type Image interface {
	Width() int
	Height() int
	Bit(x, y int) bool
}

// Bitmap is an in-memory Image. It also implements image.Image so it can be
// handed to the standard image encoders, on pixels are white.
type Bitmap struct {
	width  int
	height int
	stride int
	pix    []byte
}

var (
	_ Image       = (*Bitmap)(nil)
	_ image.Image = (*Bitmap)(nil)
)

// New returns a Bitmap of the given size with every pixel off.
func New(width, height int) *Bitmap {
	stride := (width + 7) >> 3
	return &Bitmap{
		width:  width,
		height: height,
		stride: stride,
		pix:    make([]byte, stride*height),
	}
}

// Width returns the width in pixels.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the height in pixels.
func (b *Bitmap) Height() int {
	return b.height
}

// Bit reports whether the pixel at (x, y) is on.
func (b *Bitmap) Bit(x, y int) bool {
	return b.pix[y*b.stride+x>>3]&(0x80>>uint(x&7)) != 0
}

// Set turns the pixel at (x, y) on or off.
func (b *Bitmap) Set(x, y int, on bool) {
	i := y*b.stride + x>>3
	mask := byte(0x80) >> uint(x&7)
	if on {
		b.pix[i] |= mask
	} else {
		b.pix[i] &^= mask
	}
}

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// At implements image.Image.
func (b *Bitmap) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.Gray{}
	}
	if b.Bit(x, y) {
		return color.Gray{0xff}
	}
	return color.Gray{}
}

// Equal reports whether two images have the same size and pixels.
func Equal(a, b Image) bool {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return false
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if a.Bit(x, y) != b.Bit(x, y) {
				return false
			}
		}
	}
	return true
}
