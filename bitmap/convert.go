package bitmap

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

// DefaultThreshold is the luminance above which a pixel is considered on
// when no Options are given.
const DefaultThreshold = 127

// Options control how a decoded image is reduced to one bit per pixel.
type Options struct {
	// Threshold is the luminance above which a pixel is on.
	Threshold uint8
	// Invert swaps on and off pixels.
	Invert bool
	// Quantize reduces the image to its two most representative colors
	// and maps the darker one to off and the lighter one to on, which
	// copes better with low contrast artwork. Threshold is then only
	// used when the image has a single color.
	Quantize bool
	// Dither applies Floyd-Steinberg error diffusion when quantizing.
	Dither bool
}

func opaque(m image.Image) bool {
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// Flatten any transparency onto a white background
func flatten(m image.Image) image.Image {
	if opaque(m) {
		return m
	}
	b := m.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, m, b.Min, draw.Over)
	return dst
}

func reduce(m image.Image, dither bool) *image.Paletted {
	b := m.Bounds()

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 2), m))

	if dither {
		draw.FloydSteinberg.Draw(pm, b, m, b.Min)
	} else {
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}
	return pm
}

func luminance(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

// The darker of a and b is at or below the result, the lighter above it
func midpoint(a, b uint8) uint8 {
	return uint8((int(a) + int(b)) / 2)
}

// FromImage converts m to a Bitmap. The top-left corner of m becomes (0, 0).
// If o is nil, DefaultThreshold is used with no other processing.
func FromImage(m image.Image, o *Options) (*Bitmap, error) {
	b := m.Bounds()
	if b.Empty() {
		return nil, ErrEmpty
	}

	threshold := uint8(DefaultThreshold)
	var invert bool
	if o != nil {
		threshold, invert = o.Threshold, o.Invert
	}

	src := flatten(m)
	if o != nil && o.Quantize {
		pm := reduce(src, o.Dither)
		// A single color image has nothing to separate and is
		// thresholded as normal
		if len(pm.Palette) == 2 {
			if l0, l1 := luminance(pm.Palette[0]), luminance(pm.Palette[1]); l0 != l1 {
				threshold = midpoint(l0, l1)
			}
		}
		src = pm
	}

	bm := New(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			bm.Set(x-b.Min.X, y-b.Min.Y, (luminance(src.At(x, y)) > threshold) != invert)
		}
	}
	return bm, nil
}
