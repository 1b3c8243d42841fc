package bitmap

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitmap(t *testing.T) {
	m := New(10, 3)
	assert.Equal(t, 10, m.Width())
	assert.Equal(t, 3, m.Height())
	assert.Equal(t, 30, Len(m))

	m.Set(0, 0, true)
	m.Set(9, 2, true)
	m.Set(8, 1, true)
	m.Set(8, 1, false)

	assert.True(t, m.Bit(0, 0))
	assert.True(t, m.Bit(9, 2))
	assert.False(t, m.Bit(8, 1))
	assert.False(t, m.Bit(1, 0))

	assert.Equal(t, image.Rect(0, 0, 10, 3), m.Bounds())
	assert.Equal(t, color.Gray{0xff}, m.At(0, 0))
	assert.Equal(t, color.Gray{}, m.At(1, 0))
	assert.Equal(t, color.Gray{}, m.At(20, 20))
}

func TestEachRow(t *testing.T) {
	m := New(3, 2)
	m.Set(0, 0, true)
	m.Set(2, 1, true)

	var got [][]bool
	require.NoError(t, EachRow(m, func(row []bool) error {
		got = append(got, append([]bool(nil), row...))
		return nil
	}))
	assert.Equal(t, [][]bool{{true, false, false}, {false, false, true}}, got)

	stop := errors.New("stop")
	var n int
	err := EachRow(m, func([]bool) error {
		n++
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 1, n)
}

func TestEqual(t *testing.T) {
	a, b := New(4, 4), New(4, 4)
	assert.True(t, Equal(a, b))
	b.Set(3, 3, true)
	assert.False(t, Equal(a, b))
	assert.False(t, Equal(a, New(4, 5)))
}

func gray(width, height int, fn func(x, y int) uint8) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.SetGray(x, y, color.Gray{fn(x, y)})
		}
	}
	return m
}

func TestFromImage(t *testing.T) {
	src := gray(4, 1, func(x, _ int) uint8 { return []uint8{0x00, 0x7f, 0x80, 0xff}[x] })

	m, err := FromImage(src, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true, true}, []bool{m.Bit(0, 0), m.Bit(1, 0), m.Bit(2, 0), m.Bit(3, 0)})

	m, err = FromImage(src, &Options{Threshold: 0x7f, Invert: true})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, false}, []bool{m.Bit(0, 0), m.Bit(1, 0), m.Bit(2, 0), m.Bit(3, 0)})

	m, err = FromImage(src, &Options{Threshold: 0x00})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, true}, []bool{m.Bit(0, 0), m.Bit(1, 0), m.Bit(2, 0), m.Bit(3, 0)})
}

func TestFromImageOffset(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 7, 6))
	src.SetGray(6, 5, color.Gray{0xff})

	m, err := FromImage(src, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 1, m.Height())
	assert.False(t, m.Bit(0, 0))
	assert.True(t, m.Bit(1, 0))
}

func TestFromImageTransparent(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 0xff})
	// Fully transparent becomes the white background
	src.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 0})

	m, err := FromImage(src, nil)
	require.NoError(t, err)
	assert.False(t, m.Bit(0, 0))
	assert.True(t, m.Bit(1, 0))
}

func TestFromImageQuantize(t *testing.T) {
	// Light on light artwork: both shades are over the threshold
	src := image.NewGray(image.Rect(0, 0, 8, 1))
	for x := 0; x < 8; x++ {
		c := color.Gray{0xf0}
		if x < 4 {
			c = color.Gray{0xb0}
		}
		src.SetGray(x, 0, c)
	}

	m, err := FromImage(src, &Options{Threshold: DefaultThreshold})
	require.NoError(t, err)
	for x := 0; x < 8; x++ {
		assert.True(t, m.Bit(x, 0))
	}

	for _, test := range []struct {
		name string
		o    Options
		want []bool
	}{
		{"plain", Options{Threshold: DefaultThreshold, Quantize: true}, []bool{false, false, false, false, true, true, true, true}},
		{"dither", Options{Threshold: DefaultThreshold, Quantize: true, Dither: true}, []bool{false, false, false, false, true, true, true, true}},
		{"invert", Options{Threshold: DefaultThreshold, Quantize: true, Invert: true}, []bool{true, true, true, true, false, false, false, false}},
	} {
		t.Run(test.name, func(t *testing.T) {
			m, err := FromImage(src, &test.o)
			require.NoError(t, err)
			got := make([]bool, 8)
			for x := range got {
				got[x] = m.Bit(x, 0)
			}
			assert.Equal(t, test.want, got)
		})
	}
}

func TestFromImageQuantizeSingleColor(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 0xc0
	}

	m, err := FromImage(src, &Options{Threshold: DefaultThreshold, Quantize: true})
	require.NoError(t, err)
	assert.True(t, m.Bit(0, 0))
	assert.True(t, m.Bit(3, 3))
}

func TestFromImageEmpty(t *testing.T) {
	_, err := FromImage(image.NewGray(image.Rect(0, 0, 0, 4)), nil)
	assert.Equal(t, ErrEmpty, err)
}
