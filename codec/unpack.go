package codec

import (
	"fmt"

	"github.com/bodgit/monopack/bitmap"
)

type bitWriter struct {
	m    *bitmap.Bitmap
	n    int
	size int
}

func (w *bitWriter) put(on bool) error {
	if w.n >= w.size {
		return ErrTooMuchData
	}
	w.m.Set(w.n%w.m.Width(), w.n/w.m.Width(), on)
	w.n++
	return nil
}

// Unpack decodes a stream produced by Pack back into a bitmap of the given
// size. Pixels the stream does not reach, such as the trailing data a pass
// leaves unflushed, are off. A stream describing more pixels than the image
// holds is an error.
func Unpack(k Kind, data []byte, width, height int) (*bitmap.Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, bitmap.ErrEmpty
	}

	w := &bitWriter{
		m:    bitmap.New(width, height),
		size: width * height,
	}

	switch k {
	case Raw:
		// The last byte may be padded when the trailing bits were flushed
		if len(data) > (w.size+7)>>3 {
			return nil, ErrTooMuchData
		}
		for _, b := range data {
			for i := 7; i >= 0 && w.n < w.size; i-- {
				if err := w.put(b>>uint(i)&1 != 0); err != nil {
					return nil, err
				}
			}
		}
	case RunLength:
		for _, b := range data {
			bit, n := DecodeRun(b)
			for i := 0; i < n; i++ {
				if err := w.put(bit); err != nil {
					return nil, err
				}
			}
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownEncoding, k)
	}

	return w.m, nil
}
