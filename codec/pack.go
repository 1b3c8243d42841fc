package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bodgit/monopack/bitmap"
)

// Packer is implemented by RawPacker and RunLengthPacker. Rows are fed in
// order with WriteRow and the pass is ended with Close.
type Packer interface {
	Kind() Kind
	WriteRow(row []bool) error
	Close() error
}

var (
	_ Packer = (*RawPacker)(nil)
	_ Packer = (*RunLengthPacker)(nil)
)

// NewPacker returns a packer for k with empty state writing to w.
func NewPacker(k Kind, w io.ByteWriter, o *Options) (Packer, error) {
	switch k {
	case Raw:
		return NewRawPacker(w, o), nil
	case RunLength:
		return NewRunLengthPacker(w, o), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownEncoding, k)
	}
}

// Pack runs one complete pass of encoding k over m, writing to w.
func Pack(m bitmap.Image, k Kind, w io.ByteWriter, o *Options) error {
	p, err := NewPacker(k, w, o)
	if err != nil {
		return err
	}
	if err := bitmap.EachRow(m, p.WriteRow); err != nil {
		return err
	}
	return p.Close()
}

// PackBytes is like Pack but returns the encoded stream.
func PackBytes(m bitmap.Image, k Kind, o *Options) ([]byte, error) {
	b := new(bytes.Buffer)
	if err := Pack(m, k, b, o); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// PackLines is like PackBytes but also returns how many bytes were emitted
// while each row was written. Anything flushed by Close is counted against
// the last row.
func PackLines(m bitmap.Image, k Kind, o *Options) ([]byte, []int, error) {
	b := new(bytes.Buffer)
	p, err := NewPacker(k, b, o)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]int, 0, m.Height())
	if err := bitmap.EachRow(m, func(row []bool) error {
		n := b.Len()
		if err := p.WriteRow(row); err != nil {
			return err
		}
		lines = append(lines, b.Len()-n)
		return nil
	}); err != nil {
		return nil, nil, err
	}

	n := b.Len()
	if err := p.Close(); err != nil {
		return nil, nil, err
	}
	if len(lines) > 0 {
		lines[len(lines)-1] += b.Len() - n
	}
	return b.Bytes(), lines, nil
}
