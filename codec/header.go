package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// HeaderSize is the size in bytes of Header once marshalled. It is the
// same for every encoding.
const HeaderSize = 7

// Header mirrors the fixed part of the firmware image_t structure that
// precedes the pixel data. It is stored little-endian.
type Header struct {
	Width   uint16
	Height  uint16
	Palette uint16 // zero for the NULL palette
	Format  byte
}

// FormatByte packs the image_format_t bitfield: the encoding in bit 0, the
// indexed flag in bit 1 and the bits per pixel in bits 2 to 7.
func FormatByte(k Kind, indexed bool, bpp int) byte {
	b := byte(k)&0x01 | byte(bpp&0x3f)<<2
	if indexed {
		b |= 0x02
	}
	return b
}

// NewHeader returns the Header for an image of the given size encoded with
// k. It fails if either dimension does not fit in 16 bits.
func NewHeader(width, height int, k Kind) (Header, error) {
	if width <= 0 || height <= 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return Header{}, ErrTooLarge
	}
	return Header{
		Width:  uint16(width),
		Height: uint16(height),
		Format: FormatByte(k, false, 1),
	}, nil
}

// Kind returns the encoding recorded in the format byte.
func (h Header) Kind() Kind {
	return Kind(h.Format & 0x01)
}

// Indexed reports whether the format byte has the indexed flag set.
func (h Header) Indexed() bool {
	return h.Format&0x02 != 0
}

// BPP returns the bits per pixel recorded in the format byte.
func (h Header) BPP() int {
	return int(h.Format >> 2)
}

// MarshalBinary encodes the header into its HeaderSize byte form.
func (h Header) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	if err := binary.Write(b, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalBinary decodes the header from b, which must be exactly
// HeaderSize bytes.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) != HeaderSize {
		return errors.New("codec: header must be 7 bytes")
	}
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, h)
}
