package codec

import (
	"fmt"
	"strings"
)

// Kind identifies a pixel stream encoding. The values match the
// image_encoding_t enumeration in the firmware.
type Kind int

const (
	// Raw is plain bit-packing, eight pixels per byte.
	Raw Kind = iota
	// RunLength is run-length coding, one run per byte.
	RunLength
)

// Kinds is the set of encodings available for monochrome images, in
// preference order.
var Kinds = []Kind{Raw, RunLength}

var kindNames = map[Kind]string{
	Raw:       "raw",
	RunLength: "rlc",
}

var kindTags = map[Kind]string{
	Raw:       "IMAGE_ENCODING_RAW",
	RunLength: "IMAGE_ENCODING_RLC",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Tag returns the C enumerator for k.
func (k Kind) Tag() string {
	return kindTags[k]
}

func (k Kind) valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps an encoding name, either the short name or the C
// enumerator, to a Kind. Matching is case insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "raw", "image_encoding_raw":
		return Raw, nil
	case "rlc", "rle", "runlength", "image_encoding_rlc":
		return RunLength, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}
