package codec

import (
	"fmt"
	"strings"
)

// Auto is the encoding name that asks for the smallest encoding to be
// chosen per image.
const Auto = "auto"

// Config is a requested output format.
type Config struct {
	// Encoding is an encoding name accepted by ParseKind, or Auto. An
	// empty string is the same as Auto.
	Encoding string
	// Indexed requests a palette image, which is not supported.
	Indexed bool
	// BPP is the requested bits per pixel; zero means one.
	BPP int
}

// Validate checks c before any image is touched. It returns the requested
// Kind, or auto set to true if the encoding is to be selected per image.
func (c Config) Validate() (k Kind, auto bool, err error) {
	if c.Indexed {
		return 0, false, fmt.Errorf("%w: indexed images", ErrUnsupported)
	}
	if c.BPP != 0 && c.BPP != 1 {
		return 0, false, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, c.BPP)
	}
	if name := strings.TrimSpace(c.Encoding); name == "" || strings.EqualFold(name, Auto) {
		return 0, true, nil
	}
	k, err = ParseKind(c.Encoding)
	if err != nil {
		return 0, false, err
	}
	return k, false, nil
}
