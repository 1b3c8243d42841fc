/*
Package codec implements the pixel stream encodings understood by the
firmware image library.

An image is treated as one unbroken sequence of width * height bits, row
after row with no padding between rows. Two encodings are supported:

Raw packs eight consecutive bits into each byte, the earliest bit in the
most significant position. Byte boundaries are global to the image so a
byte may straddle two rows.

RunLength (RLC) stores each run of identical bits as a single byte of the
form length << 1 | bit, with runs longer than 127 bits split over several
bytes.

Neither encoding flushes its trailing data by default: a final incomplete
byte or a final open run is left in the encoder state and never written.
The firmware decoders have always been fed streams produced this way, so
the behavior is kept unless Options.FlushTrailing is set.

Each encoded image is preceded by a fixed seven byte header; see Header.
*/
package codec

import (
	"errors"
	"io"
)

var (
	// ErrUnsupported is returned for configurations the monochrome
	// encoder cannot produce, such as indexed images.
	ErrUnsupported = errors.New("codec: unsupported configuration")
	// ErrUnknownEncoding is returned for an encoding name or Kind that is
	// not recognized.
	ErrUnknownEncoding = errors.New("codec: unknown encoding")
	// ErrTooLarge is returned when an image dimension does not fit in
	// the header.
	ErrTooLarge = errors.New("codec: image too large")
	// ErrTooMuchData is returned when decoding a stream that describes
	// more pixels than the image holds.
	ErrTooMuchData = errors.New("codec: too much image data")
)

// Observer is notified of every byte emitted by a packer. It is meant for
// diagnostics and has no influence on the output.
type Observer interface {
	Observe(k Kind, b byte)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(k Kind, b byte)

// Observe calls f(k, b).
func (f ObserverFunc) Observe(k Kind, b byte) {
	f(k, b)
}

// Options alter the behavior of a packer. A nil *Options is valid and means
// the defaults.
type Options struct {
	// FlushTrailing writes out the final incomplete byte, padded with
	// zero bits, or the final open run at the end of a pass.
	FlushTrailing bool
	// Observer, if set, sees every emitted byte.
	Observer Observer
}

func (o *Options) flush() bool {
	return o != nil && o.FlushTrailing
}

func (o *Options) observer() Observer {
	if o == nil {
		return nil
	}
	return o.Observer
}

// Trial passes must not feed the observer, only the pass that is kept
func (o *Options) trial() *Options {
	if o == nil {
		return nil
	}
	return &Options{FlushTrailing: o.FlushTrailing}
}

type emitter struct {
	kind     Kind
	w        io.ByteWriter
	observer Observer
}

func (e *emitter) emit(b byte) error {
	if err := e.w.WriteByte(b); err != nil {
		return err
	}
	if e.observer != nil {
		e.observer.Observe(e.kind, b)
	}
	return nil
}

// counter is an io.ByteWriter that only counts
type counter int

func (c *counter) WriteByte(byte) error {
	*c++
	return nil
}
