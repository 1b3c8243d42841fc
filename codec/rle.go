package codec

import (
	"fmt"
	"io"
)

// MaxRun is the longest run a single byte can hold.
const MaxRun = 0x7f

// EncodeRun returns the byte for a run of n bits of value bit. It panics if
// n is outside [0, MaxRun].
func EncodeRun(bit bool, n int) byte {
	if n < 0 || n > MaxRun {
		panic(fmt.Sprintf("codec: run length %d out of range", n))
	}
	b := byte(n) << 1
	if bit {
		b |= 1
	}
	return b
}

// DecodeRun is the inverse of EncodeRun.
func DecodeRun(b byte) (bit bool, n int) {
	return b&1 != 0, int(b >> 1)
}

// RunState is the run carried between rows by a RunLengthPacker.
type RunState struct {
	Open   bool // a run has been started
	Bit    bool // value of the current run
	Length int  // bits in the current run, 0 to MaxRun-1
}

// RunLengthPacker collapses runs of identical bits into single bytes.
type RunLengthPacker struct {
	State RunState

	e     emitter
	flush bool
}

// NewRunLengthPacker returns a RunLengthPacker with empty state writing to w.
func NewRunLengthPacker(w io.ByteWriter, o *Options) *RunLengthPacker {
	return &RunLengthPacker{
		e: emitter{
			kind:     RunLength,
			w:        w,
			observer: o.observer(),
		},
		flush: o.flush(),
	}
}

// Kind returns RunLength.
func (p *RunLengthPacker) Kind() Kind {
	return RunLength
}

// WriteRow consumes the next row of bits. Runs continue across rows.
func (p *RunLengthPacker) WriteRow(row []bool) error {
	s := &p.State
	for _, bit := range row {
		switch {
		case !s.Open:
			s.Open, s.Bit, s.Length = true, bit, 1
		case bit == s.Bit:
			s.Length++
			// A full run is written straight away; the run stays open
			// with the same bit and starts counting again from zero
			if s.Length == MaxRun {
				if err := p.e.emit(EncodeRun(s.Bit, MaxRun)); err != nil {
					return err
				}
				s.Length = 0
			}
		default:
			if err := p.e.emit(EncodeRun(s.Bit, s.Length)); err != nil {
				return err
			}
			s.Bit, s.Length = bit, 1
		}
	}
	return nil
}

// Close ends the pass. The open run in State is only written when
// FlushTrailing was requested; otherwise it stays in State.
func (p *RunLengthPacker) Close() error {
	s := &p.State
	if !p.flush || !s.Open || s.Length == 0 {
		return nil
	}
	b := EncodeRun(s.Bit, s.Length)
	*s = RunState{}
	return p.e.emit(b)
}
