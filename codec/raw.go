package codec

import "io"

// RawState is the partial byte carried between rows by a RawPacker.
type RawState struct {
	Filled int  // number of bits in Acc, 0 to 7
	Acc    byte // bits so far, most recent in the least significant position
}

// RawPacker packs bits eight to a byte, most significant bit first.
type RawPacker struct {
	State RawState

	e     emitter
	flush bool
}

// NewRawPacker returns a RawPacker with empty state writing to w.
func NewRawPacker(w io.ByteWriter, o *Options) *RawPacker {
	return &RawPacker{
		e: emitter{
			kind:     Raw,
			w:        w,
			observer: o.observer(),
		},
		flush: o.flush(),
	}
}

// Kind returns Raw.
func (p *RawPacker) Kind() Kind {
	return Raw
}

// WriteRow consumes the next row of bits. A byte left incomplete by the
// previous row is completed first.
func (p *RawPacker) WriteRow(row []bool) error {
	s := &p.State
	for _, bit := range row {
		s.Acc <<= 1
		if bit {
			s.Acc |= 1
		}
		s.Filled++
		if s.Filled == 8 {
			if err := p.e.emit(s.Acc); err != nil {
				return err
			}
			s.Acc, s.Filled = 0, 0
		}
	}
	return nil
}

// Close ends the pass. The incomplete byte in State, if any, is only written
// when FlushTrailing was requested; otherwise it stays in State.
func (p *RawPacker) Close() error {
	s := &p.State
	if !p.flush || s.Filled == 0 {
		return nil
	}
	b := s.Acc << uint(8-s.Filled)
	s.Acc, s.Filled = 0, 0
	return p.e.emit(b)
}
