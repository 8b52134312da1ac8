// Package transport implements the DNP3 transport layer grammar and the
// segment-series state machine that reassembles application fragments.
package transport

import (
	"bytes"
	"errors"
)

// Transport header bits
const (
	HeaderFIN     uint8 = 0x80
	HeaderFIR     uint8 = 0x40
	SeqMask       uint8 = 0x3F
	MaxPayloadLen       = 249 // link user data max minus the header byte
)

// ErrEmpty is returned for a zero length transport PDU, which AN2013-004b
// rules out for user data frames.
var ErrEmpty = errors.New("transport: empty segment")

// Segment is one decoded transport layer PDU.
type Segment struct {
	Fir     bool
	Fin     bool
	Seq     uint8 // 0..63
	Payload []byte
}

// Parse decodes a transport segment from link user data.
func Parse(b []byte) (*Segment, error) {
	if len(b) == 0 {
		return nil, ErrEmpty
	}

	return &Segment{
		Fir:     b[0]&HeaderFIR != 0,
		Fin:     b[0]&HeaderFIN != 0,
		Seq:     b[0] & SeqMask,
		Payload: b[1:],
	}, nil
}

// Len returns the payload byte count.
func (s *Segment) Len() int {
	return len(s.Payload)
}

// Equal reports whether two segments are byte-by-byte identical, including
// their payloads. It is how link layer retransmissions are recognized.
func (s *Segment) Equal(o *Segment) bool {
	return s.Fir == o.Fir &&
		s.Fin == o.Fin &&
		s.Seq == o.Seq &&
		bytes.Equal(s.Payload, o.Payload)
}

// Clone deep-copies the segment so the copy outlives whatever buffer the
// original payload was sliced from.
func (s *Segment) Clone() *Segment {
	c := *s
	c.Payload = append([]byte(nil), s.Payload...)

	return &c
}
