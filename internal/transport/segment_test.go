package transport

import (
	"bytes"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want Segment
	}{
		{"fir fin seq", []byte{0xC3, 0x01, 0x02}, Segment{Fir: true, Fin: true, Seq: 3, Payload: []byte{0x01, 0x02}}},
		{"middle", []byte{0x05, 0xAA}, Segment{Seq: 5, Payload: []byte{0xAA}}},
		{"fin only", []byte{0x86}, Segment{Fin: true, Seq: 6, Payload: []byte{}}},
		{"seq mask", []byte{0x3F, 0x00}, Segment{Seq: 63, Payload: []byte{0x00}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			if got.Fir != tc.want.Fir || got.Fin != tc.want.Fin || got.Seq != tc.want.Seq ||
				!bytes.Equal(got.Payload, tc.want.Payload) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseEmptyFails(t *testing.T) {
	if _, err := Parse(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestEqual(t *testing.T) {
	a := &Segment{Fir: true, Seq: 5, Payload: []byte("abc")}

	if !a.Equal(a.Clone()) {
		t.Fatalf("clone not equal to original")
	}

	variants := []*Segment{
		{Fir: false, Seq: 5, Payload: []byte("abc")},
		{Fir: true, Fin: true, Seq: 5, Payload: []byte("abc")},
		{Fir: true, Seq: 6, Payload: []byte("abc")},
		{Fir: true, Seq: 5, Payload: []byte("abd")},
		{Fir: true, Seq: 5, Payload: []byte("ab")},
	}
	for i, v := range variants {
		if a.Equal(v) {
			t.Fatalf("variant %d compared equal", i)
		}
	}
}

func TestCloneOwnsPayload(t *testing.T) {
	buf := []byte{0x41, 0x42}
	s := &Segment{Payload: buf}
	c := s.Clone()

	buf[0] = 0xFF

	if c.Payload[0] != 0x41 {
		t.Fatalf("clone payload aliases the source buffer")
	}
}
