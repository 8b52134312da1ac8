package transport

import (
	"testing"
)

// chunk builds a Chunk pairing each token with a segment carrying the given
// payload string.
func chunk(base int, toks string, payloads ...string) Chunk {
	c := Chunk{Base: base, Syms: []byte(toks)}
	for _, p := range payloads {
		c.Segs = append(c.Segs, &Segment{Payload: []byte(p)})
	}

	return c
}

func TestMachineSingleSegmentSeries(t *testing.T) {
	m := NewMachine()

	seg := &Segment{Fir: true, Fin: true, Seq: 3, Payload: []byte{0xC0, 0x01, 0x3C, 0x01, 0x06}}
	match, done := m.Feed(Chunk{Base: 0, Syms: []byte("AZ"), Segs: []*Segment{seg, seg}})

	if !done || match == nil {
		t.Fatalf("expected a match")
	}

	if match.End != 2 || !match.Valid {
		t.Fatalf("match = %+v, want End=2 Valid", match)
	}

	if string(match.Payload) != string(seg.Payload) {
		t.Fatalf("payload = %x", match.Payload)
	}
}

func TestMachineTwoSegmentSeries(t *testing.T) {
	m := NewMachine()

	if match, done := m.Feed(chunk(0, "A", "a")); done {
		t.Fatalf("matched early: %+v", match)
	}

	match, done := m.Feed(chunk(1, "+Z", "b", "b"))
	if !done || !match.Valid {
		t.Fatalf("expected valid match, got %+v", match)
	}

	if match.End != 3 {
		t.Fatalf("End = %d, want 3", match.End)
	}

	if string(match.Payload) != "ab" {
		t.Fatalf("payload = %q, want ab", match.Payload)
	}
}

func TestMachineDuplicateSkipped(t *testing.T) {
	m := NewMachine()

	m.Feed(chunk(0, "A", "a"))
	m.Feed(chunk(1, "=", "a"))

	match, done := m.Feed(chunk(2, "+Z", "b", "b"))
	if !done || !match.Valid {
		t.Fatalf("expected valid match, got %+v", match)
	}

	if string(match.Payload) != "ab" {
		t.Fatalf("duplicate double-appended: payload = %q", match.Payload)
	}
}

func TestMachineGapAborts(t *testing.T) {
	m := NewMachine()

	m.Feed(chunk(0, "A", "a"))

	match, done := m.Feed(chunk(1, "!", "x"))
	if !done || match == nil {
		t.Fatalf("expected an aborted match")
	}

	if match.Valid || match.Payload != nil {
		t.Fatalf("aborted series carried a payload: %+v", match)
	}

	if match.End != 2 {
		t.Fatalf("terminator not consumed: End = %d", match.End)
	}
}

func TestMachineRestartLastAWins(t *testing.T) {
	m := NewMachine()

	m.Feed(chunk(0, "A", "a"))

	match, done := m.Feed(chunk(1, "AZ", "b", "b"))
	if !done || !match.Valid {
		t.Fatalf("expected valid match, got %+v", match)
	}

	if string(match.Payload) != "b" {
		t.Fatalf("payload = %q, want only the restarted series", match.Payload)
	}

	if match.End != 3 {
		t.Fatalf("End = %d, want 3", match.End)
	}
}

// A FIR arriving after a continuation aborts the running series without
// consuming the A, so the next parse starts on it.
func TestMachineRestartAfterContinuation(t *testing.T) {
	m := NewMachine()

	m.Feed(chunk(0, "A", "a"))
	m.Feed(chunk(1, "+", "b"))

	match, done := m.Feed(chunk(2, "AZ", "c", "c"))
	if !done || match == nil {
		t.Fatalf("expected an abort")
	}

	if match.Valid {
		t.Fatalf("aborted series marked valid")
	}

	if match.End != 2 {
		t.Fatalf("End = %d, want 2 (A not consumed)", match.End)
	}

	// the driver restarts on the unconsumed A
	m = NewMachine()

	match, done = m.Feed(chunk(0, "AZ", "c", "c"))
	if !done || !match.Valid || string(match.Payload) != "c" {
		t.Fatalf("restarted series: %+v", match)
	}
}

func TestMachineStrayTokensIgnored(t *testing.T) {
	for _, tok := range []string{"_", "+", "=", "!", "Z"} {
		m := NewMachine()

		match, done := m.Feed(chunk(0, tok, "x"))
		if !done || match == nil {
			t.Fatalf("stray %q not consumed", tok)
		}

		if match.Valid || match.End != 1 {
			t.Fatalf("stray %q: match = %+v", tok, match)
		}
	}
}

func TestMachineEmptyPayloadSeriesIsValid(t *testing.T) {
	m := NewMachine()

	seg := &Segment{Fir: true, Fin: true, Seq: 0, Payload: []byte{}}
	match, done := m.Feed(Chunk{Base: 0, Syms: []byte("AZ"), Segs: []*Segment{seg, seg}})

	if !done || !match.Valid {
		t.Fatalf("empty series should still be valid: %+v", match)
	}

	if len(match.Payload) != 0 {
		t.Fatalf("payload = %x, want empty", match.Payload)
	}
}

func TestMachinePayloadIsOwned(t *testing.T) {
	m := NewMachine()

	buf := []byte("abc")
	seg := &Segment{Fir: true, Fin: true, Payload: buf}

	match, _ := m.Feed(Chunk{Base: 0, Syms: []byte("AZ"), Segs: []*Segment{seg, seg}})

	buf[0] = 'X'

	if string(match.Payload) != "abc" {
		t.Fatalf("match payload aliases the segment buffer")
	}
}

func TestMachineTokenAtATime(t *testing.T) {
	m := NewMachine()

	toks := "A+=+Z"
	payloads := []string{"a", "b", "b", "c", "c"}

	var match *Match

	for i := range toks {
		var done bool

		match, done = m.Feed(chunk(i, toks[i:i+1], payloads[i]))
		if done != (i == len(toks)-1) {
			t.Fatalf("done = %v at token %d", done, i)
		}
	}

	if !match.Valid || string(match.Payload) != "abc" {
		t.Fatalf("match = %+v, want payload abc", match)
	}

	if match.End != len(toks) {
		t.Fatalf("End = %d, want %d", match.End, len(toks))
	}
}

func TestMachineFinishNeverEmits(t *testing.T) {
	m := NewMachine()
	m.Feed(chunk(0, "A", "a"))

	if r := m.Finish(); r != nil {
		t.Fatalf("incomplete series emitted %+v", r)
	}
}
