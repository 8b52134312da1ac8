package link

import (
	"bytes"
	"testing"
)

// buildFrame assembles a wire frame with correct CRCs.
func buildFrame(ctrl byte, dst, src uint16, userData []byte) []byte {
	b := []byte{
		StartByte1, StartByte2,
		byte(5 + len(userData)),
		ctrl,
		byte(dst), byte(dst >> 8),
		byte(src), byte(src >> 8),
	}

	crc := Checksum(b)
	b = append(b, byte(crc), byte(crc>>8))

	for off := 0; off < len(userData); off += BlockSize {
		block := userData[off:min(off+BlockSize, len(userData))]
		b = append(b, block...)
		crc := Checksum(block)
		b = append(b, byte(crc), byte(crc>>8))
	}

	return b
}

const ctrlUserDataUnconf = 0xC4 // DIR | PRM | UNCONFIRMED_USER_DATA

func TestDecodeUserDataFrame(t *testing.T) {
	payload := []byte{0xC3, 0xC0, 0x01, 0x3C, 0x02, 0x06}
	wire := buildFrame(ctrlUserDataUnconf, 1024, 1, payload)

	f, n, err := Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if n != len(wire) {
		t.Fatalf("consumed %d bytes, want %d", n, len(wire))
	}

	if !f.Dir || !f.Prm || f.Fcb || f.Fcv {
		t.Fatalf("control bits wrong: %+v", f)
	}

	if f.Func != FuncUnconfirmedUserData {
		t.Fatalf("func = %v, want UNCONFIRMED_USER_DATA", f.Func)
	}

	if f.Destination != 1024 || f.Source != 1 {
		t.Fatalf("addresses = %d->%d, want 1->1024", f.Source, f.Destination)
	}

	if f.Len != len(payload) || !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload = %x, want %x", f.Payload, payload)
	}
}

func TestDecodeMultiBlockPayload(t *testing.T) {
	payload := make([]byte, 40) // three CRC blocks
	for i := range payload {
		payload[i] = byte(i)
	}

	wire := buildFrame(ctrlUserDataUnconf, 2, 3, payload)

	f, n, err := Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if n != FrameSize(5+len(payload)) {
		t.Fatalf("consumed %d, want %d", n, FrameSize(5+len(payload)))
	}

	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch across blocks")
	}
}

func TestDecodeBodyCRCErrorKeepsFrame(t *testing.T) {
	wire := buildFrame(ctrlUserDataUnconf, 2, 3, []byte{0xC3, 0x01, 0x02})
	wire[MinFrameSize] ^= 0xFF // corrupt first body byte

	f, n, err := Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if n != len(wire) {
		t.Fatalf("consumed %d, want %d", n, len(wire))
	}

	if f.Payload != nil {
		t.Fatalf("payload should be absent after body CRC error, got %x", f.Payload)
	}

	if f.Len != 3 {
		t.Fatalf("len = %d, want 3", f.Len)
	}
}

func TestDecodeHeaderCRCErrorRejects(t *testing.T) {
	wire := buildFrame(ctrlUserDataUnconf, 2, 3, []byte{0xC3})
	wire[3] ^= 0x01 // flip a control bit without fixing the CRC

	if _, _, err := Decode(wire); err != ErrHeaderCRC {
		t.Fatalf("err = %v, want ErrHeaderCRC", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	wire := buildFrame(ctrlUserDataUnconf, 2, 3, []byte{0xC3, 0x01})

	for cut := 1; cut < len(wire); cut++ {
		if _, _, err := Decode(wire[:cut]); err == nil {
			t.Fatalf("decode succeeded on %d of %d bytes", cut, len(wire))
		}
	}
}

func TestDecodeBadStart(t *testing.T) {
	if _, _, err := Decode([]byte{0x64, 0x05, 0, 0, 0, 0, 0, 0, 0, 0}); err != ErrNoStartBytes {
		t.Fatalf("err = %v, want ErrNoStartBytes", err)
	}
}

func TestSyncSkipsNoise(t *testing.T) {
	wire := buildFrame(ctrlUserDataUnconf, 2, 3, []byte{0xC3, 0xC0, 0x01})
	junk := []byte{0x00, 0x05, 0x64, 0xFF, 0x13} // includes a fake start
	stream := append(append([]byte{}, junk...), wire...)

	f, start, consumed, ok := Sync(stream)
	if !ok {
		t.Fatalf("no frame found")
	}

	if start != len(junk) {
		t.Fatalf("start = %d, want %d", start, len(junk))
	}

	if consumed != len(stream) {
		t.Fatalf("consumed = %d, want %d", consumed, len(stream))
	}

	if f.Source != 3 || f.Destination != 2 {
		t.Fatalf("frame fields wrong: %+v", f)
	}
}

func TestSyncNoMatch(t *testing.T) {
	if _, _, _, ok := Sync(bytes.Repeat([]byte{0x05, 0x64, 0x00}, 20)); ok {
		t.Fatalf("matched a frame inside noise")
	}
}

func TestSyncDiscard(t *testing.T) {
	if d := SyncDiscard(MaxFrameSize - 1); d != 0 {
		t.Fatalf("short tail discarded %d bytes", d)
	}

	if d := SyncDiscard(1000); d != 1000-(MaxFrameSize-1) {
		t.Fatalf("discard = %d, want %d", d, 1000-(MaxFrameSize-1))
	}
}
