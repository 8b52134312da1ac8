package link

// Sync scans b for the first parseable link frame, advancing one byte at a
// time past anything that does not decode. On a match it returns the frame,
// the offset where it starts, and the number of bytes consumed from the
// start of b including the skipped prefix. ok is false when no complete
// frame exists anywhere in b.
//
// The stride is a single byte: a frame start may sit at any offset inside a
// discarded run, and the header CRC rules out false positives, so skipping
// further could jump over a real frame.
func Sync(b []byte) (frame *Frame, start, consumed int, ok bool) {
	for off := 0; off < len(b); off++ {
		f, n, err := Decode(b[off:])
		if err != nil {
			continue
		}

		return f, off, off + n, true
	}

	return nil, 0, 0, false
}

// SyncDiscard reports how many leading bytes of a tail that Sync rejected
// can be dropped without losing a frame. A frame is at most MaxFrameSize
// bytes, so only a start within the trailing MaxFrameSize-1 bytes can still
// complete once more input arrives; everything earlier is noise.
func SyncDiscard(tailLen int) int {
	if tailLen < MaxFrameSize {
		return 0
	}

	return tailLen - (MaxFrameSize - 1)
}
