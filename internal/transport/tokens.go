package transport

// The segment-series state machine runs over an alphabet of abstract input
// events rather than raw bytes:
//
//	A   a segment arrived with the FIR bit set
//	=   a segment arrived with FIR unset and is bit-identical to the last
//	+   a segment arrived with FIR unset and seq == (lastseq+1)%64
//	!   a segment arrived with FIR unset and seq != (lastseq+1)%64
//	_   a segment arrived with FIR unset and there was no previous segment
//	Z   the arriving segment has the FIN bit set (follows its first token)
const (
	TokFir  byte = 'A'
	TokDup  byte = '='
	TokNext byte = '+'
	TokGap  byte = '!'
	TokNone byte = '_'
	TokFin  byte = 'Z'
)

// Tokens encodes an incoming segment as one or two input events for the
// state machine, each paired with the segment it came from. last is the
// previously received segment on the same connection, or nil.
func Tokens(seg, last *Segment) (syms []byte, segs []*Segment) {
	syms = make([]byte, 0, 2)
	segs = make([]*Segment, 0, 2)

	switch {
	case seg.Fir:
		syms = append(syms, TokFir)
	case last == nil:
		syms = append(syms, TokNone)
	case seg.Equal(last):
		syms = append(syms, TokDup)
	case seg.Seq == (last.Seq+1)%64:
		syms = append(syms, TokNext)
	default:
		syms = append(syms, TokGap)
	}
	segs = append(segs, seg)

	if seg.Fin {
		syms = append(syms, TokFin)
		segs = append(segs, seg)
	}

	return syms, segs
}
