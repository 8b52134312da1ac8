package transport

// The series recognizer matches one top-level alternative of the regular
// language
//
//	( A+ [+=]* ( Z | [^AZ+=] ) | [^A] )*
//
// over the token alphabet, with greedy matching; the dissection pipeline
// supplies the outer star by restarting a fresh Machine after every match.
// A valid series is one or more A tokens (the last one wins, every earlier
// A started a series that got aborted), any number of continuations or
// duplicates, and a Z terminator. Any other terminator aborts the series
// and its payload is discarded. A stray token outside a series is consumed
// and ignored.
//
// Compare with IEEE 1815-2012 Figure 8-4, "Reception state diagram".
//
// One case falls outside the language: an A arriving after a continuation
// token. Per the reception diagram a FIR segment always restarts
// reassembly, so the machine aborts the running series without consuming
// the A, and the next parse starts on it.

type machineState int

const (
	stIdle machineState = iota // no tokens consumed yet
	stLead                     // consumed A tokens only
	stCont                     // consumed at least one + or = after the A run
)

// Chunk carries a run of input tokens into Feed together with the side
// table resolving each token back to its segment. Base is the absolute
// index of Syms[0], counted from the start of the in-flight parse. The
// slices are only read during the Feed call.
type Chunk struct {
	Base int
	Syms []byte
	Segs []*Segment
}

// Match is a committed top-level alternative. End is the absolute token
// index just past the last consumed token. Payload is the reassembled
// series, present only when Valid.
type Match struct {
	End     int
	Valid   bool
	Payload []byte
}

// Machine is one in-flight incremental parse. The zero value is an idle
// parse, the same state NewMachine returns.
type Machine struct {
	state   machineState
	payload []byte
}

// NewMachine starts a fresh in-flight parse.
func NewMachine() *Machine {
	return &Machine{state: stIdle}
}

// Feed consumes tokens from c until the alternative is decided. It returns
// the match and true once decided; (nil, false) means the machine needs
// more tokens. Payload bytes are copied out of the segments as they are
// consumed, so a match never aliases the caller's buffers.
func (m *Machine) Feed(c Chunk) (*Match, bool) {
	for i, sym := range c.Syms {
		idx := c.Base + i
		seg := c.Segs[i]

		switch m.state {
		case stIdle:
			if sym == TokFir {
				m.payload = append([]byte(nil), seg.Payload...)
				m.state = stLead

				continue
			}
			// single token outside a series: consume and ignore

			return &Match{End: idx + 1}, true

		case stLead:
			if sym == TokFir { // restart, last A wins
				m.payload = append(m.payload[:0], seg.Payload...)

				continue
			}

			fallthrough

		case stCont:
			switch sym {
			case TokFir:
				// restart after a continuation: abort without
				// consuming so the next parse starts on the A
				return &Match{End: idx}, true
			case TokNext:
				m.payload = append(m.payload, seg.Payload...)
				m.state = stCont
			case TokDup:
				m.state = stCont
			case TokFin:
				return &Match{End: idx + 1, Valid: true, Payload: m.payload}, true
			default: // ! or _ : aborted series, terminator consumed
				return &Match{End: idx + 1}, true
			}
		}
	}

	return nil, false
}

// Finish abandons the parse. An undecided series never emits a result, so
// there is nothing to return; the method exists so teardown reads the same
// as the streaming contract.
func (m *Machine) Finish() *Match {
	return nil
}
