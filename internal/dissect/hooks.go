// Package dissect wires the link, transport and app grammars into a
// streaming DNP3 dissector: it resynchronizes on link frames inside an
// arbitrary byte stream, reassembles transport segment series per
// connection, and reports everything it sees through a Hooks implementation.
package dissect

import (
	"github.com/nblair2/dnp3snoop/internal/app"
	"github.com/nblair2/dnp3snoop/internal/link"
	"github.com/nblair2/dnp3snoop/internal/transport"
)

// Hooks receives dissection events. Calls are synchronous and strictly in
// arrival order: a TransportSegment always precedes any TransportPayload or
// App* event derived from the same segment. Implementations must not retain
// the raw byte slices past the call.
type Hooks interface {
	// LinkFrame fires for every parsed link frame. raw holds exactly the
	// frame's wire bytes; noise skipped before its start is not included.
	LinkFrame(frame *link.Frame, raw []byte)

	// TransportReject fires when link user data fails the transport
	// segment parse.
	TransportReject()

	// TransportSegment fires for each accepted transport segment.
	TransportSegment(seg *transport.Segment)

	// TransportPayload fires for each reassembled series payload, before
	// the application parse is attempted.
	TransportPayload(payload []byte)

	// AppFragment fires when the payload parsed as a request or
	// response. raw holds the accumulated raw link frames that carried
	// the fragment.
	AppFragment(frag *app.Fragment, raw []byte)

	// AppError fires when the payload was recognizable but semantically
	// invalid.
	AppError(kind app.ErrorKind)

	// AppReject fires when the payload did not parse at all.
	AppReject()
}

// NopHooks discards every event. Embed it to implement only part of Hooks.
type NopHooks struct{}

func (NopHooks) LinkFrame(*link.Frame, []byte)          {}
func (NopHooks) TransportReject()                       {}
func (NopHooks) TransportSegment(*transport.Segment)    {}
func (NopHooks) TransportPayload([]byte)                {}
func (NopHooks) AppFragment(*app.Fragment, []byte)      {}
func (NopHooks) AppError(app.ErrorKind)                 {}
func (NopHooks) AppReject()                             {}
