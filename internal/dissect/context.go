package dissect

import (
	"github.com/nblair2/dnp3snoop/internal/transport"
)

// Context is the per-(source,destination) reassembly state. Contexts live
// on a singly linked list ordered most recently used first.
type Context struct {
	src, dst uint16

	// lastSegment is a deep copy of the most recent transport segment;
	// nil until one arrives. The copy is owned by the context and shares
	// no memory with the incoming segment, whose payload is sliced from
	// the link frame's payload.
	lastSegment *transport.Segment

	// tfun is the in-flight series parse, nil between series. tfunPos
	// counts the tokens fed to it by previous segments so that match
	// positions can be aligned across chunks; it is zero whenever tfun
	// is nil.
	tfun    *transport.Machine
	tfunPos int

	// buf accumulates the raw link frames of the fragment in progress.
	buf []byte
	n   int

	next *Context
}

func (c *Context) resetTransport() {
	if c.tfun != nil {
		c.tfun.Finish()
		c.tfun = nil
	}

	c.tfunPos = 0
}

// lookupContext finds the context for a (src,dst) pair and moves it to the
// front of the list. At most CtxMax contexts are kept; when the table is
// full the least recently used one is recycled for the new pair, dropping
// whatever partial state it held.
func (d *Dissector) lookupContext(src, dst uint16) *Context {
	var ctx *Context

	pnext := &d.contexts
	n := 0

	for ctx = *pnext; ctx != nil; ctx = *pnext {
		if ctx.src == src && ctx.dst == dst {
			*pnext = ctx.next // unlink
			ctx.next = d.contexts
			d.contexts = ctx

			return ctx
		}

		n++
		if n >= d.cfg.CtxMax {
			break // recycle the tail; pnext still points at it
		}

		pnext = &ctx.next
	}

	if ctx == nil {
		ctx = &Context{buf: make([]byte, d.cfg.BufLen)}
	} else {
		*pnext = ctx.next // unlink the recycled tail

		if ctx.n > 0 {
			d.log.Warn().
				Uint16("src", ctx.src).
				Uint16("dst", ctx.dst).
				Int("bytes", ctx.n).
				Msg("context recycled with pending bytes dropped")
		}
	}

	ctx.n = 0
	ctx.lastSegment = nil
	ctx.resetTransport()

	ctx.src = src
	ctx.dst = dst
	ctx.next = d.contexts
	d.contexts = ctx

	return ctx
}
