package dissect

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nblair2/dnp3snoop/internal/app"
	"github.com/nblair2/dnp3snoop/internal/link"
	"github.com/nblair2/dnp3snoop/internal/transport"
)

// Config sizes one dissector instance. Both values are fixed for the
// instance's lifetime.
type Config struct {
	// CtxMax caps the number of live (src,dst) contexts.
	CtxMax int

	// BufLen is both the rolling input buffer size and the per-context
	// raw frame accumulator size. Must hold at least one maximum sized
	// link frame plus pending data.
	BufLen int

	// Logger receives diagnostics (recycled contexts, overflows,
	// unsupported function codes).
	Logger zerolog.Logger
}

// DefaultConfig returns the recommended sizing.
func DefaultConfig() Config {
	return Config{
		CtxMax: 16,
		BufLen: 4096,
		Logger: zerolog.Nop(),
	}
}

// Dissector consumes a byte stream carrying DNP3 link frames and emits
// structured events through its Hooks. One instance dissects one stream;
// concurrent use of the same instance is not supported, but independent
// instances share nothing.
type Dissector struct {
	hooks Hooks
	cfg   Config
	log   zerolog.Logger

	contexts *Context

	buf []byte // rolling input buffer
	n   int    // fill
}

// New creates a dissector delivering events to hooks. A nil hooks gets
// NopHooks so callers can dissect for the side effects alone.
func New(hooks Hooks, cfg Config) *Dissector {
	if hooks == nil {
		hooks = NopHooks{}
	}

	if cfg.CtxMax <= 0 {
		cfg.CtxMax = DefaultConfig().CtxMax
	}

	if cfg.BufLen < link.MaxFrameSize {
		cfg.BufLen = DefaultConfig().BufLen
	}

	return &Dissector{
		hooks: hooks,
		cfg:   cfg,
		log:   cfg.Logger,
		buf:   make([]byte, cfg.BufLen),
	}
}

// Buffer exposes the writable region of the rolling input buffer. The
// caller copies fresh stream bytes into it and reports the count with Feed.
// The region is republished after every Feed.
func (d *Dissector) Buffer() []byte {
	return d.buf[d.n:]
}

// ErrOverfeed is returned when Feed reports more bytes than Buffer offered.
var ErrOverfeed = errors.New("dissect: fed more bytes than buffer capacity")

// Feed tells the dissector that n bytes were appended to Buffer. All frames
// found are processed synchronously; the unconsumed tail is compacted to
// the buffer head before Feed returns.
func (d *Dissector) Feed(n int) error {
	if n < 0 || d.n+n > len(d.buf) {
		return ErrOverfeed
	}

	d.n += n

	m := 0
	for {
		frame, start, consumed, ok := link.Sync(d.buf[m:d.n])
		if !ok {
			break
		}

		// noise skipped before the frame start stays out of the hooks
		d.processLinkFrame(frame, d.buf[m+start:m+consumed])
		m += consumed
	}

	// flush consumed input
	copy(d.buf, d.buf[m:d.n])
	d.n -= m

	// The retained tail holds no complete frame. Anything before the
	// trailing frame-sized window can never become one, so let it go
	// rather than wedge the buffer on pure noise.
	if drop := link.SyncDiscard(d.n); drop > 0 {
		copy(d.buf, d.buf[drop:d.n])
		d.n -= drop
	}

	return nil
}

// Write feeds an arbitrary byte slice through Buffer/Feed, implementing
// io.Writer for callers that do not want to manage the buffer cursor.
func (d *Dissector) Write(p []byte) (int, error) {
	total := 0

	for len(p) > 0 {
		dst := d.Buffer()
		if len(dst) == 0 {
			return total, fmt.Errorf("dissect: input stalled with %d bytes pending", d.n)
		}

		n := copy(dst, p)
		if err := d.Feed(n); err != nil {
			return total, err
		}

		p = p[n:]
		total += n
	}

	return total, nil
}

// Finish tears the instance down, dropping all contexts and abandoning any
// in-flight series parses without emitting partial results.
func (d *Dissector) Finish() {
	for ctx := d.contexts; ctx != nil; ctx = ctx.next {
		ctx.resetTransport()
	}

	d.contexts = nil
	d.n = 0
}

func (d *Dissector) processLinkFrame(frame *link.Frame, raw []byte) {
	d.hooks.LinkFrame(frame, raw)

	if !frame.Prm {
		return
	}

	switch frame.Func {
	case link.FuncUnconfirmedUserData:
		if frame.Payload == nil { // CRC error
			return
		}

		ctx := d.lookupContext(frame.Source, frame.Destination)

		seg, err := transport.Parse(frame.Payload)
		if err != nil {
			// only possible for an empty payload, which AN2013-004b
			// forbids for user data
			d.hooks.TransportReject()

			return
		}

		if ctx.n+len(raw) <= len(ctx.buf) {
			copy(ctx.buf[ctx.n:], raw)
			ctx.n += len(raw)
		} else {
			d.log.Warn().
				Int("pending", ctx.n).
				Int("frame", len(raw)).
				Msg("raw frame buffer overflow, dropping frame bytes")
		}

		d.processTransportSegment(ctx, seg)

	case link.FuncConfirmedUserData:
		if frame.Payload == nil {
			return
		}

		d.log.Warn().Msg("confirmed user data not supported")
	}
}

func (d *Dissector) processTransportSegment(ctx *Context, seg *transport.Segment) {
	d.hooks.TransportSegment(seg)

	syms, segs := transport.Tokens(seg, ctx.lastSegment)
	ctx.lastSegment = seg.Clone()

	n := len(syms)

	m := 0
	for m < n {
		if ctx.tfun == nil {
			ctx.tfun = transport.NewMachine()
			ctx.tfunPos = 0
		}

		match, done := ctx.tfun.Feed(transport.Chunk{
			Base: ctx.tfunPos,
			Syms: syms[m:n],
			Segs: segs[m:n],
		})
		if !done {
			ctx.tfunPos += n - m

			break
		}

		consumed := match.End - ctx.tfunPos

		if match.Valid {
			d.processTransportPayload(ctx, match.Payload)
		}

		ctx.n = 0 // flush raw frames on any series terminator
		ctx.tfun = nil
		ctx.tfunPos = 0

		// consumed can be zero when a FIR restart aborts a series right
		// at a chunk boundary; the fresh parse re-reads that token.
		m += consumed
	}
}

func (d *Dissector) processTransportPayload(ctx *Context, payload []byte) {
	d.hooks.TransportPayload(payload)

	frag, err := app.ParseMessage(payload)

	var tok *app.TokenError

	switch {
	case err == nil:
		d.hooks.AppFragment(frag, ctx.buf[:ctx.n])
	case errors.As(err, &tok):
		d.hooks.AppError(tok.Kind)
	default:
		d.hooks.AppReject()
	}

	ctx.n = 0
}
