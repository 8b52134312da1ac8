// Package output renders dissection events as human readable text, one
// line per event.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/nblair2/dnp3snoop/internal/app"
	"github.com/nblair2/dnp3snoop/internal/link"
	"github.com/nblair2/dnp3snoop/internal/transport"
)

// Printer implements dissect.Hooks by writing formatted event lines.
type Printer struct {
	w     io.Writer
	color bool

	// Raw adds a hex dump of frame bytes to link frame lines.
	Raw bool

	// Quiet suppresses link and transport lines, leaving only
	// application layer events.
	Quiet bool
}

// NewPrinter creates a printer writing to w. Color is enabled when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}

	return &Printer{w: w, color: color}
}

const (
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}

	return code + s + ansiReset
}

// LinkFrame prints one L> line per frame.
func (p *Printer) LinkFrame(frame *link.Frame, raw []byte) {
	if p.Quiet {
		return
	}

	crc := ""
	if frame.Payload == nil && frame.Len > 0 {
		crc = p.paint(ansiRed, " [payload CRC error]")
	}

	fmt.Fprintf(p.w, "%s %d -> %d %s len=%d%s\n",
		p.paint(ansiDim, "L>"),
		frame.Source, frame.Destination, frame.FuncName(), frame.Len, crc)

	if p.Raw {
		fmt.Fprintf(p.w, "   %x\n", raw)
	}
}

// TransportReject prints a rejection marker for unparseable link user data.
func (p *Printer) TransportReject() {
	if p.Quiet {
		return
	}

	fmt.Fprintf(p.w, "%s transport segment rejected\n", p.paint(ansiRed, "T!"))
}

// TransportSegment prints one T> line per accepted segment.
func (p *Printer) TransportSegment(seg *transport.Segment) {
	if p.Quiet {
		return
	}

	flags := make([]string, 0, 2)
	if seg.Fir {
		flags = append(flags, "FIR")
	}

	if seg.Fin {
		flags = append(flags, "FIN")
	}

	fmt.Fprintf(p.w, "%s seq=%d len=%d %s\n",
		p.paint(ansiDim, "T>"), seg.Seq, seg.Len(), strings.Join(flags, "|"))
}

// TransportPayload prints the reassembled series length.
func (p *Printer) TransportPayload(payload []byte) {
	if p.Quiet {
		return
	}

	fmt.Fprintf(p.w, "%s reassembled %d bytes\n", p.paint(ansiDim, "T="), len(payload))
}

// AppFragment prints one A> line per fragment with its object headers.
func (p *Printer) AppFragment(frag *app.Fragment, raw []byte) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [%d] %s", p.paint(ansiGreen, "A>"), frag.Ctrl.Seq, frag.Func)

	if frag.Ctrl.Fir {
		b.WriteString(" (fir)")
	}

	if frag.Ctrl.Fin {
		b.WriteString(" (fin)")
	}

	if frag.Ctrl.Con {
		b.WriteString(" (con)")
	}

	if frag.Ctrl.Uns {
		b.WriteString(" (uns)")
	}

	if !frag.Request {
		if names := frag.IIN.Names(); len(names) > 0 {
			fmt.Fprintf(&b, " iin=%s", strings.Join(names, ","))
		}
	}

	for _, obj := range frag.Objects {
		fmt.Fprintf(&b, " g%dv%d", obj.Group, obj.Variation)

		switch obj.RangeSpec {
		case app.RangeStartStop1, app.RangeStartStop2, app.RangeStartStop4:
			fmt.Fprintf(&b, " #%d..%d", obj.Start, obj.Stop)
		case app.RangeCount1, app.RangeCount2, app.RangeCount4, app.RangeFreeFormat:
			fmt.Fprintf(&b, " *%d", obj.Count)
		}
	}

	fmt.Fprintf(&b, " (%d raw bytes)\n", len(raw))
	io.WriteString(p.w, b.String())
}

// AppError prints the diagnostic token of a semantically invalid message.
func (p *Printer) AppError(kind app.ErrorKind) {
	fmt.Fprintf(p.w, "%s application error: %s\n", p.paint(ansiYellow, "A!"), kind)
}

// AppReject prints a marker for payloads that did not parse at all.
func (p *Printer) AppReject() {
	fmt.Fprintf(p.w, "%s application fragment rejected\n", p.paint(ansiRed, "A!"))
}
