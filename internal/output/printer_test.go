package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nblair2/dnp3snoop/internal/app"
	"github.com/nblair2/dnp3snoop/internal/link"
	"github.com/nblair2/dnp3snoop/internal/transport"
)

func TestPrinterLines(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf)

	p.LinkFrame(&link.Frame{
		Dir: true, Prm: true,
		Func:        link.FuncUnconfirmedUserData,
		Source:      1,
		Destination: 1024,
		Len:         6,
		Payload:     []byte{0xC3},
	}, nil)
	p.TransportSegment(&transport.Segment{Fir: true, Fin: true, Seq: 3, Payload: []byte{0xC0}})
	p.TransportPayload([]byte{0xC0, 0x01})
	p.AppError(app.ErrObjUnknown)
	p.AppReject()

	out := buf.String()

	for _, want := range []string{
		"L> 1 -> 1024 UNCONFIRMED_USER_DATA len=6",
		"T> seq=3 len=1 FIR|FIN",
		"T= reassembled 2 bytes",
		"A! application error: OBJ_UNKNOWN",
		"A! application fragment rejected",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color codes written to a non-terminal:\n%s", out)
	}
}

func TestPrinterFragmentLine(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf)

	frag, err := app.ParseMessage([]byte{0xC2, 0x01, 0x3C, 0x02, 0x06})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	p.AppFragment(frag, []byte{1, 2, 3})

	out := buf.String()
	for _, want := range []string{"A> [2] READ", "(fir)", "(fin)", "g60v2", "(3 raw bytes)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("fragment line missing %q:\n%s", want, out)
		}
	}
}

func TestPrinterQuiet(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf)
	p.Quiet = true

	p.LinkFrame(&link.Frame{Prm: true, Func: link.FuncUnconfirmedUserData}, nil)
	p.TransportSegment(&transport.Segment{})
	p.TransportPayload(nil)

	if buf.Len() != 0 {
		t.Fatalf("quiet mode wrote: %s", buf.String())
	}
}
