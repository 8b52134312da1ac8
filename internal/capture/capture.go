// Package capture feeds stored packet captures into dissector instances,
// one per directed TCP flow.
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/nblair2/dnp3snoop/internal"
	"github.com/nblair2/dnp3snoop/internal/dissect"
)

// Flows demultiplexes packets into per-flow dissectors. Each direction of
// each TCP connection gets its own instance, so segment reassembly state
// never mixes across flows. Hook events from all flows go to the same
// receiver in packet order.
type Flows struct {
	port  int
	cfg   dissect.Config
	hooks dissect.Hooks

	byKey map[string]*dissect.Dissector
}

// NewFlows creates a demultiplexer for traffic on the given TCP port.
func NewFlows(port int, cfg dissect.Config, hooks dissect.Hooks) *Flows {
	return &Flows{
		port:  port,
		cfg:   cfg,
		hooks: hooks,
		byKey: make(map[string]*dissect.Dissector),
	}
}

// HandlePacket extracts the TCP payload of one packet and feeds it to the
// flow's dissector. Packets for other ports are ignored.
func (f *Flows) HandlePacket(pkt gopacket.Packet) error {
	tcpLayer := pkt.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return nil
	}

	//nolint:errcheck // layer type checked above
	tcp := tcpLayer.(*layers.TCP)
	if int(tcp.SrcPort) != f.port && int(tcp.DstPort) != f.port {
		return nil
	}

	if len(tcp.Payload) == 0 {
		return nil
	}

	net := pkt.NetworkLayer()
	if net == nil {
		return nil
	}

	key := fmt.Sprintf("%s:%s", net.NetworkFlow(), tcp.TransportFlow())

	d, ok := f.byKey[key]
	if !ok {
		d = dissect.New(f.hooks, f.cfg)
		f.byKey[key] = d
	}

	if _, err := d.Write(tcp.Payload); err != nil {
		return fmt.Errorf("error feeding flow %s: %w", key, err)
	}

	return nil
}

// Finish tears down every flow's dissector.
func (f *Flows) Finish() {
	for _, d := range f.byKey {
		d.Finish()
	}
}

// ReadFile dissects every DNP3 flow in a pcap file. With progress set, a
// byte progress bar is drawn while reading.
func ReadFile(path string, flows *Flows, progress bool) error {
	//nolint:gosec // G304 opening file provided by user
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening capture: %w", err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("error reading pcap header: %w", err)
	}

	var bar interface{ Add(int) error }

	if progress {
		info, err := f.Stat()
		if err == nil {
			bar = internal.NewProgressBar(int(info.Size()), "dissecting")
		}
	}

	for {
		data, ci, err := r.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return fmt.Errorf("error reading packet: %w", err)
		}

		pkt := gopacket.NewPacket(data, r.LinkType(), gopacket.Default)
		if err := flows.HandlePacket(pkt); err != nil {
			return err
		}

		if bar != nil {
			// per-packet record header is 16 bytes on disk
			//nolint:errcheck // progress display only
			bar.Add(ci.CaptureLength + 16)
		}
	}

	flows.Finish()

	return nil
}
