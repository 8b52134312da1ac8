// Package forge generates valid DNP3 poll traffic as raw wire bytes, for
// demos and for exercising the dissector against a known-good stream.
package forge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"

	"github.com/nblair2/go-dnp3/dnp3"
)

const (
	masterAddress     uint16 = 1
	outstationAddress uint16 = 1024
)

var (
	// ReadClass0 object header - 3 bytes, no data.
	ReadClass0 = []byte{0x3C, 0x01, 0x06}

	// ReadClass1 object header - 3 bytes, no data.
	ReadClass1 = []byte{0x3C, 0x02, 0x06}

	// ReadClass2 object header - 3 bytes, no data.
	ReadClass2 = []byte{0x3C, 0x03, 0x06}

	// ReadClass3 object header - 3 bytes, no data.
	ReadClass3 = []byte{0x3C, 0x04, 0x06}

	// G30V4Q0 object header G30, V4, QF 0 - Analog Input 16 bit without flag.
	G30V4Q0 = []byte{
		0x1E, // Group 30
		0x04, // Variation 4
		0x00, // Qualifier 0: packed without prefix, 1-octet start and stop
		// Start Index
		// Stop Index
		// n * 2 bytes of data
	}
)

// analog point size for G30V4Q0
const pointSize = 2

func newFrame(request bool, src, dst uint16) dnp3.Frame {
	frame := dnp3.Frame{
		DataLink: dnp3.DataLink{
			Source:      src,
			Destination: dst,
			Control: dnp3.DataLinkControl{
				Direction:       request,
				Primary:         true,
				FrameCountBit:   false,
				FrameCountValid: false,
				FunctionCode:    dnp3.UnconfirmedUserData,
			},
		},
		Transport: dnp3.Transport{
			Final: true,
			First: true,
			//nolint:gosec // G404: sequence start needs no crypto rand
			Sequence: uint8(rand.Intn(63)),
		},
	}
	if request {
		frame.Application = &dnp3.ApplicationRequest{
			Control: dnp3.ApplicationControl{
				First: true,
				Final: true,
				//nolint:gosec // G404: sequence start needs no crypto rand
				Sequence: uint8(rand.Intn(15)),
			},
			FunctionCode: dnp3.Read,
		}
	} else {
		frame.Application = &dnp3.ApplicationResponse{
			Control: dnp3.ApplicationControl{
				First: true,
				Final: true,
				//nolint:gosec // G404: sequence start needs no crypto rand
				Sequence: uint8(rand.Intn(15)),
			},
			FunctionCode:        dnp3.Response,
			InternalIndications: dnp3.ApplicationInternalIndications{},
		}
	}

	return frame
}

// NewRequestFrame creates a DNP3 read request (master to outstation) frame.
func NewRequestFrame() dnp3.Frame {
	return newFrame(true, masterAddress, outstationAddress)
}

// NewResponseFrame creates a DNP3 response (outstation to master) frame.
func NewResponseFrame() dnp3.Frame {
	return newFrame(false, outstationAddress, masterAddress)
}

func nextSequence(frame *dnp3.Frame) {
	frame.Transport.Sequence = (frame.Transport.Sequence + 1) % 64
	appControl := frame.Application.GetControl()
	appControl.Sequence = (appControl.Sequence + 1) % 16
	frame.Application.SetControl(appControl)
}

// frameBytes assembles object header/data pairs into the frame's
// application layer and serializes the whole frame to wire bytes.
func frameBytes(frame *dnp3.Frame, headerDataPairs ...[]byte) ([]byte, error) {
	nextSequence(frame)

	if len(headerDataPairs)%2 != 0 {
		return nil, errors.New("object slices must be in pairs of header and data")
	}

	var result []byte

	for i := 0; i < len(headerDataPairs); i += 2 {
		header := headerDataPairs[i]
		data := headerDataPairs[i+1]
		result = append(result, header...)

		if len(data) == 0 {
			continue
		}

		if len(data)%pointSize != 0 {
			return nil, fmt.Errorf(
				"data length %d not a multiple of the %d byte point size",
				len(data), pointSize)
		}

		size := len(data) / pointSize
		if size > 256 {
			return nil, fmt.Errorf("%d points exceed a 1-octet range", size)
		}

		start := 0
		end := start + size - 1

		result = append(result, byte(start), byte(end))
		result = append(result, data...)
	}

	appData := dnp3.ApplicationData{}
	if err := appData.FromBytes(result); err != nil {
		return nil, fmt.Errorf("error parsing application data from bytes: %w", err)
	}

	frame.Application.SetData(appData)

	return frame.ToBytes()
}

// PollRound produces one class poll request and its response carrying the
// given analog values, concatenated as they would appear on the wire.
func PollRound(req, resp *dnp3.Frame, values []uint16) ([]byte, error) {
	data := make([]byte, 0, len(values)*pointSize)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint16(data, v)
	}

	wire, err := frameBytes(req,
		ReadClass1, nil, ReadClass2, nil, ReadClass3, nil, ReadClass0, nil)
	if err != nil {
		return nil, fmt.Errorf("error forging request: %w", err)
	}

	respWire, err := frameBytes(resp, G30V4Q0, data)
	if err != nil {
		return nil, fmt.Errorf("error forging response: %w", err)
	}

	return append(wire, respWire...), nil
}

// Stream produces rounds of poll traffic with points analog values each,
// ready to feed a dissector or write to disk.
func Stream(rounds, points int) ([]byte, error) {
	req := NewRequestFrame()
	resp := NewResponseFrame()

	var out []byte

	for range rounds {
		values := make([]uint16, points)
		for i := range values {
			//nolint:gosec // G404: sample data only
			values[i] = uint16(rand.Intn(0x10000))
		}

		round, err := PollRound(&req, &resp, values)
		if err != nil {
			return nil, err
		}

		out = append(out, round...)
	}

	return out, nil
}
