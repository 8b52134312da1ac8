package app

import "encoding/binary"

// Object prefix codes (qualifier bits 4-6).
const (
	PrefixNone   uint8 = 0
	PrefixIndex1 uint8 = 1
	PrefixIndex2 uint8 = 2
	PrefixIndex4 uint8 = 3
	PrefixSize1  uint8 = 4
	PrefixSize2  uint8 = 5
	PrefixSize4  uint8 = 6
)

// Range specifier codes (qualifier bits 0-3).
const (
	RangeStartStop1 uint8 = 0x00
	RangeStartStop2 uint8 = 0x01
	RangeStartStop4 uint8 = 0x02
	RangeAddr1      uint8 = 0x03
	RangeAddr2      uint8 = 0x04
	RangeAddr4      uint8 = 0x05
	RangeNone       uint8 = 0x06
	RangeCount1     uint8 = 0x07
	RangeCount2     uint8 = 0x08
	RangeCount4     uint8 = 0x09
	RangeFreeFormat uint8 = 0x0B
)

// ObjectHeader is one decoded object header with its raw object data, if
// the message carries any.
type ObjectHeader struct {
	Group     uint8
	Variation uint8
	Qualifier uint8 // raw qualifier octet
	Prefix    uint8
	RangeSpec uint8
	Start     uint32 // start/stop range or absolute address
	Stop      uint32
	Count     int
	Data      []byte // raw object data including per-object prefixes
}

// objSize gives the per-point data size in bytes for the groups the walker
// understands. Packed single-bit groups are handled separately.
var objSize = map[[2]uint8]int{
	{1, 2}:  1, // binary input with flags
	{2, 1}:  1, // binary input event
	{2, 2}:  7, // binary input event with time
	{2, 3}:  3, // binary input event with relative time
	{10, 2}: 1, // binary output status
	{12, 1}: 11, // control relay output block
	{20, 1}: 5, // counter 32 bit with flag
	{20, 2}: 3, // counter 16 bit with flag
	{20, 5}: 4, // counter 32 bit
	{20, 6}: 2, // counter 16 bit
	{30, 1}: 5, // analog input 32 bit with flag
	{30, 2}: 3, // analog input 16 bit with flag
	{30, 3}: 4, // analog input 32 bit
	{30, 4}: 2, // analog input 16 bit
	{30, 5}: 5, // analog input float with flag
	{30, 6}: 9, // analog input double with flag
	{32, 1}: 5, // analog input event
	{32, 2}: 3,
	{32, 7}: 9,
	{32, 8}: 11,
	{40, 1}: 5, // analog output status
	{40, 2}: 3,
	{41, 1}: 5, // analog output block 32 bit
	{41, 2}: 3, // analog output block 16 bit
	{41, 3}: 5, // analog output block float
	{41, 4}: 9, // analog output block double
	{50, 1}: 6, // time and date
	{50, 3}: 6,
	{51, 1}: 6, // CTO
	{51, 2}: 6,
	{52, 1}: 2, // time delay
	{52, 2}: 2,
	{60, 1}: 0, // class 0 poll
	{60, 2}: 0, // class 1 poll
	{60, 3}: 0, // class 2 poll
	{60, 4}: 0, // class 3 poll
}

// packedBits marks groups whose points are single bits packed eight to a
// byte when sent without a prefix.
var packedBits = map[[2]uint8]bool{
	{1, 1}:  true, // binary input
	{10, 1}: true, // binary output
	{80, 1}: true, // internal indications
}

func prefixSize(prefix uint8) (int, bool) {
	switch prefix {
	case PrefixNone:
		return 0, true
	case PrefixIndex1, PrefixSize1:
		return 1, true
	case PrefixIndex2, PrefixSize2:
		return 2, true
	case PrefixIndex4, PrefixSize4:
		return 4, true
	}

	return 0, false
}

// walkObjects decodes consecutive object headers from b. dataBearing
// selects whether point data follows each header, which depends on the
// message's function code. The error is always a *TokenError; truncation
// and malformed qualifiers surface as diagnostic tokens because the header
// itself already parsed.
func walkObjects(b []byte, dataBearing bool) ([]ObjectHeader, error) {
	var headers []ObjectHeader

	for len(b) > 0 {
		if len(b) < 3 {
			return headers, &TokenError{Kind: ErrParamError}
		}

		h := ObjectHeader{
			Group:     b[0],
			Variation: b[1],
			Qualifier: b[2],
			Prefix:    (b[2] >> 4) & 0x07,
			RangeSpec: b[2] & 0x0F,
		}
		b = b[3:]

		psize, ok := prefixSize(h.Prefix)
		if !ok {
			return headers, &TokenError{Kind: ErrParamError}
		}

		var n int
		switch h.RangeSpec {
		case RangeStartStop1, RangeAddr1:
			n = 2 * 1
		case RangeStartStop2, RangeAddr2:
			n = 2 * 2
		case RangeStartStop4, RangeAddr4:
			n = 2 * 4
		case RangeNone:
			n = 0
		case RangeCount1, RangeFreeFormat:
			n = 1
		case RangeCount2:
			n = 2
		case RangeCount4:
			n = 4
		default:
			return headers, &TokenError{Kind: ErrParamError}
		}

		if len(b) < n {
			return headers, &TokenError{Kind: ErrParamError}
		}

		switch h.RangeSpec {
		case RangeStartStop1:
			h.Start, h.Stop = uint32(b[0]), uint32(b[1])
			h.Count = int(h.Stop) - int(h.Start) + 1
		case RangeStartStop2:
			h.Start = uint32(binary.LittleEndian.Uint16(b[0:2]))
			h.Stop = uint32(binary.LittleEndian.Uint16(b[2:4]))
			h.Count = int(h.Stop) - int(h.Start) + 1
		case RangeStartStop4:
			h.Start = binary.LittleEndian.Uint32(b[0:4])
			h.Stop = binary.LittleEndian.Uint32(b[4:8])
			h.Count = int(h.Stop) - int(h.Start) + 1
		case RangeAddr1:
			h.Start, h.Stop = uint32(b[0]), uint32(b[1])
			h.Count = 1
		case RangeAddr2:
			h.Start = uint32(binary.LittleEndian.Uint16(b[0:2]))
			h.Stop = uint32(binary.LittleEndian.Uint16(b[2:4]))
			h.Count = 1
		case RangeAddr4:
			h.Start = binary.LittleEndian.Uint32(b[0:4])
			h.Stop = binary.LittleEndian.Uint32(b[4:8])
			h.Count = 1
		case RangeNone:
			h.Count = 0
		case RangeCount1, RangeFreeFormat:
			h.Count = int(b[0])
		case RangeCount2:
			h.Count = int(binary.LittleEndian.Uint16(b[0:2]))
		case RangeCount4:
			h.Count = int(binary.LittleEndian.Uint32(b[0:4]))
		}
		b = b[n:]

		if h.Count < 0 {
			return headers, &TokenError{Kind: ErrParamError}
		}

		if dataBearing && h.Count > 0 {
			size, err := objectDataSize(h, psize)
			if err != nil {
				return headers, err
			}

			if len(b) < size {
				return headers, &TokenError{Kind: ErrParamError}
			}

			h.Data = b[:size]
			b = b[size:]
		}

		headers = append(headers, h)
	}

	return headers, nil
}

// objectDataSize computes the total object data length following a header.
func objectDataSize(h ObjectHeader, psize int) (int, error) {
	gv := [2]uint8{h.Group, h.Variation}

	if packedBits[gv] {
		if h.Prefix != PrefixNone {
			return 0, &TokenError{Kind: ErrParamError}
		}

		return (h.Count + 7) / 8, nil
	}

	size, ok := objSize[gv]
	if !ok {
		// octet strings encode their length as the variation
		if h.Group == 110 || h.Group == 111 {
			size = int(h.Variation)
		} else {
			return 0, &TokenError{Kind: ErrObjUnknown}
		}
	}

	return h.Count * (psize + size), nil
}
