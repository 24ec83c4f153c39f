package grid

import (
	"encoding/binary"
	"math"
)

// byteOrder selects how multi-byte values in a grid shift file are decoded.
// NTv2 files are written in either byte order; the orientation is global to
// the file and detected once from the overview header.
type byteOrder int

const (
	bigEndian byteOrder = iota
	littleEndian
)

func (o byteOrder) String() string {
	if o == bigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// decodeInt32 reads a signed 32-bit integer from the first four bytes of a
// value field. Integer records pad the remaining four bytes with zeros.
func decodeInt32(b []byte, order byteOrder) int32 {
	if order == bigEndian {
		return int32(binary.BigEndian.Uint32(b[:4]))
	}
	return int32(binary.LittleEndian.Uint32(b[:4]))
}

// decodeFloat32 reads an IEEE-754 single from the first four bytes of b.
func decodeFloat32(b []byte, order byteOrder) float32 {
	if order == bigEndian {
		return math.Float32frombits(binary.BigEndian.Uint32(b[:4]))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:4]))
}

// decodeFloat64 reads an IEEE-754 double from an 8-byte value field.
//
// The field is two 4-byte words: big-endian files store the high word first,
// little-endian files the low word first. The words are recombined as
// (high<<32)|low before reinterpretation; this is the NTv2 convention, not a
// byte swap of the whole field.
func decodeFloat64(b []byte, order byteOrder) float64 {
	var high, low uint64
	if order == bigEndian {
		high = uint64(binary.BigEndian.Uint32(b[0:4]))
		low = uint64(binary.BigEndian.Uint32(b[4:8]))
	} else {
		low = uint64(binary.LittleEndian.Uint32(b[0:4]))
		high = uint64(binary.LittleEndian.Uint32(b[4:8]))
	}
	return math.Float64frombits(high<<32 | low)
}

// detectByteOrder infers the file's byte order from the NUM_OREC value field,
// which always holds the overview record count (11). Exactly one orientation
// must decode to 11; otherwise the stream is not a grid shift file.
func detectByteOrder(b []byte) (byteOrder, error) {
	be := decodeInt32(b, bigEndian)
	if be == overviewRecordCount {
		return bigEndian, nil
	}
	le := decodeInt32(b, littleEndian)
	if le == overviewRecordCount {
		return littleEndian, nil
	}
	return 0, &ErrEndianness{BigValue: be, LittleValue: le}
}
