package grid

import (
	"fmt"
	"io"
	"strings"
)

// NTv2 files are sequences of fixed 16-byte records: an 8-byte ASCII tag
// followed by an 8-byte value. The overview header is always 11 records and
// each subgrid header is always 11 records; node records are 16 bytes of
// four packed floats with no tag.
const (
	recordSize = 16
	tagSize    = 8

	overviewRecordCount      = 11
	subGridHeaderRecordCount = 11
	nodeRecordSize           = 16

	magicTag = "NUM_OREC"
)

// overviewHeader holds the decoded 11-record file header.
type overviewHeader struct {
	order byteOrder

	subGridHeaderCount int
	subGridCount       int
	shiftType          string
	version            string
	fromEllipsoid      string
	toEllipsoid        string
	fromSemiMajorAxis  float64
	fromSemiMinorAxis  float64
	toSemiMajorAxis    float64
	toSemiMinorAxis    float64
}

// readOverviewHeader consumes and decodes the overview header from r.
func readOverviewHeader(r io.Reader) (*overviewHeader, error) {
	buf := make([]byte, overviewRecordCount*recordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read overview header: %w", err)
	}
	return parseOverviewHeader(buf)
}

// parseOverviewHeader decodes the 11 overview records. The NUM_OREC sentinel
// is checked before anything else; the byte order is detected from its value.
func parseOverviewHeader(buf []byte) (*overviewHeader, error) {
	if tag := string(buf[:tagSize]); tag != magicTag {
		return nil, &ErrBadMagic{Got: trimField(buf[:tagSize])}
	}

	order, err := detectByteOrder(buf[tagSize:recordSize])
	if err != nil {
		return nil, err
	}

	// value returns the 8-byte value field of record i.
	value := func(i int) []byte {
		return buf[i*recordSize+tagSize : (i+1)*recordSize]
	}

	h := &overviewHeader{
		order:              order,
		subGridHeaderCount: int(decodeInt32(value(1), order)),
		subGridCount:       int(decodeInt32(value(2), order)),
		shiftType:          trimField(value(3)),
		version:            trimField(value(4)),
		fromEllipsoid:      trimField(value(5)),
		toEllipsoid:        trimField(value(6)),
		fromSemiMajorAxis:  decodeFloat64(value(7), order),
		fromSemiMinorAxis:  decodeFloat64(value(8), order),
		toSemiMajorAxis:    decodeFloat64(value(9), order),
		toSemiMinorAxis:    decodeFloat64(value(10), order),
	}

	if h.subGridHeaderCount != subGridHeaderRecordCount {
		return nil, &ErrBadHeader{
			Field:  "NUM_SREC",
			Reason: fmt.Sprintf("subgrid header record count is %d, want %d", h.subGridHeaderCount, subGridHeaderRecordCount),
		}
	}
	if h.subGridCount < 1 {
		return nil, &ErrBadHeader{
			Field:  "NUM_FILE",
			Reason: fmt.Sprintf("subgrid count is %d, want at least 1", h.subGridCount),
		}
	}

	return h, nil
}

// trimField strips the space and NUL padding NTv2 uses in text value fields.
func trimField(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
