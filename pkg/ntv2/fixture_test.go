package ntv2

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Minimal big-endian NTv2 encoder for tests. The coarse root spans
// [0,10] arc-seconds on both axes with a uniform (1,2) shift; the fine
// child spans [2,4] with a uniform (5,6) shift.

type fixtureGrid struct {
	name   string
	parent string

	minLat, maxLat float64
	minLon, maxLon float64
	latInc, lonInc float64

	latShift, lonShift float32
	latAcc, lonAcc     float32
}

func encodeFixture(grids ...fixtureGrid) []byte {
	var buf bytes.Buffer

	tag := func(s string) {
		b := make([]byte, 8)
		copy(b, s)
		for i := len(s); i < 8; i++ {
			b[i] = ' '
		}
		buf.Write(b)
	}
	intRec := func(name string, v int32) {
		tag(name)
		b := make([]byte, 8)
		binary.BigEndian.PutUint32(b[:4], uint32(v))
		buf.Write(b)
	}
	textRec := func(name, v string) {
		tag(name)
		tag(v)
	}
	doubleRec := func(name string, v float64) {
		tag(name)
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(v))
		buf.Write(b)
	}
	float := func(v float32) {
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, math.Float32bits(v))
		buf.Write(b)
	}

	intRec("NUM_OREC", 11)
	intRec("NUM_SREC", 11)
	intRec("NUM_FILE", int32(len(grids)))
	textRec("GS_TYPE", "SECONDS")
	textRec("VERSION", "NTv2.0")
	textRec("SYSTEM_F", "NAD27")
	textRec("SYSTEM_T", "NAD83")
	doubleRec("MAJOR_F", 6378206.4)
	doubleRec("MINOR_F", 6356583.8)
	doubleRec("MAJOR_T", 6378137.0)
	doubleRec("MINOR_T", 6356752.314)

	for _, g := range grids {
		rows := int(math.Round((g.maxLat-g.minLat)/g.latInc)) + 1
		cols := int(math.Round((g.maxLon-g.minLon)/g.lonInc)) + 1

		textRec("SUB_NAME", g.name)
		textRec("PARENT", g.parent)
		textRec("CREATED", "20020101")
		textRec("UPDATED", "20020101")
		doubleRec("S_LAT", g.minLat)
		doubleRec("N_LAT", g.maxLat)
		doubleRec("E_LONG", g.minLon)
		doubleRec("W_LONG", g.maxLon)
		doubleRec("LAT_INC", g.latInc)
		doubleRec("LONG_INC", g.lonInc)
		intRec("GS_COUNT", int32(rows*cols))

		for i := 0; i < rows*cols; i++ {
			float(g.latShift)
			float(g.lonShift)
			float(g.latAcc)
			float(g.lonAcc)
		}
	}

	tag("END")
	buf.Write(make([]byte, 8))

	return buf.Bytes()
}

func nestedFixture() []byte {
	return encodeFixture(
		fixtureGrid{
			name: "COARSE", parent: "NONE",
			minLat: 0, maxLat: 10, minLon: 0, maxLon: 10,
			latInc: 5, lonInc: 5,
			latShift: 1.0, lonShift: 2.0, latAcc: 0.5, lonAcc: 0.6,
		},
		fixtureGrid{
			name: "FINE", parent: "COARSE",
			minLat: 2, maxLat: 4, minLon: 2, maxLon: 4,
			latInc: 1, lonInc: 1,
			latShift: 5.0, lonShift: 6.0, latAcc: 0.1, lonAcc: 0.2,
		},
	)
}
