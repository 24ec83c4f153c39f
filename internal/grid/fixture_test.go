package grid

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Test fixtures: a minimal NTv2 encoder. Production code never writes grid
// files, so the encoder lives with the tests.

type fixtureGrid struct {
	name   string
	parent string

	minLat, maxLat float64
	minLon, maxLon float64
	latInc, lonInc float64

	// node produces (latShift, lonShift, latAccuracy, lonAccuracy) for the
	// lattice node at the given row and column. Row 0 is the southern edge,
	// column 0 the eastern (minimum positive-west longitude) edge.
	node func(row, col int) [4]float32
}

// uniformNode returns a node function yielding the same values everywhere.
func uniformNode(latShift, lonShift, latAcc, lonAcc float32) func(int, int) [4]float32 {
	return func(int, int) [4]float32 {
		return [4]float32{latShift, lonShift, latAcc, lonAcc}
	}
}

func (g fixtureGrid) rows() int {
	return int(math.Round((g.maxLat-g.minLat)/g.latInc)) + 1
}

func (g fixtureGrid) cols() int {
	return int(math.Round((g.maxLon-g.minLon)/g.lonInc)) + 1
}

// encodeFixture renders a complete grid shift file in the given byte order.
func encodeFixture(order byteOrder, grids ...fixtureGrid) []byte {
	var engine binary.ByteOrder = binary.BigEndian
	if order == littleEndian {
		engine = binary.LittleEndian
	}

	var buf bytes.Buffer

	tag := func(s string) {
		b := make([]byte, tagSize)
		copy(b, s)
		for i := len(s); i < tagSize; i++ {
			b[i] = ' '
		}
		buf.Write(b)
	}
	intRec := func(name string, v int32) {
		tag(name)
		b := make([]byte, 8)
		engine.PutUint32(b[:4], uint32(v))
		buf.Write(b)
	}
	textRec := func(name, v string) {
		tag(name)
		tag(v)
	}
	doubleRec := func(name string, v float64) {
		tag(name)
		bits := math.Float64bits(v)
		b := make([]byte, 8)
		// High word first for big-endian files, low word first for
		// little-endian; words recombine as (high<<32)|low.
		if order == bigEndian {
			engine.PutUint32(b[:4], uint32(bits>>32))
			engine.PutUint32(b[4:], uint32(bits))
		} else {
			engine.PutUint32(b[:4], uint32(bits))
			engine.PutUint32(b[4:], uint32(bits>>32))
		}
		buf.Write(b)
	}
	float := func(v float32) {
		b := make([]byte, 4)
		engine.PutUint32(b, math.Float32bits(v))
		buf.Write(b)
	}

	intRec("NUM_OREC", overviewRecordCount)
	intRec("NUM_SREC", subGridHeaderRecordCount)
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
		node := g.node
		if node == nil {
			node = uniformNode(0, 0, 0, 0)
		}
		rows, cols := g.rows(), g.cols()

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

		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				n := node(row, col)
				float(n[0])
				float(n[1])
				float(n[2])
				float(n[3])
			}
		}
	}

	tag("END")
	buf.Write(make([]byte, 8))

	return buf.Bytes()
}

// scenarioFixture is the parent/child pair used across the file tests: a
// coarse root with a finer grid nested in its interior.
func scenarioFixture(order byteOrder) []byte {
	return encodeFixture(order,
		fixtureGrid{
			name: "COARSE", parent: "NONE",
			minLat: 0, maxLat: 10, minLon: 0, maxLon: 10,
			latInc: 5, lonInc: 5,
			node: uniformNode(1.0, 2.0, 0.5, 0.6),
		},
		fixtureGrid{
			name: "FINE", parent: "COARSE",
			minLat: 2, maxLat: 4, minLon: 2, maxLon: 4,
			latInc: 1, lonInc: 1,
			node: uniformNode(5.0, 6.0, 0.1, 0.2),
		},
	)
}
