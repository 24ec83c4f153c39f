package grid

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// TestBilinear checks the four-corner blend against hand-computed values.
func TestBilinear(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d float32
		x, y       float64
		want       float64
	}{
		{"corner a", 1, 2, 3, 4, 0, 0, 1},
		{"corner b", 1, 2, 3, 4, 1, 0, 2},
		{"corner c", 1, 2, 3, 4, 0, 1, 3},
		{"corner d", 1, 2, 3, 4, 1, 1, 4},
		{"cell center", 1, 2, 3, 4, 0.5, 0.5, 2.5},
		{"edge midpoint", 0, 10, 0, 10, 0.5, 0, 5},
		{"quarter point", 0, 4, 8, 12, 0.25, 0.25, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bilinear(tt.a, tt.b, tt.c, tt.d, tt.x, tt.y); got != tt.want {
				t.Errorf("bilinear() = %g, want %g", got, tt.want)
			}
		})
	}
}

// TestInterpolatePlanarField: bilinear interpolation reproduces a linear
// ramp exactly at any point, not just at the nodes.
func TestInterpolatePlanarField(t *testing.T) {
	data := encodeFixture(bigEndian, fixtureGrid{
		name: "RAMP", parent: "NONE",
		minLat: 0, maxLat: 20, minLon: 0, maxLon: 20,
		latInc: 5, lonInc: 5,
		node: func(row, col int) [4]float32 {
			// latShift grows northward, lonShift westward.
			return [4]float32{float32(row), float32(2 * col), 0, 0}
		},
	})
	f := loadFixture(t, data, DefaultLoadOptions())

	tests := []struct {
		lon, lat     float64
		wantLatShift float64
		wantLonShift float64
	}{
		{0, 0, 0, 0},
		{20, 20, 4, 8},
		{10, 5, 1, 4},
		{7.5, 12.5, 2.5, 3},
		{3.125, 18.75, 3.75, 1.25},
	}

	for _, tt := range tests {
		s := forwardAt(t, f, tt.lon, tt.lat)
		if math.Abs(s.LatShiftSeconds()-tt.wantLatShift) > 1e-12 {
			t.Errorf("(%g,%g) lat shift = %g, want %g", tt.lon, tt.lat, s.LatShiftSeconds(), tt.wantLatShift)
		}
		if math.Abs(s.LonShiftPositiveWestSeconds()-tt.wantLonShift) > 1e-12 {
			t.Errorf("(%g,%g) lon shift = %g, want %g", tt.lon, tt.lat, s.LonShiftPositiveWestSeconds(), tt.wantLonShift)
		}
	}
}

// TestRoundTrip: shifting forward and re-subtracting the shift lands within
// interpolation error of the start for points away from child grids.
func TestRoundTrip(t *testing.T) {
	data := encodeFixture(bigEndian, fixtureGrid{
		name: "SMOOTH", parent: "NONE",
		minLat: 0, maxLat: 100, minLon: 0, maxLon: 100,
		latInc: 10, lonInc: 10,
		node: func(row, col int) [4]float32 {
			return [4]float32{float32(0.1 * float64(row)), float32(0.05 * float64(col)), 0, 0}
		},
	})
	f := loadFixture(t, data, DefaultLoadOptions())

	var s Shift
	s.SetLonPositiveWestSeconds(42.5)
	s.SetLatSeconds(57.5)
	if ok, err := f.ShiftForward(&s); err != nil || !ok {
		t.Fatalf("ShiftForward() = (%v, %v)", ok, err)
	}

	var back Shift
	back.SetLonPositiveWestSeconds(s.ShiftedLonPositiveWestSeconds())
	back.SetLatSeconds(s.ShiftedLatSeconds())
	if ok, err := f.ShiftReverse(&back); err != nil || !ok {
		t.Fatalf("ShiftReverse() = (%v, %v)", ok, err)
	}

	// The shift field varies by at most 0.1"/node, so four fixed-point
	// iterations land well within a millisecond of arc.
	if math.Abs(back.ShiftedLatSeconds()-57.5) > 1e-3 {
		t.Errorf("round-trip lat = %g, want 57.5", back.ShiftedLatSeconds())
	}
	if math.Abs(back.ShiftedLonPositiveWestSeconds()-42.5) > 1e-3 {
		t.Errorf("round-trip lon = %g, want 42.5", back.ShiftedLonPositiveWestSeconds())
	}
}

func TestResolvePrecedence(t *testing.T) {
	data := encodeFixture(bigEndian,
		fixtureGrid{
			name: "TOP", parent: "NONE",
			minLat: 0, maxLat: 40, minLon: 0, maxLon: 40,
			latInc: 10, lonInc: 10,
			node: uniformNode(1, 1, 0, 0),
		},
		fixtureGrid{
			name: "MID", parent: "TOP",
			minLat: 10, maxLat: 30, minLon: 10, maxLon: 30,
			latInc: 5, lonInc: 5,
			node: uniformNode(2, 2, 0, 0),
		},
		fixtureGrid{
			name: "LEAF", parent: "MID",
			minLat: 15, maxLat: 20, minLon: 15, maxLon: 20,
			latInc: 1, lonInc: 1,
			node: uniformNode(3, 3, 0, 0),
		},
	)
	f := loadFixture(t, data, DefaultLoadOptions())

	tests := []struct {
		lon, lat float64
		want     string
	}{
		{5, 5, "TOP"},
		{12, 12, "MID"},
		{17, 17, "LEAF"},
		{20, 20, "LEAF"}, // leaf max edge still wins over its ancestors
		{35, 35, "TOP"},
	}

	for _, tt := range tests {
		s := forwardAt(t, f, tt.lon, tt.lat)
		if s.SubGridName() != tt.want {
			t.Errorf("(%g,%g) resolved to %q, want %q", tt.lon, tt.lat, s.SubGridName(), tt.want)
		}
	}
}

func TestParseSubGridHeaderRejects(t *testing.T) {
	base := fixtureGrid{
		name: "GRID", parent: "NONE",
		minLat: 0, maxLat: 10, minLon: 0, maxLon: 10,
		latInc: 5, lonInc: 5,
	}

	tests := []struct {
		name   string
		mutate func(*fixtureGrid)
	}{
		{"own parent", func(g *fixtureGrid) { g.parent = "GRID" }},
		{"own parent case-insensitive", func(g *fixtureGrid) { g.parent = "grid" }},
		{"inverted extent", func(g *fixtureGrid) { g.minLat, g.maxLat = g.maxLat, g.minLat }},
		{"single row", func(g *fixtureGrid) { g.latInc = 30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := base
			tt.mutate(&g)
			err := New().Load(bytes.NewReader(encodeFixture(bigEndian, g)), DefaultLoadOptions())
			var badHeader *ErrBadHeader
			if !errors.As(err, &badHeader) {
				t.Fatalf("Load() error = %v, want *ErrBadHeader", err)
			}
		})
	}
}
