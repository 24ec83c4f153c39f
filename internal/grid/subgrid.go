package grid

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// SubGrid is one rectangular lattice of shift samples at a given resolution,
// optionally nested inside a coarser parent. Coordinates are arc-seconds with
// longitude positive west, so the eastern bound is the minimum longitude.
//
// The lattice is row-major from the south-west corner with longitude varying
// fastest, as laid out in the file.
type SubGrid struct {
	name       string
	parentName string
	created    string
	updated    string

	minLat, maxLat float64
	minLon, maxLon float64
	latInterval    float64
	lonInterval    float64

	nodeCount   int
	rowCount    int
	columnCount int

	latShift    []float32
	lonShift    []float32
	latAccuracy []float32
	lonAccuracy []float32

	children []*SubGrid

	// Lazy-load state. src stays nil for eagerly loaded grids.
	order        byteOrder
	loadAccuracy bool
	src          io.ReaderAt
	nodeOffset   int64
}

// Name returns the subgrid name (SUB_NAME).
func (sg *SubGrid) Name() string { return sg.name }

// ParentName returns the parent subgrid name, or "NONE" for a root grid.
func (sg *SubGrid) ParentName() string { return sg.parentName }

// Created returns the CREATED header stamp.
func (sg *SubGrid) Created() string { return sg.created }

// Updated returns the UPDATED header stamp.
func (sg *SubGrid) Updated() string { return sg.updated }

// MinLatSeconds returns the southern bound in arc-seconds.
func (sg *SubGrid) MinLatSeconds() float64 { return sg.minLat }

// MaxLatSeconds returns the northern bound in arc-seconds.
func (sg *SubGrid) MaxLatSeconds() float64 { return sg.maxLat }

// MinLonSeconds returns the eastern bound in positive-west arc-seconds.
func (sg *SubGrid) MinLonSeconds() float64 { return sg.minLon }

// MaxLonSeconds returns the western bound in positive-west arc-seconds.
func (sg *SubGrid) MaxLonSeconds() float64 { return sg.maxLon }

// LatIntervalSeconds returns the latitude grid spacing in arc-seconds.
func (sg *SubGrid) LatIntervalSeconds() float64 { return sg.latInterval }

// LonIntervalSeconds returns the longitude grid spacing in arc-seconds.
func (sg *SubGrid) LonIntervalSeconds() float64 { return sg.lonInterval }

// NodeCount returns the number of lattice nodes (GS_COUNT).
func (sg *SubGrid) NodeCount() int { return sg.nodeCount }

// RowCount returns the number of latitude rows in the lattice.
func (sg *SubGrid) RowCount() int { return sg.rowCount }

// ColumnCount returns the number of longitude columns in the lattice.
func (sg *SubGrid) ColumnCount() int { return sg.columnCount }

// Children returns the finer subgrids nested inside this one, in file order.
func (sg *SubGrid) Children() []*SubGrid { return sg.children }

// NodesLoaded reports whether the node lattice is materialized in memory.
// Always true for eager loads; flips on first access in lazy mode.
func (sg *SubGrid) NodesLoaded() bool { return sg.latShift != nil }

// readSubGridHeader consumes and decodes one 11-record subgrid header.
func readSubGridHeader(r io.Reader, order byteOrder, loadAccuracy bool) (*SubGrid, error) {
	buf := make([]byte, subGridHeaderRecordCount*recordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read subgrid header: %w", err)
	}
	return parseSubGridHeader(buf, order, loadAccuracy)
}

// parseSubGridHeader decodes the 11 subgrid header records, in file order:
// SUB_NAME, PARENT, CREATED, UPDATED, S_LAT, N_LAT, E_LONG, W_LONG,
// LAT_INC, LONG_INC, GS_COUNT.
func parseSubGridHeader(buf []byte, order byteOrder, loadAccuracy bool) (*SubGrid, error) {
	value := func(i int) []byte {
		return buf[i*recordSize+tagSize : (i+1)*recordSize]
	}

	sg := &SubGrid{
		name:         trimField(value(0)),
		parentName:   trimField(value(1)),
		created:      trimField(value(2)),
		updated:      trimField(value(3)),
		minLat:       decodeFloat64(value(4), order),
		maxLat:       decodeFloat64(value(5), order),
		minLon:       decodeFloat64(value(6), order),
		maxLon:       decodeFloat64(value(7), order),
		latInterval:  decodeFloat64(value(8), order),
		lonInterval:  decodeFloat64(value(9), order),
		nodeCount:    int(decodeInt32(value(10), order)),
		order:        order,
		loadAccuracy: loadAccuracy,
	}

	if sg.name == "" {
		return nil, &ErrBadHeader{Field: "SUB_NAME", Reason: "empty subgrid name"}
	}
	if strings.EqualFold(sg.parentName, sg.name) {
		return nil, &ErrBadHeader{Field: "PARENT", Reason: fmt.Sprintf("subgrid %q is its own parent", sg.name)}
	}
	if sg.latInterval <= 0 || sg.lonInterval <= 0 {
		return nil, &ErrBadHeader{Field: "LAT_INC", Reason: fmt.Sprintf("subgrid %q has non-positive grid interval", sg.name)}
	}
	if sg.maxLat <= sg.minLat || sg.maxLon <= sg.minLon {
		return nil, &ErrBadHeader{Field: "S_LAT", Reason: fmt.Sprintf("subgrid %q has inverted or empty extent", sg.name)}
	}

	sg.rowCount = int(math.Round((sg.maxLat-sg.minLat)/sg.latInterval)) + 1
	sg.columnCount = int(math.Round((sg.maxLon-sg.minLon)/sg.lonInterval)) + 1
	if sg.rowCount < 2 || sg.columnCount < 2 {
		return nil, &ErrBadHeader{Field: "GS_COUNT", Reason: fmt.Sprintf("subgrid %q has fewer than 2 rows or columns", sg.name)}
	}
	if sg.rowCount*sg.columnCount != sg.nodeCount {
		return nil, &ErrBadHeader{
			Field: "GS_COUNT",
			Reason: fmt.Sprintf("subgrid %q declares %d nodes, extent implies %d×%d=%d",
				sg.name, sg.nodeCount, sg.rowCount, sg.columnCount, sg.rowCount*sg.columnCount),
		}
	}

	return sg, nil
}

// readNodes consumes the node records from r and materializes the lattice.
// Used by the eager loading path.
func (sg *SubGrid) readNodes(r io.Reader) error {
	buf := make([]byte, sg.nodeCount*nodeRecordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read subgrid %q nodes: %w", sg.name, err)
	}
	sg.decodeNodes(buf)
	return nil
}

// ensureNodes materializes the lattice on first access in lazy mode. A failed
// read leaves the subgrid untouched, so a later retry or another grid's cache
// is not corrupted.
func (sg *SubGrid) ensureNodes() error {
	if sg.latShift != nil {
		return nil
	}
	if sg.src == nil {
		return ErrNotLoaded
	}
	buf := make([]byte, sg.nodeCount*nodeRecordSize)
	if _, err := sg.src.ReadAt(buf, sg.nodeOffset); err != nil {
		return fmt.Errorf("read subgrid %q nodes at offset %d: %w", sg.name, sg.nodeOffset, err)
	}
	sg.decodeNodes(buf)
	return nil
}

// decodeNodes unpacks the 16-byte node records: latitude shift, longitude
// shift, latitude accuracy, longitude accuracy, each a 4-byte float. The
// accuracy planes are skipped unless accuracy loading was requested.
func (sg *SubGrid) decodeNodes(buf []byte) {
	latShift := make([]float32, sg.nodeCount)
	lonShift := make([]float32, sg.nodeCount)
	var latAccuracy, lonAccuracy []float32
	if sg.loadAccuracy {
		latAccuracy = make([]float32, sg.nodeCount)
		lonAccuracy = make([]float32, sg.nodeCount)
	}

	for i := 0; i < sg.nodeCount; i++ {
		rec := buf[i*nodeRecordSize : (i+1)*nodeRecordSize]
		latShift[i] = decodeFloat32(rec[0:4], sg.order)
		lonShift[i] = decodeFloat32(rec[4:8], sg.order)
		if sg.loadAccuracy {
			latAccuracy[i] = decodeFloat32(rec[8:12], sg.order)
			lonAccuracy[i] = decodeFloat32(rec[12:16], sg.order)
		}
	}

	sg.latShift = latShift
	sg.lonShift = lonShift
	sg.latAccuracy = latAccuracy
	sg.lonAccuracy = lonAccuracy
}

// covers reports whether the point lies within the subgrid's extent. Bounds
// are inclusive on all four edges so adjacent tiles leave no gaps.
func (sg *SubGrid) covers(lonSeconds, latSeconds float64) bool {
	return lonSeconds >= sg.minLon && lonSeconds <= sg.maxLon &&
		latSeconds >= sg.minLat && latSeconds <= sg.maxLat
}

// resolve returns the finest subgrid containing the point, searching children
// before reporting itself, or nil when the point is outside the extent.
func (sg *SubGrid) resolve(lonSeconds, latSeconds float64) *SubGrid {
	if !sg.covers(lonSeconds, latSeconds) {
		return nil
	}
	for _, child := range sg.children {
		if finer := child.resolve(lonSeconds, latSeconds); finer != nil {
			return finer
		}
	}
	return sg
}

// interpolate computes the bilinear shift at the point carried by s and
// writes the results into s. The caller guarantees the point is covered.
func (sg *SubGrid) interpolate(s *Shift) error {
	if err := sg.ensureNodes(); err != nil {
		return err
	}

	lonIndex := int((s.lonSeconds - sg.minLon) / sg.lonInterval)
	latIndex := int((s.latSeconds - sg.minLat) / sg.latInterval)
	// A point on the maximum edge interpolates within the last cell, where
	// the fractional offset reaches exactly 1.
	if lonIndex > sg.columnCount-2 {
		lonIndex = sg.columnCount - 2
	}
	if latIndex > sg.rowCount-2 {
		latIndex = sg.rowCount - 2
	}

	x := (s.lonSeconds - (sg.minLon + float64(lonIndex)*sg.lonInterval)) / sg.lonInterval
	y := (s.latSeconds - (sg.minLat + float64(latIndex)*sg.latInterval)) / sg.latInterval

	// The four cell corners: a south-east, b south-west, c north-east,
	// d north-west (longitude grows westward).
	a := latIndex*sg.columnCount + lonIndex
	b := a + 1
	c := a + sg.columnCount
	d := c + 1

	s.latShiftSeconds = bilinear(sg.latShift[a], sg.latShift[b], sg.latShift[c], sg.latShift[d], x, y)
	s.lonShiftSeconds = bilinear(sg.lonShift[a], sg.lonShift[b], sg.lonShift[c], sg.lonShift[d], x, y)

	if sg.latAccuracy != nil {
		s.latAccuracyOK = true
		s.latAccuracySeconds = bilinear(sg.latAccuracy[a], sg.latAccuracy[b], sg.latAccuracy[c], sg.latAccuracy[d], x, y)
	} else {
		s.latAccuracyOK = false
		s.latAccuracySeconds = 0
	}
	if sg.lonAccuracy != nil {
		s.lonAccuracyOK = true
		s.lonAccuracySeconds = bilinear(sg.lonAccuracy[a], sg.lonAccuracy[b], sg.lonAccuracy[c], sg.lonAccuracy[d], x, y)
	} else {
		s.lonAccuracyOK = false
		s.lonAccuracySeconds = 0
	}

	return nil
}

// bilinear blends the four corner nodes of a cell at fractional offsets
// x, y in [0,1].
func bilinear(a, b, c, d float32, x, y float64) float64 {
	fa, fb, fc, fd := float64(a), float64(b), float64(c), float64(d)
	return fa + (fb-fa)*x + (fc-fa)*y + (fa+fd-fb-fc)*x*y
}
