// Package ntv2 provides a clean public API for reading NTv2 grid shift files
// and applying the horizontal datum transformation they encode.
//
// An NTv2 file stores shift samples on a hierarchy of nested rectangular
// grids of increasing resolution. Shifting a point selects the finest grid
// covering it and bilinearly interpolates the stored samples; the reverse
// transformation is recovered by fixed-point iteration since no closed form
// exists.
package ntv2

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/beetlebugorg/ntv2/internal/grid"
)

// ErrNotLoaded is returned by shift operations invoked after Close.
var ErrNotLoaded = grid.ErrNotLoaded

// gzipMagic is the two-byte header of a gzip stream. Grid files are commonly
// distributed as .gsb.gz.
var gzipMagic = []byte{0x1f, 0x8b}

// GridShiftFile is a loaded NTv2 file.
//
// A GridShiftFile is not safe for concurrent use: the locality cache and, in
// lazy mode, the underlying file handle are unsynchronized. Callers needing
// concurrency must serialize access or load one instance per goroutine.
type GridShiftFile struct {
	inner *grid.File
	path  string
}

// Open reads the grid shift file at path into memory with default options.
//
// Example:
//
//	gsf, err := ntv2.Open("NTv2_0.gsb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, ok, err := gsf.Forward(ntv2.Position{Lat: 45.5, Lon: -75.25})
func Open(path string) (*GridShiftFile, error) {
	return OpenWithOptions(path, DefaultOpenOptions())
}

// OpenWithOptions reads the grid shift file at path with custom options.
//
// Gzip-compressed files are decompressed transparently for eager loads.
// Lazy loading performs positioned reads and therefore requires an
// uncompressed file; combining Lazy with gzip input is an error.
func OpenWithOptions(path string, opts OpenOptions) (*GridShiftFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid shift file: %w", err)
	}

	gzipped, err := isGzip(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("probe grid shift file: %w", err)
	}

	if opts.Lazy {
		if gzipped {
			f.Close()
			return nil, fmt.Errorf("lazy loading requires an uncompressed grid file: %s", path)
		}
		inner := grid.New()
		if err := inner.LoadAt(f, opts.gridOptions()); err != nil {
			f.Close()
			return nil, err
		}
		// The inner file owns f now and closes it on unload.
		return &GridShiftFile{inner: inner, path: path}, nil
	}

	defer f.Close()
	var r io.Reader = f
	if gzipped {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	inner := grid.New()
	if err := inner.Load(r, opts.gridOptions()); err != nil {
		return nil, err
	}
	return &GridShiftFile{inner: inner, path: path}, nil
}

// Parse reads a grid shift file from an in-memory byte slice, decompressing
// gzip input transparently.
func Parse(data []byte) (*GridShiftFile, error) {
	return ParseWithOptions(data, DefaultOpenOptions())
}

// ParseWithOptions reads a grid shift file from memory with custom options.
// The Lazy option is honored by serving positioned reads from the slice.
func ParseWithOptions(data []byte, opts OpenOptions) (*GridShiftFile, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		inner := grid.New()
		if err := inner.Load(zr, opts.gridOptions()); err != nil {
			return nil, err
		}
		return &GridShiftFile{inner: inner}, nil
	}

	inner := grid.New()
	if opts.Lazy {
		if err := inner.LoadAt(bytes.NewReader(data), opts.gridOptions()); err != nil {
			return nil, err
		}
	} else {
		if err := inner.Load(bytes.NewReader(data), opts.gridOptions()); err != nil {
			return nil, err
		}
	}
	return &GridShiftFile{inner: inner}, nil
}

// isGzip peeks at the first two bytes of f and rewinds.
func isGzip(f *os.File) (bool, error) {
	var magic [2]byte
	n, err := f.ReadAt(magic[:], 0)
	if err != nil && err != io.EOF {
		return false, err
	}
	return n == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1], nil
}

// Position is a geographic point in conventional positive-east decimal
// degrees.
type Position struct {
	Lat float64
	Lon float64
}

// ShiftResult reports the outcome of a forward or reverse shift.
type ShiftResult struct {
	// Shifted is the displaced point in positive-east decimal degrees.
	Shifted Position

	// Raw shift components in arc-seconds. Longitude keeps the NTv2
	// positive-west orientation.
	LatShiftSeconds             float64
	LonShiftPositiveWestSeconds float64

	// Interpolated accuracy estimates, valid only when the corresponding
	// availability flag is set.
	LatAccuracySeconds   float64
	LonAccuracySeconds   float64
	LatAccuracyAvailable bool
	LonAccuracyAvailable bool

	// SubGridName identifies the subgrid that produced the shift.
	SubGridName string
}

// Forward applies the datum shift to a point in the source datum.
//
// The boolean result is false when the point lies outside every subgrid's
// extent; that is the expected outcome for points beyond the file's
// coverage, not an error.
func (g *GridShiftFile) Forward(p Position) (ShiftResult, bool, error) {
	return g.shift(p, (*grid.File).ShiftForward)
}

// Reverse recovers the source-datum position of a point already in the
// target datum, via fixed-point iteration on the forward shift.
func (g *GridShiftFile) Reverse(p Position) (ShiftResult, bool, error) {
	return g.shift(p, (*grid.File).ShiftReverse)
}

func (g *GridShiftFile) shift(p Position, op func(*grid.File, *grid.Shift) (bool, error)) (ShiftResult, bool, error) {
	var s grid.Shift
	s.SetLatDegrees(p.Lat)
	s.SetLonPositiveEastDegrees(p.Lon)

	ok, err := op(g.inner, &s)
	if err != nil || !ok {
		return ShiftResult{}, false, err
	}

	return ShiftResult{
		Shifted: Position{
			Lat: s.ShiftedLatDegrees(),
			Lon: s.ShiftedLonPositiveEastDegrees(),
		},
		LatShiftSeconds:             s.LatShiftSeconds(),
		LonShiftPositiveWestSeconds: s.LonShiftPositiveWestSeconds(),
		LatAccuracySeconds:          s.LatAccuracySeconds(),
		LonAccuracySeconds:          s.LonAccuracySeconds(),
		LatAccuracyAvailable:        s.LatAccuracyAvailable(),
		LonAccuracyAvailable:        s.LonAccuracyAvailable(),
		SubGridName:                 s.SubGridName(),
	}, true, nil
}

// IsLoaded reports whether the file is usable for shift operations.
func (g *GridShiftFile) IsLoaded() bool { return g.inner.IsLoaded() }

// Close releases the subgrid forest and, in lazy mode, the open file handle.
// Closing twice is a no-op.
func (g *GridShiftFile) Close() error { return g.inner.Unload() }

// Path returns the path the file was opened from, or "" when parsed from
// memory.
func (g *GridShiftFile) Path() string { return g.path }

// FromEllipsoid returns the source ellipsoid name (SYSTEM_F).
func (g *GridShiftFile) FromEllipsoid() string { return g.inner.FromEllipsoid() }

// ToEllipsoid returns the target ellipsoid name (SYSTEM_T).
func (g *GridShiftFile) ToEllipsoid() string { return g.inner.ToEllipsoid() }

// ShiftType returns the GS_TYPE field, normally "SECONDS".
func (g *GridShiftFile) ShiftType() string { return g.inner.ShiftType() }

// Version returns the VERSION header field.
func (g *GridShiftFile) Version() string { return g.inner.Version() }

// FromSemiMajorAxis returns the source ellipsoid semi-major axis in metres.
func (g *GridShiftFile) FromSemiMajorAxis() float64 { return g.inner.FromSemiMajorAxis() }

// FromSemiMinorAxis returns the source ellipsoid semi-minor axis in metres.
func (g *GridShiftFile) FromSemiMinorAxis() float64 { return g.inner.FromSemiMinorAxis() }

// ToSemiMajorAxis returns the target ellipsoid semi-major axis in metres.
func (g *GridShiftFile) ToSemiMajorAxis() float64 { return g.inner.ToSemiMajorAxis() }

// ToSemiMinorAxis returns the target ellipsoid semi-minor axis in metres.
func (g *GridShiftFile) ToSemiMinorAxis() float64 { return g.inner.ToSemiMinorAxis() }

// BigEndian reports whether the file was encoded big-endian.
func (g *GridShiftFile) BigEndian() bool { return g.inner.BigEndian() }

// SubGridCount returns the total number of subgrids in the file.
func (g *GridShiftFile) SubGridCount() int { return g.inner.SubGridCount() }

// SubGridInfo is a read-only description of one subgrid for inspection and
// diagnostics. Bounds are arc-seconds with longitude positive west.
type SubGridInfo struct {
	Name    string `json:"name"`
	Parent  string `json:"parent"`
	Created string `json:"created,omitempty"`
	Updated string `json:"updated,omitempty"`

	MinLatSeconds float64 `json:"minLatSeconds"`
	MaxLatSeconds float64 `json:"maxLatSeconds"`
	MinLonSeconds float64 `json:"minLonSeconds"`
	MaxLonSeconds float64 `json:"maxLonSeconds"`

	LatIntervalSeconds float64 `json:"latIntervalSeconds"`
	LonIntervalSeconds float64 `json:"lonIntervalSeconds"`

	NodeCount int `json:"nodeCount"`
	RowCount  int `json:"rowCount"`
	ColCount  int `json:"colCount"`

	Children []SubGridInfo `json:"children,omitempty"`
}

// SubGrids returns a snapshot of the subgrid forest, roots in file order.
func (g *GridShiftFile) SubGrids() []SubGridInfo {
	roots := g.inner.TopLevelSubGrids()
	out := make([]SubGridInfo, len(roots))
	for i, sg := range roots {
		out[i] = convertSubGrid(sg)
	}
	return out
}

func convertSubGrid(sg *grid.SubGrid) SubGridInfo {
	info := SubGridInfo{
		Name:               sg.Name(),
		Parent:             sg.ParentName(),
		Created:            sg.Created(),
		Updated:            sg.Updated(),
		MinLatSeconds:      sg.MinLatSeconds(),
		MaxLatSeconds:      sg.MaxLatSeconds(),
		MinLonSeconds:      sg.MinLonSeconds(),
		MaxLonSeconds:      sg.MaxLonSeconds(),
		LatIntervalSeconds: sg.LatIntervalSeconds(),
		LonIntervalSeconds: sg.LonIntervalSeconds(),
		NodeCount:          sg.NodeCount(),
		RowCount:           sg.RowCount(),
		ColCount:           sg.ColumnCount(),
	}
	children := sg.Children()
	if len(children) > 0 {
		info.Children = make([]SubGridInfo, len(children))
		for i, child := range children {
			info.Children[i] = convertSubGrid(child)
		}
	}
	return info
}
