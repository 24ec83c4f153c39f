// Package grid implements the NTv2 grid shift core: binary record decoding
// with endian auto-detection, subgrid forest construction, bilinear
// interpolation over regular node lattices, and the forward and iterative
// reverse datum shift operations.
package grid

import (
	"fmt"
	"io"
)

// LoadOptions configures grid shift file loading.
type LoadOptions struct {
	// LoadAccuracy controls whether the accuracy planes of each node record
	// are materialized alongside the shift planes. Skipping them halves the
	// lattice memory; shifts then report accuracy as unavailable.
	// Default: true.
	LoadAccuracy bool
}

// DefaultLoadOptions returns load options with defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{LoadAccuracy: true}
}

// File is a loaded NTv2 grid shift file: a forest of subgrid trees plus the
// forward and reverse shift operations over them.
//
// A File is not safe for concurrent use. The locality cache and, in lazy
// mode, the read handle are unsynchronized mutable state; callers needing
// concurrency must serialize access externally.
type File struct {
	header   *overviewHeader
	topLevel []*SubGrid
	loaded   bool

	// last is the subgrid that produced the most recent successful shift.
	// Successive points tend to be spatially close, so it is probed before
	// the root list. It is a hint, never an owner.
	last *SubGrid

	// src is the lazy read handle, closed on Unload. Nil for eager loads.
	src io.Closer

	// Operation counters, observable by tests.
	rootScans    int
	forwardCalls int
}

// New returns an empty, unloaded File.
func New() *File {
	return &File{}
}

// Load reads an entire grid shift file from r, materializing every subgrid's
// node lattice in memory. The stream is consumed exactly once; closing it
// afterwards is the caller's responsibility.
//
// Loading into an already-loaded File discards the previous forest first.
func (f *File) Load(r io.Reader, opts LoadOptions) error {
	if err := f.reset(); err != nil {
		return err
	}

	h, err := readOverviewHeader(r)
	if err != nil {
		return err
	}

	grids := make([]*SubGrid, h.subGridCount)
	for i := range grids {
		sg, err := readSubGridHeader(r, h.order, opts.LoadAccuracy)
		if err != nil {
			return err
		}
		if err := sg.readNodes(r); err != nil {
			return err
		}
		grids[i] = sg
	}

	roots, err := buildForest(grids)
	if err != nil {
		return err
	}

	f.header = h
	f.topLevel = roots
	f.last = roots[0]
	f.loaded = true

	return nil
}

// LoadAt reads only the headers from r, deferring each subgrid's node
// lattice to a positioned read on first access. If r is an io.Closer, the
// File takes ownership of it and closes it on Unload.
func (f *File) LoadAt(r io.ReaderAt, opts LoadOptions) error {
	if err := f.reset(); err != nil {
		return err
	}

	buf := make([]byte, overviewRecordCount*recordSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("read overview header: %w", err)
	}
	h, err := parseOverviewHeader(buf)
	if err != nil {
		return err
	}

	// Each subgrid's node records start right after its header; the next
	// header starts after the node records.
	offset := int64(overviewRecordCount * recordSize)
	headerBuf := make([]byte, subGridHeaderRecordCount*recordSize)
	grids := make([]*SubGrid, h.subGridCount)
	for i := range grids {
		if _, err := r.ReadAt(headerBuf, offset); err != nil {
			return fmt.Errorf("read subgrid header at offset %d: %w", offset, err)
		}
		sg, err := parseSubGridHeader(headerBuf, h.order, opts.LoadAccuracy)
		if err != nil {
			return err
		}
		sg.src = r
		sg.nodeOffset = offset + int64(subGridHeaderRecordCount*recordSize)
		offset = sg.nodeOffset + int64(sg.nodeCount*nodeRecordSize)
		grids[i] = sg
	}

	roots, err := buildForest(grids)
	if err != nil {
		return err
	}

	f.header = h
	f.topLevel = roots
	f.last = roots[0]
	f.loaded = true
	if c, ok := r.(io.Closer); ok {
		f.src = c
	}

	return nil
}

// IsLoaded reports whether the File holds a usable subgrid forest.
func (f *File) IsLoaded() bool { return f.loaded }

// Unload discards the subgrid forest and releases the lazy read handle, if
// any. Unloading an unloaded File is a no-op. Subgrid references obtained
// before Unload must not be used afterwards.
func (f *File) Unload() error {
	f.loaded = false
	f.header = nil
	f.topLevel = nil
	f.last = nil
	if f.src != nil {
		src := f.src
		f.src = nil
		return src.Close()
	}
	return nil
}

// reset is Unload plus counter reset, run before any load attempt.
func (f *File) reset() error {
	f.rootScans = 0
	f.forwardCalls = 0
	return f.Unload()
}

// ShiftForward computes the datum shift at the point carried by s, writing
// the shift, accuracy, and producing subgrid name back into s.
//
// The boolean result is false when the point lies outside every subgrid's
// extent. That is a normal outcome, not an error; the error is non-nil only
// for unloaded use or a failed lazy read.
func (f *File) ShiftForward(s *Shift) (bool, error) {
	if !f.loaded {
		return false, ErrNotLoaded
	}
	f.forwardCalls++

	sub := f.last.resolve(s.lonSeconds, s.latSeconds)
	if sub == nil {
		sub = f.scanRoots(s.lonSeconds, s.latSeconds)
	}
	if sub == nil {
		return false, nil
	}

	if err := sub.interpolate(s); err != nil {
		return false, err
	}
	s.subGridName = sub.name
	f.last = sub

	return true, nil
}

// ShiftReverse inverts the forward shift at the point carried by s. No
// closed-form inverse exists since the forward shift is itself an
// interpolated, grid-dependent function, so the inverse is approximated by
// fixed-point iteration on the forward shift.
func (f *File) ShiftReverse(s *Shift) (bool, error) {
	if !f.loaded {
		return false, ErrNotLoaded
	}

	var probe Shift
	probe.lonSeconds = s.lonSeconds
	probe.latSeconds = s.latSeconds

	// Exactly four iterations, matching the reference implementation node
	// for node; a tolerance-based stop would change results.
	for i := 0; i < 4; i++ {
		ok, err := f.ShiftForward(&probe)
		if err != nil || !ok {
			return false, err
		}
		probe.lonSeconds = s.lonSeconds - probe.lonShiftSeconds
		probe.latSeconds = s.latSeconds - probe.latShiftSeconds
	}

	s.lonShiftSeconds = -probe.lonShiftSeconds
	s.latShiftSeconds = -probe.latShiftSeconds
	s.lonAccuracyOK = probe.lonAccuracyOK
	s.latAccuracyOK = probe.latAccuracyOK
	s.lonAccuracySeconds = probe.lonAccuracySeconds
	s.latAccuracySeconds = probe.latAccuracySeconds
	s.subGridName = probe.subGridName

	return true, nil
}

// scanRoots walks the root list in file order and returns the finest
// subgrid covering the point, or nil.
func (f *File) scanRoots(lonSeconds, latSeconds float64) *SubGrid {
	f.rootScans++
	for _, root := range f.topLevel {
		if sub := root.resolve(lonSeconds, latSeconds); sub != nil {
			return sub
		}
	}
	return nil
}

// TopLevelSubGrids returns the root subgrids in file order. The returned
// slice is a copy; the forest itself is immutable after loading.
func (f *File) TopLevelSubGrids() []*SubGrid {
	out := make([]*SubGrid, len(f.topLevel))
	copy(out, f.topLevel)
	return out
}

// SubGridCount returns the total number of subgrids in the forest.
func (f *File) SubGridCount() int {
	if f.header == nil {
		return 0
	}
	return f.header.subGridCount
}

// ShiftType returns the GS_TYPE field, normally "SECONDS".
func (f *File) ShiftType() string {
	if f.header == nil {
		return ""
	}
	return f.header.shiftType
}

// Version returns the VERSION field.
func (f *File) Version() string {
	if f.header == nil {
		return ""
	}
	return f.header.version
}

// FromEllipsoid returns the source ellipsoid name (SYSTEM_F).
func (f *File) FromEllipsoid() string {
	if f.header == nil {
		return ""
	}
	return f.header.fromEllipsoid
}

// ToEllipsoid returns the target ellipsoid name (SYSTEM_T).
func (f *File) ToEllipsoid() string {
	if f.header == nil {
		return ""
	}
	return f.header.toEllipsoid
}

// FromSemiMajorAxis returns the source ellipsoid semi-major axis in metres.
func (f *File) FromSemiMajorAxis() float64 {
	if f.header == nil {
		return 0
	}
	return f.header.fromSemiMajorAxis
}

// FromSemiMinorAxis returns the source ellipsoid semi-minor axis in metres.
func (f *File) FromSemiMinorAxis() float64 {
	if f.header == nil {
		return 0
	}
	return f.header.fromSemiMinorAxis
}

// ToSemiMajorAxis returns the target ellipsoid semi-major axis in metres.
func (f *File) ToSemiMajorAxis() float64 {
	if f.header == nil {
		return 0
	}
	return f.header.toSemiMajorAxis
}

// ToSemiMinorAxis returns the target ellipsoid semi-minor axis in metres.
func (f *File) ToSemiMinorAxis() float64 {
	if f.header == nil {
		return 0
	}
	return f.header.toSemiMinorAxis
}

// BigEndian reports whether the file was encoded big-endian.
func (f *File) BigEndian() bool {
	return f.header != nil && f.header.order == bigEndian
}
