package grid

import (
	"bytes"
	"errors"
	"testing"
)

// closerReaderAt wraps bytes.Reader to track Close calls, standing in for an
// *os.File in lazy-mode tests.
type closerReaderAt struct {
	*bytes.Reader
	closed int
}

func (c *closerReaderAt) Close() error {
	c.closed++
	return nil
}

func TestLoadAtDefersNodes(t *testing.T) {
	data := scenarioFixture(bigEndian)
	f := New()
	if err := f.LoadAt(bytes.NewReader(data), DefaultLoadOptions()); err != nil {
		t.Fatalf("LoadAt() error = %v", err)
	}

	roots := f.TopLevelSubGrids()
	if len(roots) != 1 {
		t.Fatalf("root count = %d, want 1", len(roots))
	}
	parent := roots[0]
	if len(parent.Children()) != 1 {
		t.Fatalf("child count = %d, want 1", len(parent.Children()))
	}
	child := parent.Children()[0]

	if parent.NodesLoaded() || child.NodesLoaded() {
		t.Fatal("lattices materialized before first access")
	}

	// A query inside the child populates only the child's lattice.
	s := forwardAt(t, f, 3, 3)
	if s.LatShiftSeconds() != 5.0 || s.SubGridName() != "FINE" {
		t.Errorf("lazy child shift = %g via %q, want 5 via FINE", s.LatShiftSeconds(), s.SubGridName())
	}
	if !child.NodesLoaded() {
		t.Error("child lattice not materialized after query")
	}
	if parent.NodesLoaded() {
		t.Error("parent lattice materialized without being queried")
	}

	s = forwardAt(t, f, 8, 8)
	if s.LatShiftSeconds() != 1.0 {
		t.Errorf("lazy parent shift = %g, want 1", s.LatShiftSeconds())
	}
	if !parent.NodesLoaded() {
		t.Error("parent lattice not materialized after query")
	}
}

// TestLazyMatchesEager: both loading modes must produce identical results.
func TestLazyMatchesEager(t *testing.T) {
	data := scenarioFixture(littleEndian)

	eager := loadFixture(t, data, DefaultLoadOptions())
	lazy := New()
	if err := lazy.LoadAt(bytes.NewReader(data), DefaultLoadOptions()); err != nil {
		t.Fatalf("LoadAt() error = %v", err)
	}

	for _, pt := range [][2]float64{{3, 3}, {8, 8}, {2.5, 2.5}, {4, 4}} {
		e := forwardAt(t, eager, pt[0], pt[1])
		l := forwardAt(t, lazy, pt[0], pt[1])
		if *e != *l {
			t.Errorf("point %v: lazy %+v differs from eager %+v", pt, l, e)
		}
	}
}

// TestLazyReadFailure: a truncated backing file surfaces an I/O error on
// first access and leaves the subgrid unpopulated, so other grids' cached
// lattices are unaffected.
func TestLazyReadFailure(t *testing.T) {
	data := scenarioFixture(bigEndian)

	// Keep every header but cut into the second subgrid's node records.
	cut := len(data) - 100
	f := New()
	if err := f.LoadAt(bytes.NewReader(data[:cut]), DefaultLoadOptions()); err != nil {
		t.Fatalf("LoadAt() error = %v", err)
	}

	// The parent's nodes are intact and cacheable.
	forwardAt(t, f, 8, 8)

	// The child's nodes are truncated.
	var s Shift
	s.SetLonPositiveWestSeconds(3)
	s.SetLatSeconds(3)
	ok, err := f.ShiftForward(&s)
	if err == nil {
		t.Fatal("ShiftForward into truncated subgrid succeeded, want I/O error")
	}
	if ok {
		t.Error("ShiftForward reported success alongside an error")
	}
	if errors.Is(err, ErrNotLoaded) {
		t.Error("I/O failure misreported as unloaded use")
	}

	// The failed fetch corrupted nothing: the parent still answers.
	child := f.TopLevelSubGrids()[0].Children()[0]
	if child.NodesLoaded() {
		t.Error("failed fetch left a partially populated lattice")
	}
	forwardAt(t, f, 8, 8)
}

func TestUnloadClosesHandle(t *testing.T) {
	src := &closerReaderAt{Reader: bytes.NewReader(scenarioFixture(bigEndian))}
	f := New()
	if err := f.LoadAt(src, DefaultLoadOptions()); err != nil {
		t.Fatalf("LoadAt() error = %v", err)
	}

	if err := f.Unload(); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	if src.closed != 1 {
		t.Errorf("handle closed %d times, want 1", src.closed)
	}

	// Releasing twice must not double-close.
	if err := f.Unload(); err != nil {
		t.Fatalf("second Unload() error = %v", err)
	}
	if src.closed != 1 {
		t.Errorf("handle closed %d times after double unload, want 1", src.closed)
	}
}
