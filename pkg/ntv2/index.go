package ntv2

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// CoverageIndex answers "which subgrids cover this point or region" queries
// over a file's whole forest using an R-tree.
//
// It exists for inspection and coverage diagnostics; the shift operations
// themselves keep the file-ordered scan with a locality cache, whose results
// are defined by the format.
type CoverageIndex struct {
	rtree *rtreego.Rtree
}

// indexedSubGrid wraps a subgrid description for R-tree storage.
type indexedSubGrid struct {
	info  SubGridInfo
	depth int // nesting depth; 0 for roots
	order int // insertion order, for stable sorting
}

// Bounds implements rtreego.Spatial. Coordinates are positive-east degrees
// with the point at the south-west corner, matching Position.
func (s *indexedSubGrid) Bounds() rtreego.Rect {
	minLon := -s.info.MaxLonSeconds / 3600
	maxLon := -s.info.MinLonSeconds / 3600
	minLat := s.info.MinLatSeconds / 3600
	maxLat := s.info.MaxLatSeconds / 3600

	point := rtreego.Point{minLon, minLat}
	lengths := []float64{maxLon - minLon, maxLat - minLat}

	// R-tree rectangles need non-zero extents.
	const epsilon = 1e-9
	for i := range lengths {
		if lengths[i] < epsilon {
			lengths[i] = epsilon
		}
	}

	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// BuildCoverageIndex builds an R-tree over every subgrid in the file.
func (g *GridShiftFile) BuildCoverageIndex() *CoverageIndex {
	rtree := rtreego.NewTree(2, 25, 50)

	order := 0
	var insert func(info SubGridInfo, depth int)
	insert = func(info SubGridInfo, depth int) {
		rtree.Insert(&indexedSubGrid{info: info, depth: depth, order: order})
		order++
		for _, child := range info.Children {
			insert(child, depth+1)
		}
	}
	for _, root := range g.SubGrids() {
		insert(root, 0)
	}

	return &CoverageIndex{rtree: rtree}
}

// GridsAt returns every subgrid whose extent covers the point, finest
// (deepest) first. An empty result means the point is outside the file's
// coverage.
func (ix *CoverageIndex) GridsAt(p Position) []SubGridInfo {
	const epsilon = 1e-9
	point := rtreego.Point{p.Lon, p.Lat}
	rect, _ := rtreego.NewRect(point, []float64{epsilon, epsilon})

	lonWestSeconds := -p.Lon * 3600
	latSeconds := p.Lat * 3600

	var hits []*indexedSubGrid
	for _, spatial := range ix.rtree.SearchIntersect(rect) {
		entry := spatial.(*indexedSubGrid)
		// The R-tree overapproximates: re-check exact inclusive bounds.
		info := entry.info
		if lonWestSeconds >= info.MinLonSeconds && lonWestSeconds <= info.MaxLonSeconds &&
			latSeconds >= info.MinLatSeconds && latSeconds <= info.MaxLatSeconds {
			hits = append(hits, entry)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].depth != hits[j].depth {
			return hits[i].depth > hits[j].depth
		}
		return hits[i].order < hits[j].order
	})

	out := make([]SubGridInfo, len(hits))
	for i, h := range hits {
		out[i] = h.info
	}
	return out
}

// GridsInBounds returns every subgrid whose extent intersects the bounding
// box spanned by min and max, in nesting order (coarse grids first).
func (ix *CoverageIndex) GridsInBounds(min, max Position) []SubGridInfo {
	point := rtreego.Point{min.Lon, min.Lat}
	lengths := []float64{max.Lon - min.Lon, max.Lat - min.Lat}
	const epsilon = 1e-9
	for i := range lengths {
		if lengths[i] < epsilon {
			lengths[i] = epsilon
		}
	}
	rect, _ := rtreego.NewRect(point, lengths)

	var hits []*indexedSubGrid
	for _, spatial := range ix.rtree.SearchIntersect(rect) {
		hits = append(hits, spatial.(*indexedSubGrid))
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].depth != hits[j].depth {
			return hits[i].depth < hits[j].depth
		}
		return hits[i].order < hits[j].order
	})

	out := make([]SubGridInfo, len(hits))
	for i, h := range hits {
		out[i] = h.info
	}
	return out
}
