package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

func main() {
	gsf, err := ntv2.Open("NTv2_0.gsb")
	if err != nil {
		log.Fatal(err)
	}
	defer gsf.Close()

	// Build an R-tree over every subgrid for coverage queries.
	index := gsf.BuildCoverageIndex()

	// Which subgrids cover this point? Finest first.
	p := ntv2.Position{Lat: 45.5, Lon: -75.25}
	grids := index.GridsAt(p)
	if len(grids) == 0 {
		log.Fatalf("no coverage at %v", p)
	}
	fmt.Printf("Subgrids covering (%.4f, %.4f):\n", p.Lat, p.Lon)
	for _, g := range grids {
		fmt.Printf("  %-16s %d x %d nodes, %.1f\" spacing\n",
			g.Name, g.RowCount, g.ColCount, g.LatIntervalSeconds)
	}

	// Which subgrids intersect a bounding box? Coarse first.
	hits := index.GridsInBounds(
		ntv2.Position{Lat: 44, Lon: -77},
		ntv2.Position{Lat: 46, Lon: -74},
	)
	fmt.Printf("Subgrids intersecting the box: %d\n", len(hits))
	for _, g := range hits {
		fmt.Printf("  %s\n", g.Name)
	}
}
