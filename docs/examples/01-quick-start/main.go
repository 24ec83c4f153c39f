package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

func main() {
	// Load a grid shift file (.gsb or .gsb.gz)
	gsf, err := ntv2.Open("NTv2_0.gsb")
	if err != nil {
		log.Fatal(err)
	}
	defer gsf.Close()

	// Print file info
	fmt.Printf("Datum: %s -> %s\n", gsf.FromEllipsoid(), gsf.ToEllipsoid())
	fmt.Printf("Subgrids: %d\n", gsf.SubGridCount())

	// Shift a point from the source datum to the target datum
	p := ntv2.Position{Lat: 45.5, Lon: -75.25}
	res, ok, err := gsf.Forward(p)
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		log.Fatalf("point %v is outside the file's coverage", p)
	}

	fmt.Printf("Input:  %.8f, %.8f\n", p.Lat, p.Lon)
	fmt.Printf("Output: %.8f, %.8f (subgrid %s)\n",
		res.Shifted.Lat, res.Shifted.Lon, res.SubGridName)
}
