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

	// A point already in the target datum
	p := ntv2.Position{Lat: 45.50001234, Lon: -75.24998765}

	// Recover its source-datum position. The reverse transformation is
	// iterative; outside coverage it reports ok=false like Forward.
	rev, ok, err := gsf.Reverse(p)
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		log.Fatalf("point %v is outside the file's coverage", p)
	}
	fmt.Printf("Target datum: %.8f, %.8f\n", p.Lat, p.Lon)
	fmt.Printf("Source datum: %.8f, %.8f\n", rev.Shifted.Lat, rev.Shifted.Lon)

	// Round-trip check: forward shifting the recovered point should land
	// back on the input to within the iteration tolerance.
	fwd, ok, err := gsf.Forward(rev.Shifted)
	if err != nil || !ok {
		log.Fatal("round trip left coverage")
	}
	fmt.Printf("Round trip:   %.8f, %.8f\n", fwd.Shifted.Lat, fwd.Shifted.Lon)
}
