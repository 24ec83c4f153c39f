package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

type shiftOutput struct {
	Input    ntv2.Position `json:"input"`
	Output   ntv2.Position `json:"output"`
	SubGrid  string        `json:"subGrid"`
	Reverse  bool          `json:"reverse"`
	Covered  bool          `json:"covered"`
	LatShift float64       `json:"latShiftSeconds"`
	LonShift float64       `json:"lonShiftPositiveWestSeconds"`

	LatAccuracy *float64 `json:"latAccuracySeconds,omitempty"`
	LonAccuracy *float64 `json:"lonAccuracySeconds,omitempty"`
}

func shiftCmd() *cli.Command {
	var (
		gridPath string
		lat      float64
		lon      float64
		reverse  bool
		asJSON   bool
	)

	return &cli.Command{
		Name:  "shift",
		Usage: "Shift a coordinate through a grid shift file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "grid",
				Aliases:     []string{"g"},
				Usage:       "path to .gsb or .gsb.gz file",
				Destination: &gridPath,
				Required:    true,
			},
			&cli.FloatFlag{
				Name:        "lat",
				Usage:       "latitude in decimal degrees",
				Destination: &lat,
				Required:    true,
			},
			&cli.FloatFlag{
				Name:        "lon",
				Usage:       "longitude in decimal degrees, positive east",
				Destination: &lon,
				Required:    true,
			},
			&cli.BoolFlag{Name: "reverse", Aliases: []string{"r"}, Usage: "apply the reverse transformation", Destination: &reverse},
			&cli.BoolFlag{Name: "json", Usage: "emit machine-readable JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			gsf, err := ntv2.Open(gridPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open grid file: %v", err), 1)
			}
			defer func() { _ = gsf.Close() }()

			p := ntv2.Position{Lat: lat, Lon: lon}
			var (
				res ntv2.ShiftResult
				ok  bool
			)
			if reverse {
				res, ok, err = gsf.Reverse(p)
			} else {
				res, ok, err = gsf.Forward(p)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: shift: %v", err), 1)
			}

			out := shiftOutput{
				Input:   p,
				Reverse: reverse,
				Covered: ok,
			}
			if ok {
				out.Output = res.Shifted
				out.SubGrid = res.SubGridName
				out.LatShift = res.LatShiftSeconds
				out.LonShift = res.LonShiftPositiveWestSeconds
				if res.LatAccuracyAvailable {
					out.LatAccuracy = &res.LatAccuracySeconds
				}
				if res.LonAccuracyAvailable {
					out.LonAccuracy = &res.LonAccuracySeconds
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			if !ok {
				fmt.Printf("(%.8f, %.8f) is outside the file's coverage\n", lat, lon)
				return nil
			}

			fmt.Printf("Input:   %.8f, %.8f\n", out.Input.Lat, out.Input.Lon)
			fmt.Printf("Output:  %.8f, %.8f\n", out.Output.Lat, out.Output.Lon)
			fmt.Printf("Shift:   %.6f\" lat, %.6f\" lon (positive west)\n", out.LatShift, out.LonShift)
			fmt.Printf("Subgrid: %s\n", out.SubGrid)
			if out.LatAccuracy != nil && out.LonAccuracy != nil {
				fmt.Printf("Accuracy: %.6f\" lat, %.6f\" lon\n", *out.LatAccuracy, *out.LonAccuracy)
			}
			return nil
		},
	}
}
