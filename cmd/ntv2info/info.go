package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

type fileInfo struct {
	Path          string             `json:"path"`
	Version       string             `json:"version"`
	ShiftType     string             `json:"shiftType"`
	FromEllipsoid string             `json:"fromEllipsoid"`
	ToEllipsoid   string             `json:"toEllipsoid"`
	FromSemiMajor float64            `json:"fromSemiMajor"`
	FromSemiMinor float64            `json:"fromSemiMinor"`
	ToSemiMajor   float64            `json:"toSemiMajor"`
	ToSemiMinor   float64            `json:"toSemiMinor"`
	BigEndian     bool               `json:"bigEndian"`
	SubGridCount  int                `json:"subGridCount"`
	SubGrids      []ntv2.SubGridInfo `json:"subGrids"`
}

func infoCmd() *cli.Command {
	var (
		gridPath string
		asJSON   bool
	)

	return &cli.Command{
		Name:  "info",
		Usage: "Print header and subgrid structure of a grid shift file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "grid",
				Aliases:     []string{"g"},
				Usage:       "path to .gsb or .gsb.gz file",
				Destination: &gridPath,
				Required:    true,
			},
			&cli.BoolFlag{Name: "json", Usage: "emit machine-readable JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			gsf, err := ntv2.Open(gridPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open grid file: %v", err), 1)
			}
			defer func() { _ = gsf.Close() }()

			info := fileInfo{
				Path:          gridPath,
				Version:       gsf.Version(),
				ShiftType:     gsf.ShiftType(),
				FromEllipsoid: gsf.FromEllipsoid(),
				ToEllipsoid:   gsf.ToEllipsoid(),
				FromSemiMajor: gsf.FromSemiMajorAxis(),
				FromSemiMinor: gsf.FromSemiMinorAxis(),
				ToSemiMajor:   gsf.ToSemiMajorAxis(),
				ToSemiMinor:   gsf.ToSemiMinorAxis(),
				BigEndian:     gsf.BigEndian(),
				SubGridCount:  gsf.SubGridCount(),
				SubGrids:      gsf.SubGrids(),
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			printInfo(info)
			return nil
		},
	}
}

func printInfo(info fileInfo) {
	fmt.Printf("File: %s\n", filepath.Base(info.Path))
	fmt.Printf("Version: %s  Shift type: %s  Byte order: %s\n",
		info.Version, info.ShiftType, byteOrderName(info.BigEndian))
	fmt.Printf("Datum: %s -> %s\n", info.FromEllipsoid, info.ToEllipsoid)
	fmt.Printf("Ellipsoid (from): a=%.4f b=%.4f\n", info.FromSemiMajor, info.FromSemiMinor)
	fmt.Printf("Ellipsoid (to):   a=%.4f b=%.4f\n", info.ToSemiMajor, info.ToSemiMinor)
	fmt.Printf("Subgrids: %d\n\n", info.SubGridCount)

	fmt.Printf("%-24s %-12s %12s %12s %12s %12s %10s\n",
		"NAME", "PARENT", "S_LAT", "N_LAT", "E_LONG", "W_LONG", "NODES")
	for _, root := range info.SubGrids {
		printSubGrid(root, 0)
	}
}

func printSubGrid(sg ntv2.SubGridInfo, depth int) {
	name := strings.Repeat("  ", depth) + sg.Name
	fmt.Printf("%-24s %-12s %12.2f %12.2f %12.2f %12.2f %10d\n",
		name, sg.Parent,
		sg.MinLatSeconds, sg.MaxLatSeconds,
		sg.MinLonSeconds, sg.MaxLonSeconds,
		sg.NodeCount)
	for _, child := range sg.Children {
		printSubGrid(child, depth+1)
	}
}

func byteOrderName(big bool) string {
	if big {
		return "big-endian"
	}
	return "little-endian"
}
