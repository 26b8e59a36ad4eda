package main

import (
	"fmt"
	"log"
	"os"

	"github.com/marinekit/s57/pkg/s57"
)

func main() {
	data, err := os.ReadFile("US5MA22M.000")
	if err != nil {
		log.Fatal(err)
	}

	fs, err := s57.DecodeCell(data, s57.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	// A viewport over part of the cell. The R-tree behind
	// FeaturesInBounds makes this fast even on large harbour cells.
	viewport := s57.Bounds{
		MinLon: -70.9, MaxLon: -70.8,
		MinLat: 42.3, MaxLat: 42.4,
	}

	features := fs.FeaturesInBounds(viewport)
	fmt.Printf("%d features in viewport\n", len(features))

	for _, f := range features {
		fmt.Printf("  %-8s %-12s %s\n", f.ObjectClass(), f.Geometry().Type, f.ID())
	}
}
