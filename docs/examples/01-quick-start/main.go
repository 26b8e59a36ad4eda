package main

import (
	"fmt"
	"log"
	"os"

	"github.com/marinekit/s57/pkg/s57"
)

func main() {
	// Read the base cell into memory
	data, err := os.ReadFile("US5MA22M.000")
	if err != nil {
		log.Fatal(err)
	}

	// Decode it
	fs, err := s57.DecodeCell(data, s57.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Print cell info
	summary := fs.Summary()
	fmt.Printf("Cell: %s\n", summary.DatasetName)
	fmt.Printf("Edition: %s (update %s)\n", summary.Edition, summary.UpdateNumber)
	fmt.Printf("Usage band: %s\n", summary.UsageBand)
	fmt.Printf("Features: %d\n", summary.FeatureCount)
	fmt.Printf("Warnings: %d\n", summary.WarningCount)

	bounds := summary.Bounds
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.MinLon, bounds.MinLat,
		bounds.MaxLon, bounds.MaxLat)
}
