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

	// Export only the classes a web map typically renders.
	opts := s57.DefaultParseOptions()
	opts.ObjectClassFilter = []string{"DEPARE", "DEPCNT", "LIGHTS", "BOYLAT", "SOUNDG"}

	fs, err := s57.DecodeCell(data, opts)
	if err != nil {
		log.Fatal(err)
	}

	geojson, err := fs.ToGeoJSON()
	if err != nil {
		log.Fatal(err)
	}

	out := fs.DatasetName() + ".geojson"
	if err := os.WriteFile(out, geojson, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %d features to %s (%d bytes)\n", fs.FeatureCount(), out, len(geojson))
}
