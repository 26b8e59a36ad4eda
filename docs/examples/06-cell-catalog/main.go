package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/marinekit/s57/pkg/s57"
)

func main() {
	root := os.Args[1]

	// Gather every base cell under the root.
	var inputs []s57.CellInput
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".000" {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, s57.CellInput{Name: filepath.Base(path), Base: data})
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// Decode in parallel, skipping cells that fail.
	opts := s57.DefaultDecodeOptions()
	opts.Progress = func(done, total int) {
		fmt.Printf("\rdecoding %d/%d", done, total)
	}
	sets, errs := s57.DecodeCells(inputs, s57.DefaultParseOptions(), opts)
	fmt.Printf("\ndecoded %d cells, %d failures\n", len(sets), len(errs))

	// Index them and pick the best harbour cells for a viewport.
	idx := s57.BuildCellIndex(sets)
	entries := idx.Query(
		s57.Bounds{MinLon: -71.1, MaxLon: -70.7, MinLat: 42.2, MaxLat: 42.5},
		s57.QueryOptions{
			UsageBands: []s57.UsageBand{s57.UsageBandApproach, s57.UsageBandHarbour},
		},
	)

	for _, e := range entries {
		fmt.Printf("%-12s 1:%-8d edition %d update %d\n",
			e.Name, e.CompilationScale, e.Edition, e.UpdateNumber)
	}
}
