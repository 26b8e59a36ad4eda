package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

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

	// Depth areas shallower than 10 meters: class filter plus an
	// attribute predicate.
	shallow := fs.FindFeatures(s57.FeatureQuery{
		ObjectClasses: []string{"DEPARE"},
		Where: func(f s57.Feature) bool {
			raw, ok := f.Attribute("DRVAL1")
			if !ok {
				return false
			}
			depth, err := strconv.ParseFloat(fmt.Sprint(raw), 64)
			return err == nil && depth < 10
		},
	})

	fmt.Printf("%d shallow depth areas\n", len(shallow))
	for _, f := range shallow {
		drval1, _ := f.Attribute("DRVAL1")
		drval2, _ := f.Attribute("DRVAL2")
		fmt.Printf("  %s depth %v to %v\n", f.ID(), drval1, drval2)
	}

	// Lookup by identifier works too, through the FOID-ordered tree.
	if len(shallow) > 0 {
		f, ok := fs.FeatureByID(shallow[0].ID())
		fmt.Printf("lookup %s: found=%v class=%s\n", shallow[0].ID(), ok, f.ObjectClass())
	}
}
