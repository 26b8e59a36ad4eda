package main

import (
	"fmt"
	"log"
	"os"

	"github.com/marinekit/s57/pkg/s57"
)

func main() {
	base, err := os.ReadFile("US5MA22M.000")
	if err != nil {
		log.Fatal(err)
	}

	// Updates go in issue order. A missing file in the middle is a
	// sequence gap: application halts there, everything before the
	// gap stays applied, and the result carries an UPDATE_GAP
	// warning.
	var updates [][]byte
	for i := 1; ; i++ {
		data, err := os.ReadFile(fmt.Sprintf("US5MA22M.%03d", i))
		if err != nil {
			break
		}
		updates = append(updates, data)
	}

	fs, err := s57.DecodeCell(base, s57.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	updated, err := fs.ApplyUpdates(updates)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("base:    update %s, %d features\n", fs.UpdateNumber(), fs.FeatureCount())
	fmt.Printf("updated: update %s, %d features\n", updated.UpdateNumber(), updated.FeatureCount())

	for _, w := range updated.Warnings() {
		if w.Code == s57.WarnUpdateGap {
			fmt.Printf("sequence gap: %s\n", w.Message)
		}
	}
}
