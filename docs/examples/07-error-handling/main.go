package main

import (
	"errors"
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

	// Lenient mode decodes what survives and reports the rest.
	fs, err := s57.DecodeCell(data, s57.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	for _, w := range fs.Warnings() {
		switch w.Code {
		case s57.WarnDanglingPointer:
			fmt.Printf("broken topology: %s\n", w.Message)
		case s57.WarnLeaderTruncated, s57.WarnDirEntryLenMismatch:
			fmt.Printf("structural damage: %s\n", w)
		default:
			fmt.Println(w)
		}
	}

	// Strict mode turns data loss into an error that still carries
	// the full diagnostic history.
	strict := s57.DefaultParseOptions()
	strict.StrictMode = true

	if _, err := s57.DecodeCell(data, strict); err != nil {
		var strictErr *s57.StrictModeError
		if errors.As(err, &strictErr) {
			fmt.Printf("strict decode failed after %d events:\n", len(strictErr.Warnings))
			for _, w := range strictErr.Warnings {
				fmt.Printf("  %s\n", w)
			}
			return
		}
		log.Fatal(err)
	}
	fmt.Println("strict decode clean")
}
