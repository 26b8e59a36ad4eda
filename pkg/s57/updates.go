package s57

import (
	"errors"

	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/parser"
)

// ApplyUpdates applies a sequence of ER-profile update buffers (the
// .001, .002, ... files) to the set and returns the amended result.
// The receiver is never modified.
//
// Buffers must be passed in issue order. Each one must carry the next
// update number after the set's current UpdateNumber; a buffer that
// does not is a sequence gap. On a gap, application halts before the
// gapped buffer: updates already applied are kept, the result carries
// an UPDATE_GAP warning naming the expected and actual numbers, and in
// the default lenient mode no error is returned. Callers that need to
// distinguish a clean result inspect Warnings.
//
// In strict mode a gap, like any other data-losing anomaly, returns
// the partial result together with a *StrictModeError.
func (fs *FeatureSet) ApplyUpdates(updates [][]byte) (*FeatureSet, error) {
	if len(updates) == 0 {
		return fs, nil
	}

	col := diag.NewCollector(fs.opts.StrictMode)
	cell := fs.cell.Clone()
	popts := fs.opts.parserOptions()

	expected := cell.UpdateSequence()
	for _, data := range updates {
		expected++
		err := parser.ApplyUpdate(cell, data, expected, fs.cat, col, popts)
		if err == nil {
			continue
		}
		if errors.Is(err, parser.ErrUpdateGap) {
			break
		}
		var strictErr *diag.StrictError
		if errors.As(err, &strictErr) {
			break
		}
		return nil, err
	}

	out := newFeatureSet(cell, fs.cat, col, fs.opts)
	out.warnings = append(fs.Warnings(), out.warnings...)

	if fs.opts.StrictMode && col.HasErrors() {
		return out, &StrictModeError{Warnings: out.Warnings()}
	}
	return out, nil
}
