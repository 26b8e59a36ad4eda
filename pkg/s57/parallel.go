package s57

import (
	"fmt"
	"io"
	"runtime"
	"sync"
)

// CellInput is one cell's worth of raw buffers for bulk decoding: the
// base dataset plus its update sequence in issue order.
type CellInput struct {
	// Name identifies the cell in error messages, typically the file
	// name the buffer was read from.
	Name string

	// Base is the .000 base cell buffer.
	Base []byte

	// Updates are the .001, .002, ... buffers in order. May be empty.
	Updates [][]byte
}

// DecodeOptions controls bulk decoding.
type DecodeOptions struct {
	// Parallel decodes cells across a worker pool. Serial when false.
	Parallel bool

	// Workers is the pool size. Zero or negative means one worker per
	// CPU.
	Workers int

	// SkipErrors continues past cells that fail to decode, collecting
	// their errors, instead of stopping at the first failure.
	SkipErrors bool

	// Progress, when set, is called after each cell finishes with the
	// number done and the total.
	Progress func(done, total int)

	// ErrorLog, when set, receives a line per failed cell.
	ErrorLog io.Writer
}

// DefaultDecodeOptions returns bulk decoding defaults: parallel,
// skipping failed cells.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		Parallel:   true,
		SkipErrors: true,
	}
}

// DecodeCells decodes many cells, optionally in parallel, applying
// each cell's update sequence as it goes. Results keep input order;
// cells that failed are absent from the result and present in the
// returned error list.
//
// With SkipErrors false, the first failure stops the decode and is the
// only error returned.
func DecodeCells(inputs []CellInput, parseOpts ParseOptions, opts DecodeOptions) ([]*FeatureSet, []error) {
	if len(inputs) == 0 {
		return []*FeatureSet{}, nil
	}

	if !opts.Parallel {
		return decodeCellsSerial(inputs, parseOpts, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	type decodeResult struct {
		index int
		set   *FeatureSet
		err   error
	}

	jobs := make(chan int, len(inputs))
	results := make(chan decodeResult, len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				set, err := decodeOne(inputs[index], parseOpts)
				results <- decodeResult{index: index, set: set, err: err}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	setMap := make(map[int]*FeatureSet)
	var errs []error
	done := 0

	for result := range results {
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(inputs))
		}

		if result.err != nil {
			err := fmt.Errorf("%s: %w", inputName(inputs[result.index], result.index), result.err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "decode cell: %v\n", err)
			}
			if opts.SkipErrors {
				errs = append(errs, err)
				continue
			}
			return nil, []error{err}
		}

		setMap[result.index] = result.set
	}

	sets := make([]*FeatureSet, 0, len(setMap))
	for i := range inputs {
		if set, ok := setMap[i]; ok {
			sets = append(sets, set)
		}
	}
	return sets, errs
}

// decodeCellsSerial decodes cells one at a time.
func decodeCellsSerial(inputs []CellInput, parseOpts ParseOptions, opts DecodeOptions) ([]*FeatureSet, []error) {
	sets := make([]*FeatureSet, 0, len(inputs))
	var errs []error

	for i, input := range inputs {
		set, err := decodeOne(input, parseOpts)
		if opts.Progress != nil {
			opts.Progress(i+1, len(inputs))
		}
		if err != nil {
			err = fmt.Errorf("%s: %w", inputName(input, i), err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "decode cell: %v\n", err)
			}
			if opts.SkipErrors {
				errs = append(errs, err)
				continue
			}
			return nil, []error{err}
		}
		sets = append(sets, set)
	}
	return sets, errs
}

// decodeOne decodes a base cell and applies its updates.
func decodeOne(input CellInput, opts ParseOptions) (*FeatureSet, error) {
	set, err := DecodeCell(input.Base, opts)
	if err != nil {
		return nil, err
	}
	if len(input.Updates) == 0 {
		return set, nil
	}
	return set.ApplyUpdates(input.Updates)
}

func inputName(input CellInput, index int) string {
	if input.Name != "" {
		return input.Name
	}
	return fmt.Sprintf("cell %d", index)
}
