package s57

import (
	"sort"
	"strconv"

	"github.com/dhconnelly/rtreego"
)

// CellIndex answers "which cells cover this viewport" over a
// collection of decoded cells.
//
// The index stores lightweight metadata per cell (bounds, scale,
// edition, usage band) in an R-tree, so a renderer can pick the cells
// for a region without touching the feature sets themselves. Spatial
// queries are O(log N) against the O(N) a linear scan would need.
//
// Example:
//
//	idx := s57.BuildCellIndex(sets)
//	entries := idx.Query(
//	    s57.Bounds{MinLon: -122.5, MaxLon: -122.0, MinLat: 37.5, MaxLat: 38.0},
//	    s57.QueryOptions{UsageBands: []s57.UsageBand{s57.UsageBandHarbour}},
//	)
type CellIndex struct {
	cells []CellEntry
	rtree *rtreego.Rtree
}

// CellEntry is the indexed metadata for a single cell.
type CellEntry struct {
	Name             string    // Dataset name from DSID
	GeoBounds        Bounds    // Geographic coverage
	CompilationScale int       // Scale denominator (e.g. 50000 for 1:50000)
	Edition          int       // Edition number
	UpdateNumber     int       // Last applied update number
	UsageBand        UsageBand // Intended usage band

	// Set is the feature set the entry was built from.
	Set *FeatureSet
}

// Bounds implements rtreego.Spatial.
func (e CellEntry) Bounds() rtreego.Rect {
	point := rtreego.Point{e.GeoBounds.MinLon, e.GeoBounds.MinLat}

	const epsilon = 0.0001
	lonLength := e.GeoBounds.MaxLon - e.GeoBounds.MinLon
	latLength := e.GeoBounds.MaxLat - e.GeoBounds.MinLat
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// QueryOptions controls cell query filtering.
type QueryOptions struct {
	// MinScale filters cells by minimum scale (larger scale, smaller
	// denominator). Only cells at this scale or larger are returned.
	// Example: MinScale=20000 includes 1:20000 and 1:10000, excludes
	// 1:50000.
	MinScale int

	// MaxScale filters cells by maximum scale (smaller scale, larger
	// denominator). Only cells at this scale or smaller are returned.
	// Example: MaxScale=100000 includes 1:100000 and 1:250000,
	// excludes 1:50000.
	MaxScale int

	// UsageBands filters by usage band. Empty means all bands.
	// Example: []UsageBand{UsageBandApproach, UsageBandHarbour}
	UsageBands []UsageBand
}

// BuildCellIndex indexes a collection of decoded cells.
func BuildCellIndex(sets []*FeatureSet) *CellIndex {
	entries := make([]CellEntry, len(sets))

	// 2D tree, 25 to 50 children per node.
	rtree := rtreego.NewTree(2, 25, 50)

	for i, fs := range sets {
		edition, _ := strconv.Atoi(fs.Edition())
		entries[i] = CellEntry{
			Name:             fs.DatasetName(),
			GeoBounds:        fs.Bounds(),
			CompilationScale: int(fs.CompilationScale()),
			Edition:          edition,
			UpdateNumber:     fs.UpdateSequence(),
			UsageBand:        fs.UsageBand(),
			Set:              fs,
		}
		rtree.Insert(entries[i])
	}

	return &CellIndex{cells: entries, rtree: rtree}
}

// Query returns cells intersecting the given bounds, sorted by
// display priority.
//
// Priority ordering (per S-52 Section 10.3.5):
//  1. Scale: larger scale (smaller denominator) first
//  2. Edition: higher edition number first
//  3. Update: higher update number first
func (idx *CellIndex) Query(bounds Bounds, opts QueryOptions) []CellEntry {
	var result []CellEntry

	const epsilon = 0.0001
	lonLength := bounds.MaxLon - bounds.MinLon
	latLength := bounds.MaxLat - bounds.MinLat
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}
	queryRect, err := rtreego.NewRect(
		rtreego.Point{bounds.MinLon, bounds.MinLat},
		[]float64{lonLength, latLength})
	if err != nil {
		return nil
	}

	for _, spatial := range idx.rtree.SearchIntersect(queryRect) {
		entry := spatial.(CellEntry)

		if !bounds.Intersects(entry.GeoBounds) {
			continue
		}
		if opts.MinScale > 0 && entry.CompilationScale > opts.MinScale {
			continue // cell scale too small (denominator too large)
		}
		if opts.MaxScale > 0 && entry.CompilationScale < opts.MaxScale {
			continue // cell scale too large (denominator too small)
		}
		if len(opts.UsageBands) > 0 {
			match := false
			for _, band := range opts.UsageBands {
				if entry.UsageBand == band {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}

		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CompilationScale != result[j].CompilationScale {
			return result[i].CompilationScale < result[j].CompilationScale
		}
		if result[i].Edition != result[j].Edition {
			return result[i].Edition > result[j].Edition
		}
		return result[i].UpdateNumber > result[j].UpdateNumber
	})

	return result
}

// Count returns the number of indexed cells.
func (idx *CellIndex) Count() int {
	return len(idx.cells)
}

// Bounds returns the union of all indexed cell bounds.
func (idx *CellIndex) Bounds() Bounds {
	if len(idx.cells) == 0 {
		return Bounds{}
	}
	bounds := idx.cells[0].GeoBounds
	for i := 1; i < len(idx.cells); i++ {
		bounds = bounds.Union(idx.cells[i].GeoBounds)
	}
	return bounds
}

// All returns every entry in the index.
func (idx *CellIndex) All() []CellEntry {
	return idx.cells
}
