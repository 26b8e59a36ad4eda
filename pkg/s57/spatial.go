package s57

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// Bounds is a geographic bounding box in WGS-84 decimal degrees.
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// Contains reports whether the point (lon, lat) lies within the
// bounds.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// Intersects reports whether the two bounds overlap.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Union returns the smallest bounds covering both.
func (b Bounds) Union(other Bounds) Bounds {
	out := b
	if other.MinLon < out.MinLon {
		out.MinLon = other.MinLon
	}
	if other.MaxLon > out.MaxLon {
		out.MaxLon = other.MaxLon
	}
	if other.MinLat < out.MinLat {
		out.MinLat = other.MinLat
	}
	if other.MaxLat > out.MaxLat {
		out.MaxLat = other.MaxLat
	}
	return out
}

// Expand returns the bounds grown by margin decimal degrees in every
// direction.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MaxLon: b.MaxLon + margin,
		MinLat: b.MinLat - margin,
		MaxLat: b.MaxLat + margin,
	}
}

// featureBounds calculates the bounding box of a feature's geometry.
func featureBounds(f *Feature) Bounds {
	coords := f.geometry.Coordinates
	if len(coords) == 0 {
		return Bounds{}
	}

	bounds := Bounds{
		MinLon: coords[0][0],
		MaxLon: coords[0][0],
		MinLat: coords[0][1],
		MaxLat: coords[0][1],
	}
	for _, coord := range coords {
		lon, lat := coord[0], coord[1]
		if lon < bounds.MinLon {
			bounds.MinLon = lon
		}
		if lon > bounds.MaxLon {
			bounds.MaxLon = lon
		}
		if lat < bounds.MinLat {
			bounds.MinLat = lat
		}
		if lat > bounds.MaxLat {
			bounds.MaxLat = lat
		}
	}
	return bounds
}

// spatialIndex answers viewport queries in O(log n) with an R-tree,
// against the linear scan a feature slice would need.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps one feature slot for R-tree storage.
type indexedFeature struct {
	idx    int
	bounds Bounds
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	point := rtreego.Point{f.bounds.MinLon, f.bounds.MinLat}

	// R-tree rectangles need non-zero extent, so point features get a
	// small epsilon (~11 meters at the equator).
	const epsilon = 0.0001
	lonLength := f.bounds.MaxLon - f.bounds.MinLon
	latLength := f.bounds.MaxLat - f.bounds.MinLat
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// buildSpatialIndex indexes every feature with resolved coordinates.
func buildSpatialIndex(features []Feature) *spatialIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for i := range features {
		if len(features[i].geometry.Coordinates) == 0 {
			continue
		}
		tree.Insert(&indexedFeature{idx: i, bounds: features[i].Bounds()})
	}
	return &spatialIndex{rtree: tree}
}

// search returns the features whose bounding box intersects b, in
// dataset record order.
func (idx *spatialIndex) search(b Bounds, features []Feature) []Feature {
	lonLength := b.MaxLon - b.MinLon
	latLength := b.MaxLat - b.MinLat
	const epsilon = 0.0001
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.MinLon, b.MinLat}, []float64{lonLength, latLength})
	if err != nil {
		return nil
	}

	hits := idx.rtree.SearchIntersect(rect)
	slots := make([]int, 0, len(hits))
	for _, hit := range hits {
		f := hit.(*indexedFeature)
		// The epsilon padding can produce near-miss hits; confirm
		// against the precise bounds.
		if b.Intersects(f.bounds) {
			slots = append(slots, f.idx)
		}
	}

	sort.Ints(slots)
	out := make([]Feature, 0, len(slots))
	for _, i := range slots {
		out = append(out, features[i])
	}
	return out
}
