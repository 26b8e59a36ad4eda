package parser

import (
	"github.com/marinekit/s57/internal/diag"
)

// GeometryType enumerates the geometry shapes a feature can carry.
type GeometryType int

const (
	GeometryTypePoint GeometryType = iota + 1
	GeometryTypeLineString
	GeometryTypePolygon
)

func (t GeometryType) String() string {
	switch t {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeLineString:
		return "LineString"
	case GeometryTypePolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// Geometry is the spatial representation of a feature. Coordinates
// are [lon, lat] or [lon, lat, depth] in degrees/metres after COMF and
// SOMF scaling. A Point geometry with multiple coordinates is a
// multipoint (SOUNDG clusters commonly carry hundreds).
type Geometry struct {
	Type        GeometryType
	Coordinates [][]float64
}

// constructGeometry builds a Geometry from a feature record and the
// spatial record table. Pointers to absent spatial records are
// reported as DANGLING_POINTER and skipped, so a feature with partial
// topology still decodes with whatever coordinates remain.
func constructGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord, col *diag.Collector) Geometry {
	// PRIM=255 marks meta-features (C_AGGR, M_COVR, ...) with no
	// spatial representation.
	if featureRec.GeomPrim == 255 {
		return Geometry{Type: GeometryTypePoint, Coordinates: [][]float64{}}
	}

	geomType := geomTypeFromPrim(featureRec.GeomPrim)

	if len(featureRec.SpatialRefs) == 0 {
		col.Warn(diag.CodeEmptyRequiredField,
			"feature %s has primitive %d but no spatial pointers",
			featureRec.FOID, featureRec.GeomPrim)
		return Geometry{Type: geomType, Coordinates: [][]float64{}}
	}

	switch geomType {
	case GeometryTypePolygon:
		return constructPolygonGeometry(featureRec, spatialRecords, col)
	case GeometryTypePoint:
		return constructPointGeometry(featureRec, spatialRecords, col)
	default:
		return constructLineStringGeometry(featureRec, spatialRecords, col)
	}
}

// findSpatial locates a spatial record by RCID, trying the given RCNM
// types in order. FSPT pointers only carry the RCID reliably, so the
// type must be probed.
func findSpatial(spatialRecords map[spatialKey]*spatialRecord, rcid int64, order ...spatialType) *spatialRecord {
	for _, rcnm := range order {
		if sp, ok := spatialRecords[spatialKey{RCNM: int(rcnm), RCID: rcid}]; ok {
			return sp
		}
	}
	return nil
}

// constructPointGeometry collects coordinates from every spatial
// reference of a point feature. Multipoint features like SOUNDG
// reference many isolated nodes; full 2D or 3D coordinates are kept.
func constructPointGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord, col *diag.Collector) Geometry {
	allCoords := make([][]float64, 0)

	for _, ref := range featureRec.SpatialRefs {
		// Isolated node first: for multipoint features the SG3D
		// coordinates live on the isolated node.
		spatial := findSpatial(spatialRecords, ref.RCID,
			spatialTypeIsolatedNode, spatialTypeConnectedNode)
		if spatial == nil {
			col.Warn(diag.CodeDanglingPointer,
				"feature %s points at missing node RCID=%d", featureRec.FOID, ref.RCID)
			continue
		}
		allCoords = append(allCoords, spatial.Coordinates...)
	}

	return Geometry{Type: GeometryTypePoint, Coordinates: allCoords}
}

// constructLineStringGeometry collects coordinates from edges and
// nodes referenced by a line feature. Edges (RCNM=130) are resolved
// through their begin/end nodes per S-57 §7.6.
func constructLineStringGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord, col *diag.Collector) Geometry {
	allCoords := make([][]float64, 0)
	builder := newPolygonBuilder(spatialRecords, col)

	for _, ref := range featureRec.SpatialRefs {
		spatial := findSpatial(spatialRecords, ref.RCID,
			spatialTypeEdge, spatialTypeConnectedNode, spatialTypeIsolatedNode, spatialTypeFace)
		if spatial == nil {
			col.Warn(diag.CodeDanglingPointer,
				"feature %s points at missing spatial record RCID=%d", featureRec.FOID, ref.RCID)
			continue
		}

		switch {
		case spatial.RecordType == spatialTypeEdge:
			edge := builder.loadEdge(spatial.ID)
			if edge == nil {
				continue
			}
			for _, coord := range builder.fullEdgeCoordinates(edge, ref.Orientation) {
				allCoords = append(allCoords, []float64{coord[0], coord[1]})
			}
		case len(spatial.Coordinates) > 0:
			for _, coord := range spatial.Coordinates {
				allCoords = append(allCoords, []float64{coord[0], coord[1]})
			}
		case len(spatial.VectorPointers) > 0:
			allCoords = append(allCoords, resolveVectorPointers(spatial, spatialRecords)...)
		}
	}

	if len(allCoords) < 2 {
		// Degenerate line; the caller decides whether to keep it.
		return Geometry{Type: GeometryTypeLineString, Coordinates: [][]float64{}}
	}
	return Geometry{Type: GeometryTypeLineString, Coordinates: allCoords}
}

// constructPolygonGeometry builds polygon geometry using VRPT
// topology. S-57 §7.3: area features reference edges either directly
// or through face records.
func constructPolygonGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord, col *diag.Collector) Geometry {
	builder := newPolygonBuilder(spatialRecords, col)

	// Collect edge references with orientation, expanding face records
	// (RCNM=140) into the edges their VRPT names.
	edgeRefs := make([]spatialRef, 0, len(featureRec.SpatialRefs))
	for _, ref := range featureRec.SpatialRefs {
		spatial := findSpatial(spatialRecords, ref.RCID,
			spatialTypeFace, spatialTypeEdge, spatialTypeConnectedNode, spatialTypeIsolatedNode)
		if spatial == nil {
			col.Warn(diag.CodeDanglingPointer,
				"feature %s points at missing spatial record RCID=%d", featureRec.FOID, ref.RCID)
			continue
		}

		switch spatial.RecordType {
		case spatialTypeFace:
			for _, ptr := range spatial.VectorPointers {
				if ptr.TargetRCNM == int(spatialTypeEdge) {
					edgeRefs = append(edgeRefs, spatialRef{
						RCID:        ptr.TargetRCID,
						Orientation: ptr.Orientation,
						Usage:       ptr.Usage,
						Mask:        ptr.Mask,
					})
				}
			}
		case spatialTypeEdge:
			edgeRefs = append(edgeRefs, ref)
		}
	}

	if len(edgeRefs) > 0 {
		if ring := builder.buildRing(edgeRefs); len(ring) >= 3 {
			coords := make([][]float64, 0, len(ring))
			for _, point := range ring {
				coords = append(coords, []float64{point[0], point[1]})
			}
			return Geometry{Type: GeometryTypePolygon, Coordinates: coords}
		}
	}

	// Topology was incomplete; fall back to bare coordinate collection
	// from whatever spatial records the feature references.
	allCoords := make([][]float64, 0)
	for _, ref := range featureRec.SpatialRefs {
		spatial := findSpatial(spatialRecords, ref.RCID,
			spatialTypeEdge, spatialTypeConnectedNode, spatialTypeIsolatedNode, spatialTypeFace)
		if spatial == nil {
			continue
		}
		for _, coord := range spatial.Coordinates {
			allCoords = append(allCoords, []float64{coord[0], coord[1]})
		}
	}

	if len(allCoords) < 3 {
		return Geometry{Type: GeometryTypePolygon, Coordinates: [][]float64{}}
	}
	return Geometry{Type: GeometryTypePolygon, Coordinates: ensurePolygonClosure(allCoords)}
}

// geomTypeFromPrim converts a PRIM value to a GeometryType.
// S-57 §7.6.1: 1=Point, 2=Line, 3=Area.
func geomTypeFromPrim(prim int) GeometryType {
	switch prim {
	case 2:
		return GeometryTypeLineString
	case 3:
		return GeometryTypePolygon
	default:
		return GeometryTypePoint
	}
}

// ensurePolygonClosure appends the first coordinate when a ring is not
// already closed.
func ensurePolygonClosure(coords [][]float64) [][]float64 {
	if len(coords) < 3 {
		return coords
	}
	first, last := coords[0], coords[len(coords)-1]
	if first[0] == last[0] && first[1] == last[1] {
		return coords
	}
	return append(coords, []float64{first[0], first[1]})
}

// resolveVectorPointers follows VRPT pointers to collect coordinates,
// with cycle detection.
func resolveVectorPointers(spatial *spatialRecord, spatialRecords map[spatialKey]*spatialRecord) [][]float64 {
	visited := make(map[int64]bool)
	return resolvePointersRecursive(spatial, spatialRecords, visited)
}

func resolvePointersRecursive(spatial *spatialRecord, spatialRecords map[spatialKey]*spatialRecord, visited map[int64]bool) [][]float64 {
	coords := make([][]float64, 0)

	for _, ptr := range spatial.VectorPointers {
		if visited[ptr.TargetRCID] {
			continue
		}
		visited[ptr.TargetRCID] = true

		target, ok := spatialRecords[spatialKey{RCNM: ptr.TargetRCNM, RCID: ptr.TargetRCID}]
		if !ok {
			continue
		}

		targetCoords := make([][]float64, 0)
		if len(target.Coordinates) > 0 {
			for _, coord := range target.Coordinates {
				targetCoords = append(targetCoords, []float64{coord[0], coord[1]})
			}
		} else if len(target.VectorPointers) > 0 {
			targetCoords = resolvePointersRecursive(target, spatialRecords, visited)
		}

		if ptr.Orientation == 2 {
			for i := len(targetCoords) - 1; i >= 0; i-- {
				coords = append(coords, targetCoords[i])
			}
		} else {
			coords = append(coords, targetCoords...)
		}
	}

	return coords
}
