package parser

// VRPT topology resolution: polygon ring construction from edge
// references per S-57 Edition 3.1.

import (
	"github.com/marinekit/s57/internal/diag"
)

// spatialKey uniquely identifies a spatial record by (RCNM, RCID).
// S-57 §2.2.2: RCID is unique within a record type, not globally.
type spatialKey struct {
	RCNM int
	RCID int64
}

// edge is a spatial edge record with its node connectivity.
// S-57 §5.1.3.2: edges connect nodes to form area boundaries.
type edge struct {
	ID          int64
	Points      [][2]float64 // SG2D shape points only, nodes excluded
	StartNodeID int64
	EndNodeID   int64
}

// polygonBuilder resolves edges and nodes into rings. Loaded edges are
// cached because area features in a cell commonly share boundaries.
type polygonBuilder struct {
	spatialRecords map[spatialKey]*spatialRecord
	edgeCache      map[int64]*edge
	col            *diag.Collector
}

func newPolygonBuilder(spatialRecords map[spatialKey]*spatialRecord, col *diag.Collector) *polygonBuilder {
	return &polygonBuilder{
		spatialRecords: spatialRecords,
		edgeCache:      make(map[int64]*edge),
		col:            col,
	}
}

// getNode retrieves a node's record, trying connected then isolated.
func (b *polygonBuilder) getNode(nodeID int64) *spatialRecord {
	key := spatialKey{RCNM: int(spatialTypeConnectedNode), RCID: nodeID}
	if node, ok := b.spatialRecords[key]; ok && len(node.Coordinates) > 0 {
		return node
	}
	key = spatialKey{RCNM: int(spatialTypeIsolatedNode), RCID: nodeID}
	if node, ok := b.spatialRecords[key]; ok && len(node.Coordinates) > 0 {
		return node
	}
	return nil
}

// fullEdgeCoordinates assembles start node + shape points + end node,
// reversed when orientation is 2. S-57 §5.1.4.4: node geometry is not
// part of the edge, so the nodes are stitched in here.
func (b *polygonBuilder) fullEdgeCoordinates(e *edge, orientation int) [][2]float64 {
	coords := make([][2]float64, 0, len(e.Points)+2)

	if e.StartNodeID != 0 {
		if node := b.getNode(e.StartNodeID); node != nil {
			if c := node.Coordinates[0]; len(c) >= 2 {
				coords = append(coords, [2]float64{c[0], c[1]})
			}
		} else {
			b.col.Warn(diag.CodeDanglingPointer,
				"edge %d begins at missing node RCID=%d", e.ID, e.StartNodeID)
		}
	}

	coords = append(coords, e.Points...)

	if e.EndNodeID != 0 {
		if node := b.getNode(e.EndNodeID); node != nil {
			if c := node.Coordinates[0]; len(c) >= 2 {
				coords = append(coords, [2]float64{c[0], c[1]})
			}
		} else {
			b.col.Warn(diag.CodeDanglingPointer,
				"edge %d ends at missing node RCID=%d", e.ID, e.EndNodeID)
		}
	}

	if orientation == 2 {
		reversed := make([][2]float64, len(coords))
		for i, coord := range coords {
			reversed[len(coords)-1-i] = coord
		}
		return reversed
	}
	return coords
}

// loadEdge loads an edge by RCID, caching the result. Returns nil
// (with a DANGLING_POINTER report) when the edge record is absent.
func (b *polygonBuilder) loadEdge(edgeID int64) *edge {
	if e, ok := b.edgeCache[edgeID]; ok {
		return e
	}

	spatial, ok := b.spatialRecords[spatialKey{RCNM: int(spatialTypeEdge), RCID: edgeID}]
	if !ok {
		b.col.Warn(diag.CodeDanglingPointer, "referenced edge RCID=%d is missing", edgeID)
		return nil
	}

	// Node connectivity comes from VRPT: the first node reference is
	// the begin node, the second the end node (S-57 §5.1.3.2 requires
	// the sequence B, E, S, D).
	var startNodeID, endNodeID int64
	for _, ptr := range spatial.VectorPointers {
		if ptr.TargetRCNM == int(spatialTypeIsolatedNode) || ptr.TargetRCNM == int(spatialTypeConnectedNode) {
			if startNodeID == 0 {
				startNodeID = ptr.TargetRCID
			} else if endNodeID == 0 {
				endNodeID = ptr.TargetRCID
			}
		}
	}

	points := make([][2]float64, 0, len(spatial.Coordinates))
	for _, coord := range spatial.Coordinates {
		if len(coord) >= 2 {
			points = append(points, [2]float64{coord[0], coord[1]})
		}
	}

	e := &edge{
		ID:          edgeID,
		Points:      points,
		StartNodeID: startNodeID,
		EndNodeID:   endNodeID,
	}
	b.edgeCache[edgeID] = e
	return e
}

// buildRing constructs a closed ring from edges in FSPT order,
// applying each reference's orientation and deduplicating the shared
// node between consecutive edges. S-57 §4.7.3: boundary edges are
// referenced sequentially.
func (b *polygonBuilder) buildRing(edgeRefs []spatialRef) [][2]float64 {
	coords := make([][2]float64, 0)

	for _, ref := range edgeRefs {
		e := b.loadEdge(ref.RCID)
		if e == nil {
			continue
		}

		edgeCoords := b.fullEdgeCoordinates(e, ref.Orientation)

		// The end node of one edge is the begin node of the next;
		// drop the duplicate.
		if len(coords) > 0 && len(edgeCoords) > 0 {
			last, first := coords[len(coords)-1], edgeCoords[0]
			if last[0] == first[0] && last[1] == first[1] {
				edgeCoords = edgeCoords[1:]
			}
		}
		coords = append(coords, edgeCoords...)
	}

	if len(coords) > 0 && !isRingClosed(coords) {
		coords = append(coords, coords[0])
	}
	return coords
}

// isRingClosed reports whether first and last coordinates coincide.
func isRingClosed(ring [][2]float64) bool {
	if len(ring) < 3 {
		return false
	}
	first, last := ring[0], ring[len(ring)-1]
	return first[0] == last[0] && first[1] == last[1]
}
