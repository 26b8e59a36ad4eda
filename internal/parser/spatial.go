package parser

import (
	"encoding/binary"

	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/iso8211"
)

// vectorPointer is a pointer to another spatial record.
// S-57 §7.7.1.4: Vector Record Pointer (VRPT), 9 bytes per pointer.
type vectorPointer struct {
	TargetRCNM  int   // Record type (110=node, 120=connected node, 130=edge, 140=face)
	TargetRCID  int64 // Record ID of target
	Orientation int   // 1=forward, 2=reverse, 255=null
	Usage       int   // 1=Exterior, 2=Interior, 3=Exterior truncated
	Topology    int   // 1=begin, 2=end, 3=left, 4=right, 255=null
	Mask        int   // 1=mask, 2=show, 255=null
}

// spatialRecord is a parsed S-57 spatial (vector) record.
type spatialRecord struct {
	ID             int64           // RCID from VRID
	RecordType     spatialType     // Node, edge, etc.
	Coordinates    [][]float64     // [lon, lat] or [lon, lat, depth]
	VectorPointers []vectorPointer // VRPT pointers to other spatial records
	RecordVersion  int             // RVER
	UpdateInstr    int             // RUIN
}

// clone deep-copies a spatial record for update application.
func (s *spatialRecord) clone() *spatialRecord {
	dup := *s
	dup.Coordinates = make([][]float64, len(s.Coordinates))
	for i, c := range s.Coordinates {
		dup.Coordinates[i] = append([]float64(nil), c...)
	}
	dup.VectorPointers = append([]vectorPointer(nil), s.VectorPointers...)
	return &dup
}

// spatialType is the RCNM record name of a spatial record.
type spatialType int

const (
	// S-57 Appendix B.1: RCNM values for spatial records.
	spatialTypeIsolatedNode  spatialType = 110 // VI
	spatialTypeConnectedNode spatialType = 120 // VC
	spatialTypeEdge          spatialType = 130 // VE
	spatialTypeFace          spatialType = 140 // VF
)

// parseSpatialRecord extracts spatial data from an ISO 8211 record.
// Returns nil when the record is not a spatial record.
//
// VRID binary layout per S-57 §7.7.1.1 (8 bytes):
//
//	RCNM (1 byte)  - 110/120/130/140
//	RCID (4 bytes) - record ID (uint32 LE)
//	RVER (2 bytes) - record version (uint16 LE)
//	RUIN (1 byte)  - update instruction
func parseSpatialRecord(record *iso8211.DataRecord, comf, somf int32, col *diag.Collector) *spatialRecord {
	vridData, hasVRID := record.Fields["VRID"]
	if !hasVRID {
		return nil
	}
	if len(vridData) < 8 {
		col.Warn(diag.CodeCountMismatch,
			"VRID field is %d bytes, want 8: record skipped", len(vridData))
		return nil
	}

	rcnm := spatialType(vridData[0])
	switch rcnm {
	case spatialTypeIsolatedNode, spatialTypeConnectedNode, spatialTypeEdge, spatialTypeFace:
	default:
		return nil
	}

	rec := &spatialRecord{
		RecordType:    rcnm,
		ID:            int64(binary.LittleEndian.Uint32(vridData[1:5])),
		RecordVersion: int(binary.LittleEndian.Uint16(vridData[5:7])),
		UpdateInstr:   int(vridData[7]),
	}

	// X/Y are scaled by COMF, the sounding Z by SOMF.
	if sg2dData, ok := record.Fields["SG2D"]; ok {
		rec.Coordinates = parseCoordinates2D(sg2dData, comf, col)
	}
	if sg3dData, ok := record.Fields["SG3D"]; ok {
		rec.Coordinates = parseCoordinates3D(sg3dData, comf, somf, col)
	}
	if vrptData, ok := record.Fields["VRPT"]; ok {
		rec.VectorPointers = parseVectorPointers(vrptData, col)
	}

	return rec
}

// parseCoordinates2D decodes the SG2D field: repeated pairs of int32
// LE values, 8 bytes per coordinate, stored [X, Y] = [lon, lat].
// A trailing partial pair is reported and dropped; the complete pairs
// before it are kept.
func parseCoordinates2D(data []byte, comf int32, col *diag.Collector) [][]float64 {
	if rem := len(data) % 8; rem != 0 {
		col.Warn(diag.CodeCountMismatch,
			"SG2D field is %d bytes: %d complete pairs kept, %d trailing bytes dropped",
			len(data), len(data)/8, rem)
	}

	coords := make([][]float64, 0, len(data)/8)
	for offset := 0; offset+8 <= len(data); offset += 8 {
		x := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
		y := int32(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))

		// GeoJSON axis order: [longitude, latitude].
		coords = append(coords, []float64{
			convertCoordinate(x, comf),
			convertCoordinate(y, comf),
		})
	}
	return coords
}

// parseCoordinates3D decodes the SG3D field: repeated triples of int32
// LE values, 12 bytes per sounding, stored [X, Y, Z]. X/Y scale by
// COMF, Z by SOMF. Trailing partial triples are reported and dropped.
func parseCoordinates3D(data []byte, comf, somf int32, col *diag.Collector) [][]float64 {
	if rem := len(data) % 12; rem != 0 {
		col.Warn(diag.CodeCountMismatch,
			"SG3D field is %d bytes: %d complete triples kept, %d trailing bytes dropped",
			len(data), len(data)/12, rem)
	}

	coords := make([][]float64, 0, len(data)/12)
	for offset := 0; offset+12 <= len(data); offset += 12 {
		x := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
		y := int32(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		z := int32(binary.LittleEndian.Uint32(data[offset+8 : offset+12]))

		coords = append(coords, []float64{
			convertCoordinate(x, comf),
			convertCoordinate(y, comf),
			convertCoordinate(z, somf),
		})
	}
	return coords
}

// parseVectorPointers decodes the VRPT field, a repeating group of
// fixed 9-byte entries per S-57 §7.7.1.4:
//
//	NAME_RCNM (1 byte)  - target record type
//	NAME_RCID (4 bytes) - target record ID (uint32 LE)
//	ORNT (1 byte)       - orientation
//	USAG (1 byte)       - usage indicator
//	TOPI (1 byte)       - topology indicator
//	MASK (1 byte)       - masking indicator
func parseVectorPointers(data []byte, col *diag.Collector) []vectorPointer {
	if rem := len(data) % 9; rem != 0 {
		col.Warn(diag.CodeCountMismatch,
			"VRPT field is %d bytes, not a multiple of 9: %d trailing bytes ignored",
			len(data), rem)
	}

	pointers := make([]vectorPointer, 0, len(data)/9)
	for i := 0; i+9 <= len(data); i += 9 {
		pointers = append(pointers, vectorPointer{
			TargetRCNM:  int(data[i]),
			TargetRCID:  int64(binary.LittleEndian.Uint32(data[i+1 : i+5])),
			Orientation: int(data[i+5]),
			Usage:       int(data[i+6]),
			Topology:    int(data[i+7]),
			Mask:        int(data[i+8]),
		})
	}
	return pointers
}
