package parser

import (
	"encoding/binary"
	"fmt"

	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/iso8211"
)

// FOID is the world-wide unique feature object identifier from the
// FOID field. Per S-57 §7.6.2 the identity is the (AGEN, FIDN, FIDS)
// triple; FIDN alone is not unique across producers.
type FOID struct {
	AGEN uint16 // Producing agency
	FIDN uint32 // Feature identification number
	FIDS uint16 // Feature identification subdivision
}

// IsZero reports whether the identifier is unset.
func (id FOID) IsZero() bool {
	return id.AGEN == 0 && id.FIDN == 0 && id.FIDS == 0
}

// Less orders identifiers lexicographically by (AGEN, FIDN, FIDS).
// Feature iteration is defined in this order.
func (id FOID) Less(other FOID) bool {
	if id.AGEN != other.AGEN {
		return id.AGEN < other.AGEN
	}
	if id.FIDN != other.FIDN {
		return id.FIDN < other.FIDN
	}
	return id.FIDS < other.FIDS
}

func (id FOID) String() string {
	return fmt.Sprintf("%d:%d:%d", id.AGEN, id.FIDN, id.FIDS)
}

// Feature is a fully decoded navigational object: identity, resolved
// object class, constructed geometry and decoded attributes.
type Feature struct {
	// FOID is the unique feature identifier.
	FOID FOID
	// ObjectClass is the S-57 acronym (e.g. "DEPARE", "LIGHTS"), or
	// "OBJL_<code>" for classes the catalog does not know.
	ObjectClass string
	// ObjectCode is the numeric OBJL code the class was resolved from.
	ObjectCode int
	// Primitive is the geometric primitive from FRID:
	// 1=Point, 2=Line, 3=Area, 255=N/A.
	Primitive int
	// RecordVersion is the RVER carried by the feature record after all
	// updates have been applied.
	RecordVersion int
	// Geometry is the spatial representation of the feature.
	Geometry Geometry
	// Attributes maps attribute acronyms to decoded values. Common
	// keys: DRVAL1, VALSOU, COLOUR, OBJNAM.
	Attributes map[string]interface{}
}

// spatialRef is a feature-to-spatial pointer with orientation.
// S-57 §7.6.8: FSPT carries NAME + ORNT + USAG + MASK.
type spatialRef struct {
	RCID        int64 // Spatial record ID
	Orientation int   // 1=Forward, 2=Reverse, 255=Null
	Usage       int   // 1=Exterior, 2=Interior, 3=Exterior truncated
	Mask        int   // 1=Mask, 2=Show, 255=Null
}

// featureRecord is a feature record before geometry construction.
// Updates merge into these; Features are built from them afterwards.
type featureRecord struct {
	FOID          FOID
	ObjectClass   int                    // OBJL code
	GeomPrim      int                    // PRIM: 1=Point, 2=Line, 3=Area, 255=N/A
	Group         int                    // GRUP
	RecordVersion int                    // RVER
	UpdateInstr   int                    // RUIN
	Attributes    map[string]interface{} // Decoded ATTF pairs
	SpatialRefs   []spatialRef           // FSPT pointers
}

// clone deep-copies a feature record so updates can mutate the copy
// without touching the base cell.
func (f *featureRecord) clone() *featureRecord {
	dup := *f
	dup.Attributes = make(map[string]interface{}, len(f.Attributes))
	for k, v := range f.Attributes {
		dup.Attributes[k] = v
	}
	dup.SpatialRefs = make([]spatialRef, len(f.SpatialRefs))
	copy(dup.SpatialRefs, f.SpatialRefs)
	return &dup
}

// parseFeatureRecord extracts feature data from an ISO 8211 record.
// Returns nil when the record is not a feature record.
//
// FRID binary layout per S-57 §7.6.1 (12 bytes):
//
//	RCNM (1 byte)  - record name, 100 = feature record
//	RCID (4 bytes) - record ID (uint32 LE)
//	PRIM (1 byte)  - geometric primitive
//	GRUP (1 byte)  - group code
//	OBJL (2 bytes) - object class code (uint16 LE)
//	RVER (2 bytes) - record version (uint16 LE)
//	RUIN (1 byte)  - update instruction
func parseFeatureRecord(record *iso8211.DataRecord, cat *Catalog, col *diag.Collector) *featureRecord {
	fridData, hasFRID := record.Fields["FRID"]
	if !hasFRID {
		return nil
	}
	if len(fridData) < 12 {
		col.Warn(diag.CodeCountMismatch,
			"FRID field is %d bytes, want 12: record skipped", len(fridData))
		return nil
	}
	if fridData[0] != 100 {
		return nil
	}

	rec := &featureRecord{
		GeomPrim:      int(fridData[5]),
		Group:         int(fridData[6]),
		ObjectClass:   int(binary.LittleEndian.Uint16(fridData[7:9])),
		RecordVersion: int(binary.LittleEndian.Uint16(fridData[9:11])),
		UpdateInstr:   int(fridData[11]),
		Attributes:    make(map[string]interface{}),
	}

	// FOID per S-57 §7.6.2: AGEN(2) + FIDN(4) + FIDS(2).
	if foidData, ok := record.Fields["FOID"]; ok && len(foidData) >= 8 {
		rec.FOID = FOID{
			AGEN: binary.LittleEndian.Uint16(foidData[0:2]),
			FIDN: binary.LittleEndian.Uint32(foidData[2:6]),
			FIDS: binary.LittleEndian.Uint16(foidData[6:8]),
		}
	} else {
		col.Warn(diag.CodeEmptyRequiredField,
			"feature record (OBJL=%d) has no usable FOID field", rec.ObjectClass)
	}

	if attfData, ok := record.Fields["ATTF"]; ok {
		rec.Attributes = parseAttributes(attfData, cat, col)
	}
	if fsptData, ok := record.Fields["FSPT"]; ok {
		rec.SpatialRefs = parseSpatialPointers(fsptData, col)
	}

	return rec
}

// parseAttributes decodes the ATTF field: repeated
// [ATTL (2 bytes LE), ATVL (bytes until 0x1F)] groups.
// S-57 Appendix A Chapter 2 defines the attribute catalogue.
func parseAttributes(data []byte, cat *Catalog, col *diag.Collector) map[string]interface{} {
	attributes := make(map[string]interface{})

	offset := 0
	for offset < len(data) {
		if offset+2 > len(data) {
			col.Warn(diag.CodeSubfieldParse,
				"ATTF field ends mid-attribute with %d trailing bytes", len(data)-offset)
			break
		}
		attrCode := binary.LittleEndian.Uint16(data[offset : offset+2])
		offset += 2

		valueEnd := offset
		for valueEnd < len(data) && data[valueEnd] != iso8211.UnitTerminator {
			valueEnd++
		}

		// An empty value is a present-but-empty attribute, which is
		// distinct from the attribute being absent.
		attributes[cat.Attribute(int(attrCode))] = string(data[offset:valueEnd])

		offset = valueEnd + 1 // skip the unit terminator
	}

	return attributes
}

// parseSpatialPointers decodes the FSPT field, a repeating group of
// fixed 8-byte entries per S-57 §7.6.8:
//
//	NAME_RCNM (1 byte)  - target record type
//	NAME_RCID (4 bytes) - target record ID (uint32 LE)
//	ORNT (1 byte)       - orientation
//	USAG (1 byte)       - usage indicator
//	MASK (1 byte)       - masking indicator
func parseSpatialPointers(data []byte, col *diag.Collector) []spatialRef {
	if rem := len(data) % 8; rem != 0 {
		col.Warn(diag.CodeCountMismatch,
			"FSPT field is %d bytes, not a multiple of 8: %d trailing bytes ignored",
			len(data), rem)
	}

	refs := make([]spatialRef, 0, len(data)/8)
	for i := 0; i+8 <= len(data); i += 8 {
		refs = append(refs, spatialRef{
			RCID:        int64(binary.LittleEndian.Uint32(data[i+1 : i+5])),
			Orientation: int(data[i+5]),
			Usage:       int(data[i+6]),
			Mask:        int(data[i+7]),
		})
	}
	return refs
}
