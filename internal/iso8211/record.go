// Package iso8211 decodes the ISO/IEC 8211 binary interchange structure used
// as the container format for IHO S-57 datasets.
//
// A file is a sequence of logical records. Each record is a fixed 24-byte
// leader, a directory of field descriptors, and a field data area. Fields
// are terminated by 0x1E and decompose into subfields separated by 0x1F.
//
// The reader is byte-exact and never fails on malformed input: every anomaly
// is recovered per a fixed policy and reported through a diag.Collector.
// Only strict mode turns error-severity anomalies into a returned error.
package iso8211

import (
	"bytes"
)

// Structural delimiter bytes defined by ISO 8211.
const (
	// FieldTerminator ends a field (and the directory).
	FieldTerminator = 0x1E

	// UnitTerminator separates subfields within a field.
	UnitTerminator = 0x1F
)

// LeaderSize is the fixed size of a record leader in bytes.
const LeaderSize = 24

// Leader is the decoded 24-byte record header.
//
// Reference: ISO/IEC 8211 §6.1.2; S-57 Part 3 §2.4 constrains the values
// used by ENC datasets (tag size 4, level 3 binary implementation).
type Leader struct {
	RecordLength     int  // total record length including the leader
	InterchangeLevel byte // '1'..'3'
	Identifier       byte // 'L' for the DDR, 'D' or ' ' for data records
	InlineCode       byte
	Version          byte
	AppIndicator     byte
	FieldControlLen  int // DDR only
	BaseAddress      int // offset of the field data area within the record
	ExtendedCharset  [3]byte

	// Directory entry widths declared by the leader.
	SizeFieldLength   int
	SizeFieldPosition int
	SizeFieldTag      int
}

// DirEntry is one directory descriptor: a field tag plus the declared
// length and position of its data within the field area.
type DirEntry struct {
	Tag      string
	Length   int // declared length including the field terminator
	Position int // offset relative to the base address
}

// Field is a decoded field: its tag, raw content (terminator stripped) and
// the subfield decomposition.
type Field struct {
	Tag  string
	Data []byte

	// Subfields is Data split on the unit terminator. A field with no unit
	// terminator has exactly one subfield covering all of Data. An empty
	// subfield is valid and distinct from a missing one.
	Subfields [][]byte
}

// DataRecord is one decoded logical record.
type DataRecord struct {
	Leader    Leader
	Directory []DirEntry

	// Fields maps tag to raw field content for direct lookup.
	// When a tag repeats, the first occurrence wins.
	Fields map[string][]byte

	// FieldList preserves field order, including repeated tags.
	FieldList []Field
}

// Field returns the ordered subfields of the named field, or nil if the
// record has no such field.
func (r *DataRecord) Field(tag string) [][]byte {
	for i := range r.FieldList {
		if r.FieldList[i].Tag == tag {
			return r.FieldList[i].Subfields
		}
	}
	return nil
}

// splitSubfields splits field content on the unit terminator.
//
// A leading delimiter or two consecutive delimiters yield an empty
// subfield; irregular reports how many such recoveries happened so the
// caller can emit SUBFIELD_PARSE without aborting the field.
func splitSubfields(data []byte) (subfields [][]byte, irregular int) {
	if len(data) == 0 {
		return [][]byte{{}}, 0
	}
	parts := bytes.Split(data, []byte{UnitTerminator})
	if data[0] == UnitTerminator {
		irregular++
	}
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 0 && i < len(parts)-1 {
			// doubled delimiter inside the field
			irregular++
		}
	}
	return parts, irregular
}
