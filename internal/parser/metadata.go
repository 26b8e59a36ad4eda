package parser

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/marinekit/s57/internal/iso8211"
)

// datasetMetadata holds the contents of the DSID (Data Set
// Identification) field, the general information record that opens
// every S-57 dataset.
//
// Reference: S-57 Part 3 §7.3.1.1, table 7.4.
type datasetMetadata struct {
	rcnm int    // Record name, 10 = dataset general information
	rcid int64  // Record identification number
	expp int    // Exchange purpose: 1=New, 2=Revision
	intu int    // Intended usage (navigational purpose band)
	dsnm string // Data set name, the cell identifier (e.g. "US5MA22M")
	edtn string // Edition number
	updn string // Update number applied to this dataset
	uadt string // Update application date, YYYYMMDD
	isdt string // Issue date, YYYYMMDD
	sted string // S-57 standard edition, e.g. "03.1"
	prsp int    // Product specification: 1=ENC, 2=ODD
	psdn string // Product specification description
	pred string // Product specification edition
	prof int    // Application profile: 1=EN, 2=ER, 3=DD
	agen int    // Producing agency code
	comt string // Comment
}

func (m *datasetMetadata) DatasetName() string  { return m.dsnm }
func (m *datasetMetadata) Edition() string      { return m.edtn }
func (m *datasetMetadata) UpdateNumber() string { return m.updn }
func (m *datasetMetadata) UpdateDate() string   { return m.uadt }
func (m *datasetMetadata) IssueDate() string    { return m.isdt }
func (m *datasetMetadata) S57Edition() string   { return m.sted }
func (m *datasetMetadata) ProducingAgency() int { return m.agen }
func (m *datasetMetadata) Comment() string      { return m.comt }

// updateSequence returns the UPDN field as an integer. ok is false when
// the field is absent or not numeric.
func (m *datasetMetadata) updateSequence() (int, bool) {
	if m == nil || m.updn == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(m.updn))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExchangePurpose returns the EXPP field as a human-readable string.
func (m *datasetMetadata) ExchangePurpose() string {
	switch m.expp {
	case 1:
		return "New"
	case 2:
		return "Revision"
	default:
		return "Unknown"
	}
}

// ProductSpecification returns the PRSP field as a human-readable string.
func (m *datasetMetadata) ProductSpecification() string {
	switch m.prsp {
	case 1:
		return "ENC"
	case 2:
		return "ODD"
	default:
		return "Unknown"
	}
}

// ApplicationProfile returns the PROF field as a human-readable string.
func (m *datasetMetadata) ApplicationProfile() string {
	switch m.prof {
	case 1:
		return "EN" // ENC new edition
	case 2:
		return "ER" // ENC revision
	case 3:
		return "DD" // Data dictionary
	default:
		return "Unknown"
	}
}

// extractDSID returns the parsed DSID field from the first record that
// carries one, or nil when the dataset has no DSID record.
func extractDSID(records []*iso8211.DataRecord) *datasetMetadata {
	for _, record := range records {
		if dsidData, ok := record.Fields["DSID"]; ok {
			return parseDSID(dsidData)
		}
	}
	return nil
}

// parseDSID decodes the DSID field's mixed binary/ASCII layout.
//
// Fixed-width binary subfields (RCNM, RCID, EXPP, INTU) come first at
// known offsets. Variable-length ASCII subfields follow, each
// terminated by 0x1F, except UADT, ISDT and STED which are fixed-width
// ASCII per their A(8)/R(4) formats.
//
// Reference: S-57 Part 3 §7.3.1.1, table 7.4.
func parseDSID(data []byte) *datasetMetadata {
	dsid := &datasetMetadata{}

	// RCNM(1) + RCID(4) + EXPP(1) + INTU(1)
	if len(data) < 7 {
		return dsid
	}

	offset := 0
	dsid.rcnm = int(data[offset])
	offset++
	dsid.rcid = int64(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	dsid.expp = int(data[offset])
	offset++
	dsid.intu = int(data[offset])
	offset++

	nextASCII := func() string {
		if offset >= len(data) {
			return ""
		}
		start := offset
		for offset < len(data) && data[offset] != iso8211.UnitTerminator {
			offset++
		}
		s := string(data[start:offset])
		if offset < len(data) {
			offset++ // skip the unit terminator
		}
		return s
	}
	fixedASCII := func(n int) string {
		if offset+n > len(data) {
			return ""
		}
		s := strings.TrimRight(string(data[offset:offset+n]), "\x00 ")
		offset += n
		return s
	}

	dsid.dsnm = nextASCII()
	dsid.edtn = nextASCII()
	dsid.updn = nextASCII()
	dsid.uadt = fixedASCII(8)
	dsid.isdt = fixedASCII(8)
	dsid.sted = fixedASCII(4)

	if offset < len(data) {
		dsid.prsp = int(data[offset])
		offset++
	}
	dsid.psdn = nextASCII()
	dsid.pred = nextASCII()
	if offset < len(data) {
		dsid.prof = int(data[offset])
		offset++
	}
	if offset+2 <= len(data) {
		dsid.agen = int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2
	}
	dsid.comt = nextASCII()

	return dsid
}

// clone returns a deep copy, for update application on an immutable base.
func (m *datasetMetadata) clone() *datasetMetadata {
	if m == nil {
		return nil
	}
	dup := *m
	return &dup
}
