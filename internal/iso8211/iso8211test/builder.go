// Package iso8211test builds syntactically valid ISO 8211 byte buffers for
// tests. It is the inverse of the reader for the subset of the structure
// the tests exercise: fixed directory widths (tag 4, length 5, position 5)
// as used by S-57 datasets.
package iso8211test

import (
	"bytes"
	"fmt"
)

const (
	fieldTerminator = 0x1E
	leaderSize      = 24

	sizeFieldLength   = 5
	sizeFieldPosition = 5
	sizeFieldTag      = 4
)

// Field is one (tag, content) pair for a synthetic record. Content is the
// raw field data without the field terminator.
type Field struct {
	Tag  string
	Data []byte
}

// Record builds one data record (leader identifier 'D').
func Record(fields ...Field) []byte {
	return record('D', fields)
}

// DDR builds a minimal data descriptive record (leader identifier 'L'). The
// reader only decodes the DDR structurally, so placeholder content suffices.
func DDR() []byte {
	return record('L', []Field{{Tag: "0000", Data: []byte("0;&")}})
}

// File concatenates a DDR and the given data records into one buffer, the
// shape of a complete S-57 cell or update file.
func File(records ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write(DDR())
	for _, r := range records {
		buf.Write(r)
	}
	return buf.Bytes()
}

func record(identifier byte, fields []Field) []byte {
	entryWidth := sizeFieldTag + sizeFieldLength + sizeFieldPosition
	dirLen := len(fields)*entryWidth + 1 // +1 directory terminator
	baseAddress := leaderSize + dirLen

	dataLen := 0
	for _, f := range fields {
		dataLen += len(f.Data) + 1 // +1 field terminator
	}
	recordLength := baseAddress + dataLen

	var buf bytes.Buffer

	// Leader: fixed-width ASCII numerics per ISO 8211 §6.1.2.
	fmt.Fprintf(&buf, "%05d", recordLength)
	buf.WriteByte('3')        // interchange level
	buf.WriteByte(identifier) // leader identifier
	buf.WriteByte(' ')        // inline code extension
	buf.WriteByte('1')        // version
	buf.WriteByte(' ')        // application indicator
	buf.WriteString("  ")     // field control length (data records: blank)
	fmt.Fprintf(&buf, "%05d", baseAddress)
	buf.WriteString(" ! ") // extended character set
	fmt.Fprintf(&buf, "%d%d0%d", sizeFieldLength, sizeFieldPosition, sizeFieldTag)

	// Directory.
	pos := 0
	for _, f := range fields {
		fmt.Fprintf(&buf, "%-*s", sizeFieldTag, f.Tag)
		fmt.Fprintf(&buf, "%0*d", sizeFieldLength, len(f.Data)+1)
		fmt.Fprintf(&buf, "%0*d", sizeFieldPosition, pos)
		pos += len(f.Data) + 1
	}
	buf.WriteByte(fieldTerminator)

	// Field data area.
	for _, f := range fields {
		buf.Write(f.Data)
		buf.WriteByte(fieldTerminator)
	}

	return buf.Bytes()
}
