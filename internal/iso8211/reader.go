package iso8211

import (
	"io"

	"github.com/marinekit/s57/internal/diag"
)

// Options configures a Reader.
type Options struct {
	// Strict escalates error-severity anomalies: Next returns a
	// *diag.StrictError carrying the full event history instead of
	// recovering. Default is lenient recovery.
	Strict bool

	// Collector receives diagnostic events. If nil the reader creates a
	// private one, exposed via Events.
	Collector *diag.Collector
}

// Reader decodes logical records from an in-memory buffer.
//
// The record sequence is lazy: each Next call decodes exactly one record.
// The sequence is finite and restartable from the start of the buffer only
// (Reset); it is not resumable mid-stream. A Reader performs no I/O and is
// not safe for concurrent use.
type Reader struct {
	data      []byte
	pos       int
	recordIdx int
	strict    bool
	collector *diag.Collector
	ddr       *DataRecord
	done      bool
}

// Record parsing walks a small state machine. Aborted is reachable from any
// state on leader truncation.
type parseState int

const (
	stateReadLeader parseState = iota
	stateReadDirectory
	stateReadFieldData
	stateRecordComplete
	stateAborted
)

// NewReader returns a reader positioned at the start of data.
func NewReader(data []byte, opts Options) *Reader {
	collector := opts.Collector
	if collector == nil {
		collector = diag.NewCollector(opts.Strict)
	}
	return &Reader{
		data:      data,
		strict:    opts.Strict,
		collector: collector,
	}
}

// Events returns the ordered diagnostic log accumulated so far.
func (r *Reader) Events() []diag.Event {
	return r.collector.Events()
}

// Collector returns the reader's diagnostic collector.
func (r *Reader) Collector() *diag.Collector {
	return r.collector
}

// DDR returns the data descriptive record (the first record in the buffer,
// leader identifier 'L'), or nil if none has been read yet.
func (r *Reader) DDR() *DataRecord {
	return r.ddr
}

// Reset restarts the sequence from the beginning of the buffer. The
// diagnostic log is retained; a fresh log needs a fresh Reader.
func (r *Reader) Reset() {
	r.pos = 0
	r.recordIdx = 0
	r.ddr = nil
	r.done = false
}

// Next decodes and returns the next data record.
//
// It returns io.EOF at the end of the buffer. Any other non-nil error is a
// *diag.StrictError and only occurs in strict mode; the error carries all
// events accumulated so far, including records decoded prior to the failure.
func (r *Reader) Next() (*DataRecord, error) {
	for {
		if r.done || r.pos >= len(r.data) {
			r.done = true
			return nil, io.EOF
		}

		rec, err := r.parseRecord()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue // record aborted and position resynced
		}

		// The DDR leads the file; it is decoded structurally like any
		// record but not surfaced in the data record sequence.
		if rec.Leader.Identifier == 'L' && r.ddr == nil {
			r.ddr = rec
			continue
		}
		return rec, nil
	}
}

// ReadAll drains the sequence. In strict mode it returns the records decoded
// before the failure alongside the error.
func (r *Reader) ReadAll() ([]*DataRecord, error) {
	var records []*DataRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// parseRecord decodes one record at r.pos. It returns (nil, nil) when the
// record was aborted and the reader resynced (or reached the end).
func (r *Reader) parseRecord() (*DataRecord, error) {
	rec := &DataRecord{Fields: make(map[string][]byte)}
	recordStart := r.pos
	recordEnd := 0
	state := stateReadLeader

	r.collector.At(r.recordIdx, recordStart)
	defer r.collector.ClearLocation()

	for {
		switch state {
		case stateReadLeader:
			if len(r.data)-r.pos < LeaderSize {
				// The truncated remainder cannot start a new record.
				err := r.collector.Error(diag.CodeLeaderTruncated,
					"%d bytes remain, leader needs %d", len(r.data)-r.pos, LeaderSize)
				r.done = true
				if err != nil {
					return nil, err
				}
				state = stateAborted
				continue
			}

			leader, ok := parseLeader(r.data[r.pos : r.pos+LeaderSize])
			if !ok {
				err := r.collector.Error(diag.CodeLeaderTruncated,
					"unparseable leader at offset %d", r.pos)
				r.resync(r.pos + 1)
				if err != nil {
					return nil, err
				}
				state = stateAborted
				continue
			}

			rec.Leader = leader
			recordEnd = recordStart + leader.RecordLength
			if recordEnd > len(r.data) {
				// Declared length runs past the buffer; the record region
				// is clamped and field scans stop at the buffer end.
				r.collector.Warn(diag.CodeLeaderTruncated,
					"record declares %d bytes, %d remain", leader.RecordLength, len(r.data)-recordStart)
				recordEnd = len(r.data)
			}
			state = stateReadDirectory

		case stateReadDirectory:
			rec.Directory = r.parseDirectory(rec.Leader, recordStart, recordEnd)
			state = stateReadFieldData

		case stateReadFieldData:
			r.parseFields(rec, recordStart, recordEnd)
			state = stateRecordComplete

		case stateRecordComplete:
			r.pos = recordEnd
			r.recordIdx++
			return rec, nil

		case stateAborted:
			r.recordIdx++
			return nil, nil
		}
	}
}

// parseLeader decodes the fixed-width ASCII leader subfields. ok is false
// when the numeric subfields do not parse or are structurally impossible.
func parseLeader(b []byte) (Leader, bool) {
	recordLength, ok := atoiFixed(b[0:5])
	if !ok || recordLength < LeaderSize {
		return Leader{}, false
	}
	fieldControlLen, _ := atoiFixed(b[10:12])
	baseAddress, ok := atoiFixed(b[12:17])
	if !ok || baseAddress < LeaderSize || baseAddress > recordLength {
		return Leader{}, false
	}
	szLen, ok1 := digit(b[20])
	szPos, ok2 := digit(b[21])
	szTag, ok3 := digit(b[23])
	if !ok1 || !ok2 || !ok3 || szLen == 0 || szPos == 0 || szTag == 0 {
		return Leader{}, false
	}

	leader := Leader{
		RecordLength:      recordLength,
		InterchangeLevel:  b[5],
		Identifier:        b[6],
		InlineCode:        b[7],
		Version:           b[8],
		AppIndicator:      b[9],
		FieldControlLen:   fieldControlLen,
		BaseAddress:       baseAddress,
		SizeFieldLength:   szLen,
		SizeFieldPosition: szPos,
		SizeFieldTag:      szTag,
	}
	copy(leader.ExtendedCharset[:], b[17:20])
	return leader, true
}

// parseDirectory reads directory entries until the field terminator or the
// start of the field data area, whichever comes first.
func (r *Reader) parseDirectory(leader Leader, recordStart, recordEnd int) []DirEntry {
	var entries []DirEntry
	entryWidth := leader.SizeFieldTag + leader.SizeFieldLength + leader.SizeFieldPosition
	dirEnd := recordStart + leader.BaseAddress
	if dirEnd > recordEnd {
		dirEnd = recordEnd
	}

	i := recordStart + LeaderSize
	for i < dirEnd && r.data[i] != FieldTerminator {
		if i+entryWidth > dirEnd {
			r.collector.Warn(diag.CodeDirEntryLenMismatch,
				"directory truncated: %d bytes remain, entry needs %d", dirEnd-i, entryWidth)
			break
		}

		tag := string(r.data[i : i+leader.SizeFieldTag])
		length, okLen := atoiFixed(r.data[i+leader.SizeFieldTag : i+leader.SizeFieldTag+leader.SizeFieldLength])
		position, okPos := atoiFixed(r.data[i+leader.SizeFieldTag+leader.SizeFieldLength : i+entryWidth])
		if !okLen || !okPos {
			r.collector.Warn(diag.CodeDirEntryLenMismatch,
				"directory entry %q has non-numeric length/position", tag)
			break
		}

		entries = append(entries, DirEntry{Tag: tag, Length: length, Position: position})
		i += entryWidth
	}
	return entries
}

// parseFields locates each directory entry's data by scanning for the
// structural terminator rather than trusting the declared length. The
// scanned boundary always wins on disagreement and never crosses recordEnd.
func (r *Reader) parseFields(rec *DataRecord, recordStart, recordEnd int) {
	base := recordStart + rec.Leader.BaseAddress

	for _, entry := range rec.Directory {
		start := base + entry.Position
		if start >= recordEnd {
			r.collector.Warn(diag.CodeDirEntryLenMismatch,
				"field %q position %d is outside the record", entry.Tag, entry.Position)
			continue
		}

		// Scan for the field terminator from the declared start.
		end := start
		for end < recordEnd && r.data[end] != FieldTerminator {
			end++
		}

		if end == recordEnd {
			// No terminator before the record boundary: the remainder is
			// the field's content.
			r.collector.Warn(diag.CodeMissingFieldTerm,
				"field %q has no terminator before record end", entry.Tag)
		} else if scanned := end - start + 1; scanned != entry.Length {
			r.collector.Warn(diag.CodeDirEntryLenMismatch,
				"field %q declares %d bytes, terminator found at %d", entry.Tag, entry.Length, scanned)
		}

		content := r.data[start:end]
		subfields, irregular := splitSubfields(content)
		for n := 0; n < irregular; n++ {
			r.collector.Warn(diag.CodeSubfieldParse,
				"field %q: stray subfield delimiter recovered as empty subfield", entry.Tag)
		}

		field := Field{Tag: entry.Tag, Data: content, Subfields: subfields}
		rec.FieldList = append(rec.FieldList, field)
		if _, exists := rec.Fields[entry.Tag]; !exists {
			rec.Fields[entry.Tag] = content
		}
	}
}

// resync advances to the next plausible leader at or after from, or to the
// end of the buffer when none exists.
func (r *Reader) resync(from int) {
	for i := from; i+LeaderSize <= len(r.data); i++ {
		if _, ok := parseLeader(r.data[i : i+LeaderSize]); ok {
			r.pos = i
			return
		}
	}
	r.pos = len(r.data)
	r.done = true
}

// atoiFixed parses a fixed-width ASCII decimal. Space padding is accepted;
// anything else fails.
func atoiFixed(b []byte) (int, bool) {
	n := 0
	seen := false
	for _, c := range b {
		if c == ' ' && !seen {
			continue
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		seen = true
	}
	return n, seen
}

func digit(c byte) (int, bool) {
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}
