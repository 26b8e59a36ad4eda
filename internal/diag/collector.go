// Package diag implements the diagnostic event collector shared by the
// structural reader, the feature decoder and the update processor.
//
// Every parse run owns its own Collector instance; there is no process-wide
// state. This keeps independent cells fully isolated so they can be decoded
// in parallel without coordination.
package diag

import (
	"fmt"
)

// Severity classifies a diagnostic event.
type Severity int

const (
	// SeverityInfo is informational, no data was affected.
	SeverityInfo Severity = iota

	// SeverityWarning indicates an anomaly that was recovered in place.
	SeverityWarning

	// SeverityError indicates data was lost or skipped. In strict mode an
	// error-severity event aborts the run.
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Stable warning codes emitted by the reader, decoder and update processor.
//
// Codes are part of the public contract: callers filter diagnostics by code
// and tests assert on them, so they never change meaning between releases.
const (
	// CodeLeaderTruncated: fewer than 24 bytes remained where a record
	// leader was expected, or the leader numerics were unparseable.
	CodeLeaderTruncated = "LEADER_TRUNCATED"

	// CodeDirEntryLenMismatch: a directory entry's declared field length
	// disagrees with the scanned field terminator position.
	CodeDirEntryLenMismatch = "DIR_ENTRY_LEN_MISMATCH"

	// CodeMissingFieldTerm: a field had no terminator before the end of
	// the record; the remainder was taken as field content.
	CodeMissingFieldTerm = "MISSING_FIELD_TERM"

	// CodeSubfieldParse: a stray or doubled subfield delimiter was
	// recovered as an empty subfield.
	CodeSubfieldParse = "SUBFIELD_PARSE"

	// CodeDanglingPointer: a spatial pointer references a record that does
	// not exist; the feature is kept with partial geometry.
	CodeDanglingPointer = "DANGLING_POINTER"

	// CodeCountMismatch: a declared coordinate count disagrees with the
	// supplied bytes; the smaller count is used.
	CodeCountMismatch = "COUNT_MISMATCH"

	// CodeEmptyRequiredField: a required field (e.g. DSPM) is absent or
	// empty; documented defaults were substituted.
	CodeEmptyRequiredField = "EMPTY_REQUIRED_FIELD"

	// CodeInvalidRUIN: an update record carried an unknown update
	// instruction; that single instruction was skipped.
	CodeInvalidRUIN = "INVALID_RUIN"

	// CodeUpdateGap: the update sequence has a missing number; application
	// halted, prior updates retained.
	CodeUpdateGap = "UPDATE_GAP"

	// CodeRVERMismatch: an update instruction carried a non-monotonic
	// record version.
	CodeRVERMismatch = "RVER_MISMATCH"

	// CodeUpdateTargetMissing: a delete or modify instruction referenced a
	// feature that is not present in the running set.
	CodeUpdateTargetMissing = "UPDATE_TARGET_MISSING"

	// CodeUpdateDuplicateFOID: an insert instruction referenced a FOID
	// already present; the existing feature was kept.
	CodeUpdateDuplicateFOID = "UPDATE_DUPLICATE_FOID"

	// CodeInvalidGeometry: a constructed geometry failed coordinate
	// validation and the feature was dropped.
	CodeInvalidGeometry = "INVALID_GEOMETRY"
)

// Event is one diagnostic emitted during a parse or update run.
//
// Events are append-only: producers emit them, consumers read them, nobody
// mutates them afterwards.
type Event struct {
	Code     string
	Message  string
	Severity Severity

	// Record is the zero-based index of the logical record the event refers
	// to, or -1 when the event is not tied to a record.
	Record int

	// Offset is the byte offset into the input buffer, or -1.
	Offset int
}

func (e Event) String() string {
	if e.Record >= 0 {
		return fmt.Sprintf("[%s] %s (record %d): %s", e.Severity, e.Code, e.Record, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// maxEvents caps collector growth so pathological inputs with repeating
// corruption cannot exhaust memory. Overflow is counted, not silently lost.
const maxEvents = 1024

// Collector accumulates diagnostic events in emission order.
//
// A Collector is not safe for concurrent use; each parse run gets its own.
type Collector struct {
	strict  bool
	events  []Event
	errors  int
	dropped int

	// current locator, set via At and cleared via ClearLocation
	record int
	offset int
}

// NewCollector returns an empty collector. In strict mode, Error returns a
// *StrictError that callers must propagate.
func NewCollector(strict bool) *Collector {
	return &Collector{strict: strict, record: -1, offset: -1}
}

// Strict reports whether error-severity events escalate.
func (c *Collector) Strict() bool {
	return c.strict
}

// At sets the record/offset locator attached to subsequent events.
func (c *Collector) At(record, offset int) {
	c.record = record
	c.offset = offset
}

// ClearLocation detaches subsequent events from any record.
func (c *Collector) ClearLocation() {
	c.record = -1
	c.offset = -1
}

func (c *Collector) emit(sev Severity, code, format string, args ...interface{}) Event {
	ev := Event{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Record:   c.record,
		Offset:   c.offset,
	}
	if len(c.events) < maxEvents {
		c.events = append(c.events, ev)
		return ev
	}
	if ev.Severity != SeverityError {
		c.dropped++
		return ev
	}
	// An error-severity event must survive the cap: in strict mode it is
	// the triggering event the returned StrictError has to carry. Evict
	// the newest non-error event to make room.
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Severity != SeverityError {
			copy(c.events[i:], c.events[i+1:])
			c.events[len(c.events)-1] = ev
			c.dropped++
			return ev
		}
	}
	c.events = append(c.events, ev)
	return ev
}

// Info records an informational event.
func (c *Collector) Info(code, format string, args ...interface{}) {
	c.emit(SeverityInfo, code, format, args...)
}

// Warn records a recovered anomaly.
func (c *Collector) Warn(code, format string, args ...interface{}) {
	c.emit(SeverityWarning, code, format, args...)
}

// Error records an error-severity event. In strict mode it returns a
// *StrictError carrying every event collected so far, including the
// triggering one; otherwise it returns nil and processing continues.
func (c *Collector) Error(code, format string, args ...interface{}) error {
	c.emit(SeverityError, code, format, args...)
	c.errors++
	if c.strict {
		return &StrictError{Events: c.Events()}
	}
	return nil
}

// HasErrors reports whether any error-severity event was recorded.
func (c *Collector) HasErrors() bool {
	return c.errors > 0
}

// ErrorCount returns the number of error-severity events recorded.
func (c *Collector) ErrorCount() int {
	return c.errors
}

// Dropped returns how many events were discarded after the cap was reached.
func (c *Collector) Dropped() int {
	return c.dropped
}

// Len returns the number of retained events.
func (c *Collector) Len() int {
	return len(c.events)
}

// Events returns the ordered event log as a copy; mutating the result does
// not affect the collector.
func (c *Collector) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// StrictError is returned when strict mode escalates an error-severity
// event. It carries the complete warning history up to and including the
// triggering event so nothing collected beforehand is lost.
type StrictError struct {
	Events []Event
}

func (e *StrictError) Error() string {
	if len(e.Events) == 0 {
		return "strict mode failure"
	}
	last := e.Events[len(e.Events)-1]
	return fmt.Sprintf("strict mode failure: %s (%d prior events)", last, len(e.Events)-1)
}
