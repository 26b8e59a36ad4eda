package s57

import (
	"fmt"
	"strings"

	"github.com/marinekit/s57/internal/diag"
)

// Severity classifies a diagnostic warning.
type Severity int

const (
	// SeverityInfo is informational, no data was affected.
	SeverityInfo Severity = iota

	// SeverityWarning indicates an anomaly that was recovered in place.
	SeverityWarning

	// SeverityError indicates data was lost or skipped. In strict mode
	// these abort the decode.
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

// Warning codes emitted by the decoder. Codes are stable across
// releases; match on these rather than on message text.
const (
	// WarnLeaderTruncated - a record leader was shorter than 24 bytes
	// or declared more data than the buffer holds.
	WarnLeaderTruncated = "LEADER_TRUNCATED"

	// WarnDirEntryLenMismatch - a directory entry's declared field
	// length disagreed with the field area.
	WarnDirEntryLenMismatch = "DIR_ENTRY_LEN_MISMATCH"

	// WarnMissingFieldTerm - a field lacked its 0x1E terminator.
	WarnMissingFieldTerm = "MISSING_FIELD_TERM"

	// WarnSubfieldParse - a subfield could not be decoded; the
	// remainder of the field was skipped.
	WarnSubfieldParse = "SUBFIELD_PARSE"

	// WarnDanglingPointer - a feature referenced a spatial record that
	// does not exist.
	WarnDanglingPointer = "DANGLING_POINTER"

	// WarnCountMismatch - a repeating field's byte length was not a
	// multiple of its stride; complete tuples were kept.
	WarnCountMismatch = "COUNT_MISMATCH"

	// WarnEmptyRequiredField - a mandatory field or record (FOID,
	// DSPM) was absent; defaults were substituted.
	WarnEmptyRequiredField = "EMPTY_REQUIRED_FIELD"

	// WarnInvalidRUIN - an update instruction carried an unknown
	// RUIN code and was skipped.
	WarnInvalidRUIN = "INVALID_RUIN"

	// WarnUpdateGap - an update buffer did not carry the expected
	// sequence number; application halted before it.
	WarnUpdateGap = "UPDATE_GAP"

	// WarnRVERMismatch - an update instruction's record version did
	// not continue the target's current version.
	WarnRVERMismatch = "RVER_MISMATCH"

	// WarnUpdateTargetMissing - a delete or modify instruction named a
	// record the cell does not contain.
	WarnUpdateTargetMissing = "UPDATE_TARGET_MISSING"

	// WarnUpdateDuplicateFOID - an insert instruction named a FOID the
	// cell already contains; the existing feature was kept.
	WarnUpdateDuplicateFOID = "UPDATE_DUPLICATE_FOID"

	// WarnInvalidGeometry - a constructed geometry failed coordinate
	// validation and the feature was dropped.
	WarnInvalidGeometry = "INVALID_GEOMETRY"
)

// Warning is one diagnostic event reported during decoding or update
// application.
type Warning struct {
	// Code is a stable machine-readable identifier, one of the Warn*
	// constants.
	Code string

	// Message is a human-readable description with record context.
	Message string

	// Severity classifies the event.
	Severity Severity

	// Record is the zero-based index of the data record the event was
	// reported against, or -1 when no record applies.
	Record int

	// Offset is the byte offset within the dataset buffer, or -1.
	Offset int
}

// String formats the warning for logs.
func (w Warning) String() string {
	if w.Record >= 0 {
		return fmt.Sprintf("[%s] %s (record %d): %s", w.Severity, w.Code, w.Record, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message)
}

// eventsToWarnings converts collector events to the public form.
func eventsToWarnings(events []diag.Event) []Warning {
	warnings := make([]Warning, len(events))
	for i, e := range events {
		warnings[i] = Warning{
			Code:     e.Code,
			Message:  e.Message,
			Severity: Severity(e.Severity),
			Record:   e.Record,
			Offset:   e.Offset,
		}
	}
	return warnings
}

// StrictModeError aborts decoding in strict mode. It carries the full
// diagnostic history up to and including the event that triggered it,
// so a failed strict decode loses no context compared to a lenient
// one.
type StrictModeError struct {
	Warnings []Warning
}

// Error summarizes the triggering event and the history size.
func (e *StrictModeError) Error() string {
	if len(e.Warnings) == 0 {
		return "strict mode: decode aborted"
	}
	var last Warning
	for _, w := range e.Warnings {
		if w.Severity == SeverityError {
			last = w
		}
	}
	if last.Code == "" {
		last = e.Warnings[len(e.Warnings)-1]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "strict mode: %s", last)
	if n := len(e.Warnings); n > 1 {
		fmt.Fprintf(&b, " (%d events total)", n)
	}
	return b.String()
}
