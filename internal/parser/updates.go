package parser

import (
	"errors"

	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/iso8211"
)

// UpdateInstruction represents the RUIN (Record Update Instruction)
// values. S-57 Part 3 §8.4.2.2 and §8.4.3.2.
type UpdateInstruction int

const (
	UpdateInsert UpdateInstruction = 1
	UpdateDelete UpdateInstruction = 2
	UpdateModify UpdateInstruction = 3
)

// RVERPolicy controls how a non-monotonic record version on a modify
// or delete instruction is handled.
type RVERPolicy int

const (
	// RVERLenient reports the mismatch and applies the instruction
	// anyway. This matches how most viewers treat producer slip-ups.
	RVERLenient RVERPolicy = iota

	// RVERStrict reports the mismatch and skips the instruction, since
	// an out-of-sequence version suggests a missed intermediate state.
	RVERStrict
)

// ErrUpdateGap signals that an update dataset is out of sequence.
// Processing halts at the gap; everything applied before it stands.
var ErrUpdateGap = errors.New("update sequence gap")

// ApplyUpdate applies one update dataset (an ER-profile buffer, e.g. a
// .001 file) to the cell in place. expected is the update number this
// buffer must carry per its DSID; a different number is a sequence gap
// and nothing from the buffer is applied.
//
// The returned error is ErrUpdateGap on a gap, or a *diag.StrictError
// in strict mode. All other anomalies are reported through the
// collector and the remaining instructions still apply.
func ApplyUpdate(cell *Cell, data []byte, expected int, cat *Catalog, col *diag.Collector, opts Options) error {
	reader := iso8211.NewReader(data, iso8211.Options{Strict: opts.Strict, Collector: col})
	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	meta := extractDSID(records)
	if meta == nil {
		col.Warn(diag.CodeEmptyRequiredField,
			"update %d carries no DSID record: sequence not verifiable", expected)
	} else if n, ok := meta.updateSequence(); !ok {
		col.Warn(diag.CodeEmptyRequiredField,
			"update %d carries no usable UPDN value: sequence not verifiable", expected)
	} else if n != expected {
		if err := col.Error(diag.CodeUpdateGap,
			"update sequence gap: expected update %d, got %d", expected, n); err != nil {
			return err
		}
		return ErrUpdateGap
	}

	for _, record := range records {
		if fridData, ok := record.Fields["FRID"]; ok && len(fridData) >= 12 {
			if err := applyFeatureUpdate(cell, record, fridData, cat, col, opts); err != nil {
				return err
			}
			continue
		}
		if vridData, ok := record.Fields["VRID"]; ok && len(vridData) >= 8 {
			if err := applySpatialUpdate(cell, record, vridData, col, opts); err != nil {
				return err
			}
		}
	}

	mergeUpdateMetadata(cell, meta)
	return nil
}

// mergeUpdateMetadata folds the update's DSID into the cell metadata.
// Updates may advance UPDN, UADT and ISDT; EDTN and DSNM never change
// within an edition.
func mergeUpdateMetadata(cell *Cell, meta *datasetMetadata) {
	if meta == nil {
		return
	}
	if cell.metadata == nil {
		cell.metadata = meta.clone()
		return
	}
	if meta.updn != "" {
		cell.metadata.updn = meta.updn
	}
	if meta.uadt != "" {
		cell.metadata.uadt = meta.uadt
	}
	if meta.isdt != "" {
		cell.metadata.isdt = meta.isdt
	}
}

// checkRVER verifies that an instruction's declared record version is
// exactly one past the current one. Reports a mismatch and, under
// RVERStrict, tells the caller to skip the instruction.
func checkRVER(declared, current int, what string, col *diag.Collector, policy RVERPolicy) (apply bool) {
	if declared == current+1 {
		return true
	}
	col.Warn(diag.CodeRVERMismatch,
		"%s declares RVER=%d, have RVER=%d (want %d)", what, declared, current, current+1)
	return policy == RVERLenient
}

// applyFeatureUpdate handles one feature-record instruction.
//
// Semantics per the ER profile (S-57 §8.4.2):
//
//	insert: add the feature; if the FOID already exists the existing
//	        feature is kept and the duplicate reported
//	delete: remove the feature; reported when absent
//	modify: merge supplied attributes and pointers into the existing
//	        feature; reported when absent
func applyFeatureUpdate(cell *Cell, record *iso8211.DataRecord, fridData []byte, cat *Catalog, col *diag.Collector, opts Options) error {
	ruin := UpdateInstruction(fridData[11])

	featureRec := parseFeatureRecord(record, cat, col)
	if featureRec == nil {
		return nil
	}
	foid := featureRec.FOID

	switch ruin {
	case UpdateInsert:
		if _, exists := cell.featuresByFOID[foid]; exists {
			col.Warn(diag.CodeUpdateDuplicateFOID,
				"insert of feature %s which already exists: existing feature kept", foid)
			return nil
		}
		cell.features = append(cell.features, featureRec)
		if !foid.IsZero() {
			cell.featuresByFOID[foid] = featureRec
		}

	case UpdateDelete:
		existing, exists := cell.featuresByFOID[foid]
		if !exists {
			col.Warn(diag.CodeUpdateTargetMissing,
				"delete of absent feature %s", foid)
			return nil
		}
		if !checkRVER(featureRec.RecordVersion, existing.RecordVersion,
			"delete of feature "+foid.String(), col, opts.RVERPolicy) {
			return nil
		}
		delete(cell.featuresByFOID, foid)
		for i, f := range cell.features {
			if f == existing {
				cell.features = append(cell.features[:i], cell.features[i+1:]...)
				break
			}
		}

	case UpdateModify:
		existing, exists := cell.featuresByFOID[foid]
		if !exists {
			col.Warn(diag.CodeUpdateTargetMissing,
				"modify of absent feature %s", foid)
			return nil
		}
		if !checkRVER(featureRec.RecordVersion, existing.RecordVersion,
			"modify of feature "+foid.String(), col, opts.RVERPolicy) {
			return nil
		}
		// Merge deltas: supplied attributes overwrite, absent ones
		// survive; pointers replace only when the update carries FSPT.
		for k, v := range featureRec.Attributes {
			existing.Attributes[k] = v
		}
		if _, hasFSPT := record.Fields["FSPT"]; hasFSPT {
			existing.SpatialRefs = featureRec.SpatialRefs
		}
		existing.GeomPrim = featureRec.GeomPrim
		existing.Group = featureRec.Group
		existing.RecordVersion = featureRec.RecordVersion

	default:
		if err := col.Error(diag.CodeInvalidRUIN,
			"feature %s carries RUIN=%d: instruction skipped", foid, int(ruin)); err != nil {
			return err
		}
	}

	return nil
}

// applySpatialUpdate handles one spatial-record instruction. Spatial
// records are keyed by (RCNM, RCID). Inserts of an existing key
// replace the record, since producers routinely re-issue shared
// geometry; delete and modify of an absent record are reported.
func applySpatialUpdate(cell *Cell, record *iso8211.DataRecord, vridData []byte, col *diag.Collector, opts Options) error {
	ruin := UpdateInstruction(vridData[7])

	spatialRec := parseSpatialRecord(record, cell.params.COMF, cell.params.SOMF, col)
	if spatialRec == nil {
		return nil
	}
	key := spatialKey{RCNM: int(spatialRec.RecordType), RCID: spatialRec.ID}

	switch ruin {
	case UpdateInsert:
		cell.spatialRecords[key] = spatialRec

	case UpdateDelete:
		existing, exists := cell.spatialRecords[key]
		if !exists {
			col.Warn(diag.CodeUpdateTargetMissing,
				"delete of absent spatial record RCNM=%d RCID=%d", key.RCNM, key.RCID)
			return nil
		}
		if !checkRVER(spatialRec.RecordVersion, existing.RecordVersion,
			"delete of spatial record", col, opts.RVERPolicy) {
			return nil
		}
		delete(cell.spatialRecords, key)

	case UpdateModify:
		existing, exists := cell.spatialRecords[key]
		if !exists {
			col.Warn(diag.CodeUpdateTargetMissing,
				"modify of absent spatial record RCNM=%d RCID=%d", key.RCNM, key.RCID)
			return nil
		}
		if !checkRVER(spatialRec.RecordVersion, existing.RecordVersion,
			"modify of spatial record", col, opts.RVERPolicy) {
			return nil
		}
		// Replace only the parts the update supplies.
		if _, ok := record.Fields["SG2D"]; ok {
			existing.Coordinates = spatialRec.Coordinates
		}
		if _, ok := record.Fields["SG3D"]; ok {
			existing.Coordinates = spatialRec.Coordinates
		}
		if _, ok := record.Fields["VRPT"]; ok {
			existing.VectorPointers = spatialRec.VectorPointers
		}
		existing.RecordVersion = spatialRec.RecordVersion

	default:
		if err := col.Error(diag.CodeInvalidRUIN,
			"spatial record RCNM=%d RCID=%d carries RUIN=%d: instruction skipped",
			key.RCNM, key.RCID, int(ruin)); err != nil {
			return err
		}
	}

	return nil
}
