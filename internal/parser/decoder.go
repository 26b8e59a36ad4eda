package parser

import (
	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/iso8211"
)

// Options configures record decoding and feature construction.
type Options struct {
	// Strict escalates error-severity anomalies to a returned error
	// carrying the full diagnostic history. Default is lenient: decode
	// what survives and report the rest.
	Strict bool

	// RVERPolicy controls how non-monotonic record versions in update
	// instructions are handled. Default is RVERLenient.
	RVERPolicy RVERPolicy

	// ValidateGeometry drops features whose constructed geometry fails
	// coordinate validation, with a report per dropped feature.
	ValidateGeometry bool

	// ObjectClassFilter restricts feature construction to the given
	// acronyms. Empty means all classes.
	ObjectClassFilter []string

	// COMF and SOMF override the fallback scaling factors used when
	// the dataset carries no DSPM record. Zero means the S-57 ENC
	// defaults (DefaultCOMF, DefaultSOMF). A DSPM record in the data
	// always wins over these.
	COMF int32
	SOMF int32
}

// DecodeCell parses one complete S-57 dataset from a byte buffer into
// record-level form. Structural damage is repaired where possible and
// reported through the collector; in strict mode the first
// error-severity anomaly aborts with a *diag.StrictError.
func DecodeCell(data []byte, cat *Catalog, col *diag.Collector, opts Options) (*Cell, error) {
	reader := iso8211.NewReader(data, iso8211.Options{Strict: opts.Strict, Collector: col})
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return cellFromRecords(records, cat, col, opts), nil
}

// cellFromRecords assembles a Cell from structural records: DSID
// metadata, DSPM parameters, then one pass each over feature and
// spatial records.
func cellFromRecords(records []*iso8211.DataRecord, cat *Catalog, col *diag.Collector, opts Options) *Cell {
	params := extractDatasetParams(records, col, opts.COMF, opts.SOMF)
	metadata := extractDSID(records)

	cell := &Cell{
		metadata:       metadata,
		params:         params,
		featuresByFOID: make(map[FOID]*featureRecord),
		spatialRecords: make(map[spatialKey]*spatialRecord),
	}

	for _, record := range records {
		if featureRec := parseFeatureRecord(record, cat, col); featureRec != nil {
			cell.features = append(cell.features, featureRec)
			if !featureRec.FOID.IsZero() {
				cell.featuresByFOID[featureRec.FOID] = featureRec
			}
			continue
		}
		if spatialRec := parseSpatialRecord(record, params.COMF, params.SOMF, col); spatialRec != nil {
			key := spatialKey{RCNM: int(spatialRec.RecordType), RCID: spatialRec.ID}
			cell.spatialRecords[key] = spatialRec
		}
	}

	return cell
}

// BuildFeatures constructs final features with geometry from the
// cell's merged records, in dataset record order. Features whose
// topology is damaged keep whatever coordinates resolve; the damage is
// reported through the collector rather than failing the build.
func (c *Cell) BuildFeatures(cat *Catalog, col *diag.Collector, opts Options) []Feature {
	features := make([]Feature, 0, len(c.features))

	for _, featureRec := range c.features {
		objClass := cat.ObjectClass(featureRec.ObjectClass)
		if len(opts.ObjectClassFilter) > 0 && !contains(opts.ObjectClassFilter, objClass) {
			continue
		}

		geometry := constructGeometry(featureRec, c.spatialRecords, col)

		if opts.ValidateGeometry {
			if err := ValidateGeometry(&geometry); err != nil {
				col.Warn(diag.CodeInvalidGeometry,
					"feature %s (%s): %v", featureRec.FOID, objClass, err)
				continue
			}
		}

		// Each feature gets its own attribute map. Decode hooks and
		// callers mutate features freely; the cell's records stay as
		// decoded so rebuilding or cloning starts from clean state.
		attributes := make(map[string]interface{}, len(featureRec.Attributes))
		for k, v := range featureRec.Attributes {
			attributes[k] = v
		}

		feature := Feature{
			FOID:          featureRec.FOID,
			ObjectClass:   objClass,
			ObjectCode:    featureRec.ObjectClass,
			Primitive:     featureRec.GeomPrim,
			RecordVersion: featureRec.RecordVersion,
			Geometry:      geometry,
			Attributes:    attributes,
		}

		if decode := cat.decoderFor(featureRec.ObjectClass); decode != nil {
			decode(&feature)
		}

		features = append(features, feature)
	}

	return features
}

// contains reports whether a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
