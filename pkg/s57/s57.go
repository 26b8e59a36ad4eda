// Package s57 decodes S-57 Electronic Navigational Chart (ENC) datasets
// from byte buffers into feature sets with constructed geometry.
//
// The package operates entirely on in-memory buffers: callers read the
// .000 base cell and any .001, .002, ... update files themselves and
// hand the bytes to DecodeCell and ApplyUpdates. Damaged input is
// repaired where possible and every repair is reported as a Warning on
// the resulting FeatureSet; strict mode escalates data-losing anomalies
// to a *StrictModeError carrying the full diagnostic history.
//
// Basic usage:
//
//	data, _ := os.ReadFile("US5TX22M.000")
//	fs, err := s57.DecodeCell(data, s57.DefaultParseOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range fs.Features() {
//	    fmt.Println(f.ObjectClass(), f.Geometry().Type)
//	}
package s57

import (
	"fmt"

	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/parser"
)

// FOID is the worldwide unique feature object identifier (S-57 §4.4).
//
// The triple (Agency, FeatureID, Subdivision) identifies a feature
// across the base cell and every update that follows it.
type FOID struct {
	Agency      uint16 // AGEN - producing agency code
	FeatureID   uint32 // FIDN - feature identification number
	Subdivision uint16 // FIDS - feature identification subdivision
}

// IsZero reports whether the identifier is entirely unset.
func (id FOID) IsZero() bool {
	return id.Agency == 0 && id.FeatureID == 0 && id.Subdivision == 0
}

// Less orders identifiers by (Agency, FeatureID, Subdivision).
func (id FOID) Less(other FOID) bool {
	if id.Agency != other.Agency {
		return id.Agency < other.Agency
	}
	if id.FeatureID != other.FeatureID {
		return id.FeatureID < other.FeatureID
	}
	return id.Subdivision < other.Subdivision
}

// String formats the identifier as "agency:fidn:fids".
func (id FOID) String() string {
	return fmt.Sprintf("%d:%d:%d", id.Agency, id.FeatureID, id.Subdivision)
}

// GeometryType describes the geometric primitive of a feature.
type GeometryType int

const (
	GeometryTypePoint GeometryType = iota + 1
	GeometryTypeLineString
	GeometryTypePolygon
)

// String returns the GeoJSON name of the geometry type.
func (t GeometryType) String() string {
	switch t {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeLineString:
		return "LineString"
	case GeometryTypePolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// Geometry holds a feature's resolved coordinates in decimal degrees.
//
// Coordinates are [lon, lat] or [lon, lat, depth] tuples. A feature
// whose spatial records could not be resolved keeps an empty
// coordinate list; the damage is reported as a Warning, never by
// discarding the feature.
type Geometry struct {
	Type        GeometryType
	Coordinates [][]float64
}

// Feature is one decoded chart object: a depth area, buoy, light,
// sounding cluster, or any other class from the S-57 Object Catalogue.
type Feature struct {
	id          FOID
	objectClass string
	objectCode  int
	version     int
	geometry    Geometry
	attributes  map[string]interface{}
}

// ID returns the feature object identifier.
func (f *Feature) ID() FOID {
	return f.id
}

// ObjectClass returns the object class acronym (e.g. "DEPARE",
// "LIGHTS"). Classes missing from the catalog are rendered as
// "OBJL_<code>".
func (f *Feature) ObjectClass() string {
	return f.objectClass
}

// ObjectCode returns the numeric OBJL object class code.
func (f *Feature) ObjectCode() int {
	return f.objectCode
}

// Version returns the record version (RVER) after all applied updates.
func (f *Feature) Version() int {
	return f.version
}

// Geometry returns the feature's constructed geometry.
func (f *Feature) Geometry() Geometry {
	return f.geometry
}

// Attributes returns the decoded attribute map, keyed by attribute
// acronym (e.g. "DRVAL1", "OBJNAM"). Callers must not mutate it.
func (f *Feature) Attributes() map[string]interface{} {
	return f.attributes
}

// Attribute looks up a single attribute by acronym.
func (f *Feature) Attribute(name string) (interface{}, bool) {
	v, ok := f.attributes[name]
	return v, ok
}

// SetAttribute stores a derived attribute. Intended for FeatureDecoder
// hooks that lift raw values into typed ones. The write lands on a
// fresh copy of the attribute map, so mutating a Feature value never
// reaches the set it was read from.
func (f *Feature) SetAttribute(name string, value interface{}) {
	attributes := make(map[string]interface{}, len(f.attributes)+1)
	for k, v := range f.attributes {
		attributes[k] = v
	}
	attributes[name] = value
	f.attributes = attributes
}

// SetGeometry replaces the feature's geometry. Intended for
// FeatureDecoder hooks.
func (f *Feature) SetGeometry(g Geometry) {
	f.geometry = g
}

// Bounds returns the feature's bounding box. A feature with no
// resolved coordinates yields the zero Bounds.
func (f *Feature) Bounds() Bounds {
	return featureBounds(f)
}

// DecodeCell parses one complete S-57 base cell from a byte buffer.
//
// In the default lenient mode DecodeCell returns an error only for
// input that yields no records at all; everything recoverable is
// decoded and the anomalies appear in the FeatureSet's Warnings. With
// ParseOptions.StrictMode set, the first data-losing anomaly aborts
// the decode with a *StrictModeError carrying every event reported up
// to that point.
func DecodeCell(data []byte, opts ParseOptions) (*FeatureSet, error) {
	col := diag.NewCollector(opts.StrictMode)
	cat := opts.catalog()

	cell, err := parser.DecodeCell(data, cat, col, opts.parserOptions())
	if err != nil {
		return nil, wrapDecodeError(err, col)
	}

	fs := newFeatureSet(cell, cat, col, opts)
	if opts.StrictMode && col.HasErrors() {
		return fs, &StrictModeError{Warnings: fs.Warnings()}
	}
	return fs, nil
}

// wrapDecodeError translates internal strict-mode errors into the
// public error type; other errors pass through unchanged.
func wrapDecodeError(err error, col *diag.Collector) error {
	if _, ok := err.(*diag.StrictError); ok {
		return &StrictModeError{Warnings: eventsToWarnings(col.Events())}
	}
	return err
}

// CoordinateUnits indicates how coordinates are encoded in the dataset.
//
// S-57 §7.3.2.1: COUN field in the DSPM record defines coordinate
// units. Reference: S-57 Part 3 Table 3.2.
type CoordinateUnits int

const (
	// CoordinateUnitsUnknown indicates coordinate units are not
	// specified. Treated as lat/lon, the S-57 default assumption.
	CoordinateUnitsUnknown CoordinateUnits = 0

	// CoordinateUnitsLatLon indicates latitude/longitude (WGS-84),
	// the standard for ENC cells. Raw values are degrees scaled by
	// the COMF factor.
	CoordinateUnitsLatLon CoordinateUnits = 1

	// CoordinateUnitsEastNorth indicates projected Easting/Northing.
	// Rare; requires a DSPR record for projection parameters.
	CoordinateUnitsEastNorth CoordinateUnits = 2
)

// String returns a human-readable name for the coordinate units.
func (c CoordinateUnits) String() string {
	switch c {
	case CoordinateUnitsLatLon:
		return "Latitude/Longitude (WGS-84)"
	case CoordinateUnitsEastNorth:
		return "Easting/Northing (Projected)"
	default:
		return "Unknown"
	}
}

// UsageBand defines the ENC usage band (navigational purpose) of a
// cell.
//
// ENC cells are organized by usage band, which determines the level of
// detail and appropriate display scale. Applications should select the
// band matching their current zoom level.
//
// Reference: S-57 Part 3 §7.3.1.1 (INTU field) and S-52 Section 3.4.
type UsageBand int

const (
	// UsageBandUnknown indicates the band is not specified.
	UsageBandUnknown UsageBand = 0

	// UsageBandOverview - overview navigation (>= 1:1,500,000).
	UsageBandOverview UsageBand = 1

	// UsageBandGeneral - general navigation (1:350,000 - 1:1,500,000).
	UsageBandGeneral UsageBand = 2

	// UsageBandCoastal - coastal navigation (1:90,000 - 1:350,000).
	UsageBandCoastal UsageBand = 3

	// UsageBandApproach - approach navigation (1:22,000 - 1:90,000).
	UsageBandApproach UsageBand = 4

	// UsageBandHarbour - harbour navigation (1:4,000 - 1:22,000).
	UsageBandHarbour UsageBand = 5

	// UsageBandBerthing - berthing (<= 1:4,000).
	UsageBandBerthing UsageBand = 6
)

// String returns the human-readable name of the usage band.
func (ub UsageBand) String() string {
	switch ub {
	case UsageBandOverview:
		return "Overview"
	case UsageBandGeneral:
		return "General"
	case UsageBandCoastal:
		return "Coastal"
	case UsageBandApproach:
		return "Approach"
	case UsageBandHarbour:
		return "Harbour"
	case UsageBandBerthing:
		return "Berthing"
	default:
		return "Unknown"
	}
}

// ScaleRange returns the recommended scale range for this usage band
// as (minScale, maxScale) denominators. Open-ended ranges report 0 on
// the unbounded side.
func (ub UsageBand) ScaleRange() (min, max int) {
	switch ub {
	case UsageBandOverview:
		return 1500000, 0
	case UsageBandGeneral:
		return 350000, 1500000
	case UsageBandCoastal:
		return 90000, 350000
	case UsageBandApproach:
		return 22000, 90000
	case UsageBandHarbour:
		return 4000, 22000
	case UsageBandBerthing:
		return 0, 4000
	default:
		return 0, 0
	}
}
