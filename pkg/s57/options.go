package s57

import "github.com/marinekit/s57/internal/parser"

// CatalogVersion selects which edition of the S-57 Object Catalogue
// the decoder resolves object class and attribute codes against.
type CatalogVersion string

const (
	// CatalogVersion31 is S-57 edition 3.1, the edition all modern ENC
	// production uses.
	CatalogVersion31 CatalogVersion = "3.1"

	// CatalogVersion30 is S-57 edition 3.0. Accepted for legacy cells;
	// the code tables are a strict subset of 3.1.
	CatalogVersion30 CatalogVersion = "3.0"
)

// RVERPolicy controls how update instructions whose declared record
// version (RVER) does not continue the current version are handled.
type RVERPolicy int

const (
	// RVERLenient applies the instruction anyway and reports a
	// RVER_MISMATCH warning. This matches what most ECDIS
	// implementations do in practice.
	RVERLenient RVERPolicy = iota

	// RVERStrict skips the mismatched instruction, keeping the target
	// record at its current version.
	RVERStrict
)

// FeatureDecoder is a per-object-class hook run on each feature after
// its attributes and geometry are assembled. Hooks typically lift raw
// attribute strings or geometry into typed values, the way the
// built-in soundings decoder lifts depth values into "DEPTHS".
type FeatureDecoder func(f *Feature)

// ParseOptions configures decoding and update application.
type ParseOptions struct {
	// StrictMode escalates data-losing anomalies to a returned
	// *StrictModeError instead of collecting them as warnings.
	// Default is lenient: decode what survives, report the rest.
	StrictMode bool

	// CatalogVersion selects the object catalogue edition. Empty
	// means CatalogVersion31.
	CatalogVersion CatalogVersion

	// UpdateRVERPolicy governs record version continuity checks when
	// applying updates. Default is RVERLenient.
	UpdateRVERPolicy RVERPolicy

	// ValidateGeometry drops features whose constructed geometry has
	// out-of-range coordinates, with a warning per dropped feature.
	ValidateGeometry bool

	// ObjectClassFilter restricts decoding to the given object class
	// acronyms. Empty means all classes.
	ObjectClassFilter []string

	// COMF and SOMF override the fallback coordinate and sounding
	// multiplication factors used when a dataset carries no DSPM
	// record. Zero means the ENC defaults (10000000 and 10). Factors
	// present in the data always win.
	COMF int32
	SOMF int32

	// ObjectClasses adds or overrides object class acronyms by OBJL
	// code, extending the built-in catalogue.
	ObjectClasses map[int]string

	// Attributes adds or overrides attribute acronyms by ATTL code.
	Attributes map[int]string

	// Decoders registers per-object-class post-decode hooks by OBJL
	// code. A hook registered for a class with a built-in decoder
	// runs after it.
	Decoders map[int]FeatureDecoder
}

// DefaultParseOptions returns the options used for ordinary chart
// loading: lenient recovery, catalogue 3.1, geometry validation on.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		CatalogVersion:   CatalogVersion31,
		UpdateRVERPolicy: RVERLenient,
		ValidateGeometry: true,
	}
}

// parserOptions maps the public options onto the internal decoder's.
func (o ParseOptions) parserOptions() parser.Options {
	policy := parser.RVERLenient
	if o.UpdateRVERPolicy == RVERStrict {
		policy = parser.RVERStrict
	}
	return parser.Options{
		Strict:            o.StrictMode,
		RVERPolicy:        policy,
		ValidateGeometry:  o.ValidateGeometry,
		ObjectClassFilter: o.ObjectClassFilter,
		COMF:              o.COMF,
		SOMF:              o.SOMF,
	}
}

// catalog builds the internal catalogue with any caller-registered
// extensions applied.
func (o ParseOptions) catalog() *parser.Catalog {
	version := parser.Edition31
	if o.CatalogVersion == CatalogVersion30 {
		version = parser.Edition30
	}
	cat := parser.NewCatalog(version)
	for code, acronym := range o.ObjectClasses {
		cat.RegisterObjectClass(code, acronym)
	}
	for code, acronym := range o.Attributes {
		cat.RegisterAttribute(code, acronym)
	}
	return cat
}
