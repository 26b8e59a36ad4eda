package s57

import (
	"sort"
	"sync"

	"github.com/google/btree"
	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/parser"
)

// FeatureSet is the decoded form of one ENC cell: its features, the
// dataset metadata, and every warning reported while decoding.
//
// A FeatureSet is immutable. Applying updates produces a new set and
// leaves the receiver untouched, so a caller can keep the base cell
// around while newer revisions circulate.
type FeatureSet struct {
	cell *parser.Cell
	cat  *parser.Catalog
	opts ParseOptions

	features []Feature    // dataset record order
	byID     *btree.BTree // featureItem keyed by FOID

	warnings []Warning

	indexOnce sync.Once
	index     *spatialIndex

	boundsOnce sync.Once
	bounds     Bounds
}

// featureItem keys a feature into the FOID-ordered tree. It carries
// the slice index rather than the feature itself to keep tree nodes
// small.
type featureItem struct {
	id  FOID
	idx int
}

func (it featureItem) Less(than btree.Item) bool {
	return it.id.Less(than.(featureItem).id)
}

// btreeDegree is the branching factor for the FOID tree. 32 keeps the
// tree shallow for the tens of thousands of features a harbour cell
// carries.
const btreeDegree = 32

// newFeatureSet assembles the public feature set from a decoded cell.
func newFeatureSet(cell *parser.Cell, cat *parser.Catalog, col *diag.Collector, opts ParseOptions) *FeatureSet {
	raw := cell.BuildFeatures(cat, col, opts.parserOptions())

	fs := &FeatureSet{
		cell:     cell,
		cat:      cat,
		opts:     opts,
		features: make([]Feature, 0, len(raw)),
		byID:     btree.New(btreeDegree),
	}

	for _, rf := range raw {
		f := Feature{
			id: FOID{
				Agency:      rf.FOID.AGEN,
				FeatureID:   rf.FOID.FIDN,
				Subdivision: rf.FOID.FIDS,
			},
			objectClass: rf.ObjectClass,
			objectCode:  rf.ObjectCode,
			version:     rf.RecordVersion,
			geometry: Geometry{
				Type:        GeometryType(rf.Geometry.Type),
				Coordinates: rf.Geometry.Coordinates,
			},
			attributes: rf.Attributes,
		}
		if decode, ok := opts.Decoders[rf.ObjectCode]; ok && decode != nil {
			decode(&f)
		}
		fs.features = append(fs.features, f)
		if !f.id.IsZero() {
			fs.byID.ReplaceOrInsert(featureItem{id: f.id, idx: len(fs.features) - 1})
		}
	}

	fs.warnings = eventsToWarnings(col.Events())
	return fs
}

// Features returns all features in dataset record order. Callers must
// not mutate the returned slice.
func (fs *FeatureSet) Features() []Feature {
	return fs.features
}

// FeatureCount returns the number of decoded features.
func (fs *FeatureSet) FeatureCount() int {
	return len(fs.features)
}

// FeatureByID looks up a feature by its object identifier.
func (fs *FeatureSet) FeatureByID(id FOID) (Feature, bool) {
	item := fs.byID.Get(featureItem{id: id})
	if item == nil {
		return Feature{}, false
	}
	return fs.features[item.(featureItem).idx], true
}

// Warnings returns every diagnostic event reported while decoding the
// cell and applying its updates, in emission order.
func (fs *FeatureSet) Warnings() []Warning {
	out := make([]Warning, len(fs.warnings))
	copy(out, fs.warnings)
	return out
}

// FeatureQuery selects features for FindFeatures. Zero-value fields
// are not applied.
type FeatureQuery struct {
	// ObjectClasses restricts results to the given acronyms.
	ObjectClasses []string

	// Bounds restricts results to features whose bounding box
	// intersects the given area.
	Bounds *Bounds

	// Where is an arbitrary per-feature predicate, applied last.
	Where func(f Feature) bool

	// Limit caps the number of results, applied after the FOID sort
	// so a bounded query is deterministic. Zero means unbounded.
	Limit int
}

// FindFeatures returns the features matching every set field of the
// query, in FOID order. When Bounds is set the spatial index narrows
// candidates before the remaining filters run.
func (fs *FeatureSet) FindFeatures(q FeatureQuery) []Feature {
	var candidates []Feature
	if q.Bounds != nil {
		candidates = fs.FeaturesInBounds(*q.Bounds)
	} else {
		candidates = fs.features
	}

	classes := make(map[string]bool, len(q.ObjectClasses))
	for _, c := range q.ObjectClasses {
		classes[c] = true
	}

	var out []Feature
	for _, f := range candidates {
		if len(classes) > 0 && !classes[f.objectClass] {
			continue
		}
		if q.Where != nil && !q.Where(f) {
			continue
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].id.Less(out[j].id)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// FeaturesInBounds returns features whose bounding box intersects the
// given area, using the R-tree index.
func (fs *FeatureSet) FeaturesInBounds(b Bounds) []Feature {
	fs.indexOnce.Do(func() {
		fs.index = buildSpatialIndex(fs.features)
	})
	return fs.index.search(b, fs.features)
}

// Bounds returns the bounding box covering every feature with
// resolved coordinates.
func (fs *FeatureSet) Bounds() Bounds {
	fs.boundsOnce.Do(func() {
		first := true
		for i := range fs.features {
			if len(fs.features[i].geometry.Coordinates) == 0 {
				continue
			}
			fb := fs.features[i].Bounds()
			if first {
				fs.bounds = fb
				first = false
				continue
			}
			fs.bounds = fs.bounds.Union(fb)
		}
	})
	return fs.bounds
}

// Summary condenses the cell's identity and contents into one value,
// suitable for chart pickers and logs.
type Summary struct {
	DatasetName      string
	Edition          string
	UpdateNumber     string
	IssueDate        string
	UpdateDate       string
	UsageBand        UsageBand
	CompilationScale int32
	FeatureCount     int
	WarningCount     int
	ObjectClasses    map[string]int // feature count per acronym
	Bounds           Bounds
}

// Summary returns the dataset summary.
func (fs *FeatureSet) Summary() Summary {
	classes := make(map[string]int)
	for i := range fs.features {
		classes[fs.features[i].objectClass]++
	}
	return Summary{
		DatasetName:      fs.DatasetName(),
		Edition:          fs.Edition(),
		UpdateNumber:     fs.UpdateNumber(),
		IssueDate:        fs.IssueDate(),
		UpdateDate:       fs.UpdateDate(),
		UsageBand:        fs.UsageBand(),
		CompilationScale: fs.CompilationScale(),
		FeatureCount:     len(fs.features),
		WarningCount:     len(fs.warnings),
		ObjectClasses:    classes,
		Bounds:           fs.Bounds(),
	}
}

// DatasetName returns the DSNM dataset name, e.g. "US5TX22M.000".
func (fs *FeatureSet) DatasetName() string {
	return fs.cell.DatasetName()
}

// Edition returns the EDTN edition number as issued.
func (fs *FeatureSet) Edition() string {
	return fs.cell.Edition()
}

// UpdateNumber returns the UPDN number of the last applied update,
// "0" for an unamended base cell.
func (fs *FeatureSet) UpdateNumber() string {
	return fs.cell.UpdateNumber()
}

// UpdateSequence returns UpdateNumber as an integer, 0 when the field
// is absent or unparseable.
func (fs *FeatureSet) UpdateSequence() int {
	return fs.cell.UpdateSequence()
}

// IssueDate returns the ISDT issue date as YYYYMMDD.
func (fs *FeatureSet) IssueDate() string {
	return fs.cell.IssueDate()
}

// UpdateDate returns the UADT update application date as YYYYMMDD.
func (fs *FeatureSet) UpdateDate() string {
	return fs.cell.UpdateDate()
}

// S57Edition returns the STED standard edition, "03.1" for current
// cells.
func (fs *FeatureSet) S57Edition() string {
	return fs.cell.S57Edition()
}

// ProducingAgency returns the AGEN agency code from the DSID record.
func (fs *FeatureSet) ProducingAgency() int {
	return fs.cell.ProducingAgency()
}

// Comment returns the COMT free-text comment.
func (fs *FeatureSet) Comment() string {
	return fs.cell.Comment()
}

// UsageBand returns the navigational purpose from the DSID INTU
// field.
func (fs *FeatureSet) UsageBand() UsageBand {
	intu := fs.cell.IntendedUsage()
	if intu < 1 || intu > 6 {
		return UsageBandUnknown
	}
	return UsageBand(intu)
}

// CompilationScale returns the CSCL compilation scale denominator
// from the DSPM record, 0 when absent.
func (fs *FeatureSet) CompilationScale() int32 {
	return fs.cell.CompilationScale()
}

// CoordinateUnits returns the COUN coordinate unit declaration.
func (fs *FeatureSet) CoordinateUnits() CoordinateUnits {
	return CoordinateUnits(fs.cell.CoordinateUnits())
}
