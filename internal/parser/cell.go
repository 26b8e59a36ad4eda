package parser

// Cell holds the decoded record-level state of one S-57 dataset: the
// DSID metadata, DSPM parameters, feature records and spatial records.
// Updates merge into a cloned Cell; Features are built from the merged
// records afterwards, so geometry construction always sees the final
// topology.
type Cell struct {
	metadata *datasetMetadata
	params   datasetParams

	// features preserves dataset record order; featuresByFOID indexes
	// the same records for update application.
	features       []*featureRecord
	featuresByFOID map[FOID]*featureRecord
	spatialRecords map[spatialKey]*spatialRecord
}

// Clone deep-copies the cell so an update sequence can be applied
// without mutating the base.
func (c *Cell) Clone() *Cell {
	dup := &Cell{
		metadata:       c.metadata.clone(),
		params:         c.params,
		features:       make([]*featureRecord, 0, len(c.features)),
		featuresByFOID: make(map[FOID]*featureRecord, len(c.featuresByFOID)),
		spatialRecords: make(map[spatialKey]*spatialRecord, len(c.spatialRecords)),
	}
	for _, f := range c.features {
		fc := f.clone()
		dup.features = append(dup.features, fc)
		if !fc.FOID.IsZero() {
			dup.featuresByFOID[fc.FOID] = fc
		}
	}
	for key, s := range c.spatialRecords {
		dup.spatialRecords[key] = s.clone()
	}
	return dup
}

// DatasetName returns the cell identifier from DSID (e.g. "US5MA22M").
func (c *Cell) DatasetName() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.DatasetName()
}

// Edition returns the edition number from DSID.
func (c *Cell) Edition() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.Edition()
}

// UpdateNumber returns the update number applied to this cell.
func (c *Cell) UpdateNumber() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.UpdateNumber()
}

// UpdateSequence returns UpdateNumber as an integer, or 0 when the
// field is absent or malformed.
func (c *Cell) UpdateSequence() int {
	n, _ := c.metadata.updateSequence()
	return n
}

// UpdateDate returns the update application date (YYYYMMDD).
func (c *Cell) UpdateDate() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.UpdateDate()
}

// IssueDate returns the issue date (YYYYMMDD).
func (c *Cell) IssueDate() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.IssueDate()
}

// S57Edition returns the S-57 standard edition used (e.g. "03.1").
func (c *Cell) S57Edition() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.S57Edition()
}

// ProducingAgency returns the producing agency code from DSID.
func (c *Cell) ProducingAgency() int {
	if c.metadata == nil {
		return 0
	}
	return c.metadata.ProducingAgency()
}

// Comment returns the DSID comment field.
func (c *Cell) Comment() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.Comment()
}

// ExchangePurpose returns "New" or "Revision".
func (c *Cell) ExchangePurpose() string {
	if c.metadata == nil {
		return "Unknown"
	}
	return c.metadata.ExchangePurpose()
}

// ProductSpecification returns "ENC" or "ODD".
func (c *Cell) ProductSpecification() string {
	if c.metadata == nil {
		return "Unknown"
	}
	return c.metadata.ProductSpecification()
}

// ApplicationProfile returns "EN", "ER" or "DD".
func (c *Cell) ApplicationProfile() string {
	if c.metadata == nil {
		return "Unknown"
	}
	return c.metadata.ApplicationProfile()
}

// IntendedUsage returns the navigational purpose band from DSID.
// 1=Overview, 2=General, 3=Coastal, 4=Approach, 5=Harbour, 6=Berthing.
func (c *Cell) IntendedUsage() int {
	if c.metadata == nil {
		return 0
	}
	return c.metadata.intu
}

// CoordinateUnits returns the COUN field from DSPM:
// 1=lat/lon, 2=eastings/northings.
func (c *Cell) CoordinateUnits() int {
	return c.params.COUN
}

// HorizontalDatum returns the HDAT field from DSPM (2=WGS-84).
func (c *Cell) HorizontalDatum() int {
	return c.params.HDAT
}

// CompilationScale returns the CSCL scale denominator from DSPM.
func (c *Cell) CompilationScale() int32 {
	return c.params.CSCL
}

// COMF returns the coordinate multiplication factor in effect.
func (c *Cell) COMF() int32 {
	return c.params.COMF
}

// SOMF returns the sounding multiplication factor in effect.
func (c *Cell) SOMF() int32 {
	return c.params.SOMF
}

// NumFeatureRecords returns the count of feature records, including
// ones whose geometry may not construct.
func (c *Cell) NumFeatureRecords() int {
	return len(c.features)
}

// NumSpatialRecords returns the count of spatial records.
func (c *Cell) NumSpatialRecords() int {
	return len(c.spatialRecords)
}
