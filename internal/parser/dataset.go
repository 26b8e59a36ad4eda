package parser

import (
	"encoding/binary"

	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/iso8211"
)

// Coordinate and sounding multiplication factors used when the DSPM
// record is absent or carries zero values. The values follow the S-57
// ENC product specification: positions in 10^-7 degrees, depths in
// decimetres. Callers can override them per decode through Options.
const (
	DefaultCOMF int32 = 10000000
	DefaultSOMF int32 = 10
)

// datasetParams holds dataset-level parameters from the DSPM record.
// S-57 §7.3.2: Data Set Parameter Record.
type datasetParams struct {
	COMF int32 // Coordinate multiplication factor
	SOMF int32 // Sounding (3D) multiplication factor
	HDAT int   // Horizontal geodetic datum
	VDAT int   // Vertical datum
	SDAT int   // Sounding datum
	CSCL int32 // Compilation scale denominator
	COUN int   // Coordinate units: 1=lat/lon, 2=eastings/northings
}

// extractDatasetParams locates the DSPM record and decodes it. When no
// DSPM record is present the fallback factors apply and an
// EMPTY_REQUIRED_FIELD warning is recorded, since coordinates decoded
// under assumed factors may be silently wrong if the producer intended
// non-standard scaling.
func extractDatasetParams(records []*iso8211.DataRecord, col *diag.Collector, fallbackCOMF, fallbackSOMF int32) datasetParams {
	if fallbackCOMF <= 0 {
		fallbackCOMF = DefaultCOMF
	}
	if fallbackSOMF <= 0 {
		fallbackSOMF = DefaultSOMF
	}

	for _, record := range records {
		if dspmData, ok := record.Fields["DSPM"]; ok {
			return parseDSPM(dspmData, col, fallbackCOMF, fallbackSOMF)
		}
	}

	col.Warn(diag.CodeEmptyRequiredField,
		"no DSPM record: assuming COMF=%d SOMF=%d", fallbackCOMF, fallbackSOMF)
	return datasetParams{COMF: fallbackCOMF, SOMF: fallbackSOMF}
}

// parseDSPM decodes the DSPM field per S-57 §7.3.2.1.
//
// Binary layout:
//
//	RCNM (1 byte)  - record name, 20 = dataset parameters
//	RCID (4 bytes) - record ID (uint32 LE)
//	HDAT (1 byte)  - horizontal datum
//	VDAT (1 byte)  - vertical datum
//	SDAT (1 byte)  - sounding datum
//	CSCL (4 bytes) - compilation scale (uint32 LE)
//	DUNI (1 byte)  - depth units
//	HUNI (1 byte)  - height units
//	PUNI (1 byte)  - position units
//	COUN (1 byte)  - coordinate units
//	COMF (4 bytes) - coordinate multiplication factor (int32 LE)
//	SOMF (4 bytes) - sounding multiplication factor (int32 LE)
//	COMT (var)     - comment
func parseDSPM(data []byte, col *diag.Collector, fallbackCOMF, fallbackSOMF int32) datasetParams {
	params := datasetParams{COMF: fallbackCOMF, SOMF: fallbackSOMF}

	// All fixed subfields through SOMF.
	if len(data) < 24 {
		col.Warn(diag.CodeEmptyRequiredField,
			"DSPM field truncated to %d bytes: assuming COMF=%d SOMF=%d",
			len(data), fallbackCOMF, fallbackSOMF)
		return params
	}
	if data[0] != 20 {
		col.Warn(diag.CodeEmptyRequiredField,
			"DSPM field carries RCNM=%d, want 20: field ignored", data[0])
		return params
	}

	offset := 5 // skip RCNM + RCID
	params.HDAT = int(data[offset])
	offset++
	params.VDAT = int(data[offset])
	offset++
	params.SDAT = int(data[offset])
	offset++
	params.CSCL = int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	offset += 3 // skip DUNI, HUNI, PUNI
	params.COUN = int(data[offset])
	offset++

	comf := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	somf := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))

	// A zero or negative factor would collapse every coordinate to
	// infinity; fall back and say so rather than divide by it.
	if comf > 0 {
		params.COMF = comf
	} else {
		col.Warn(diag.CodeEmptyRequiredField,
			"DSPM COMF=%d is not positive: assuming %d", comf, fallbackCOMF)
	}
	if somf > 0 {
		params.SOMF = somf
	} else {
		col.Warn(diag.CodeEmptyRequiredField,
			"DSPM SOMF=%d is not positive: assuming %d", somf, fallbackSOMF)
	}

	return params
}

// convertCoordinate scales a raw integer coordinate by a
// multiplication factor.
func convertCoordinate(value int32, factor int32) float64 {
	if factor <= 0 {
		factor = DefaultCOMF
	}
	return float64(value) / float64(factor)
}
