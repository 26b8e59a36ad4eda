package s57

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/marinekit/s57/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gjCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Type       string                 `json:"type"`
		ID         string                 `json:"id"`
		Geometry   *json.RawMessage       `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	} `json:"features"`
}

func TestToGeoJSON(t *testing.T) {
	fs := decodeHarbour(t, DefaultParseOptions())

	out, err := fs.ToGeoJSON()
	require.NoError(t, err)

	var collection gjCollection
	require.NoError(t, json.Unmarshal(out, &collection))
	assert.Equal(t, "FeatureCollection", collection.Type)
	require.Len(t, collection.Features, 3)

	byID := make(map[string]int)
	for i, f := range collection.Features {
		assert.Equal(t, "Feature", f.Type)
		byID[f.ID] = i
	}

	depare := collection.Features[byID["550:1001:1"]]
	assert.Equal(t, "DEPARE", depare.Properties["objectClass"])
	assert.Equal(t, float64(42), depare.Properties["objl"])
	assert.Equal(t, "0", depare.Properties["DRVAL1"])

	var polygon struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal(*depare.Geometry, &polygon))
	assert.Equal(t, "Polygon", polygon.Type)
	require.Len(t, polygon.Coordinates, 1)
	ring := polygon.Coordinates[0]
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")

	soundg := collection.Features[byID["550:1003:1"]]
	var multipoint struct {
		Type        string      `json:"type"`
		Coordinates [][]float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal(*soundg.Geometry, &multipoint))
	assert.Equal(t, "MultiPoint", multipoint.Type)
	assert.Len(t, multipoint.Coordinates, 3)
}

func TestToGeoJSONClassFilter(t *testing.T) {
	fs := decodeHarbour(t, DefaultParseOptions())

	out, err := fs.ToGeoJSON("DEPARE", "LIGHTS")
	require.NoError(t, err)

	var collection gjCollection
	require.NoError(t, json.Unmarshal(out, &collection))
	require.Len(t, collection.Features, 2)
	for _, f := range collection.Features {
		assert.Contains(t, []interface{}{"DEPARE", "LIGHTS"}, f.Properties["objectClass"])
	}
}

func TestToGeoJSONCoordinateRoundTrip(t *testing.T) {
	fs := decodeHarbour(t, DefaultParseOptions())

	out, err := fs.ToGeoJSON()
	require.NoError(t, err)

	var collection gjCollection
	require.NoError(t, json.Unmarshal(out, &collection))

	for _, f := range collection.Features {
		if f.ID != "550:1002:1" {
			continue
		}
		var point struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		}
		require.NoError(t, json.Unmarshal(*f.Geometry, &point))
		assert.Equal(t, "Point", point.Type)

		// Values must round-trip exactly, not within a tolerance: the
		// marshaled decimal parses back to the identical float64.
		light, ok := fs.FeatureByID(FOID{Agency: 550, FeatureID: 1002, Subdivision: 1})
		require.True(t, ok)
		assert.Equal(t, light.Geometry().Coordinates[0][0], point.Coordinates[0])
		assert.Equal(t, light.Geometry().Coordinates[0][1], point.Coordinates[1])

		// Scaling the decoded degrees back up reproduces the raw
		// integers the cell stored.
		rawLon := int32(math.Round(point.Coordinates[0] * float64(parser.DefaultCOMF)))
		rawLat := int32(math.Round(point.Coordinates[1] * float64(parser.DefaultCOMF)))
		assert.Equal(t, scaled(-70.5), rawLon)
		assert.Equal(t, scaled(42.3), rawLat)
	}
}

func TestToGeoJSONNullGeometry(t *testing.T) {
	fs, err := DecodeCell(harbourCellWithoutNode(), ParseOptions{CatalogVersion: CatalogVersion31})
	require.NoError(t, err)

	out, err := fs.ToGeoJSON()
	require.NoError(t, err)

	var collection gjCollection
	require.NoError(t, json.Unmarshal(out, &collection))
	require.Len(t, collection.Features, 1)
	assert.Nil(t, collection.Features[0].Geometry)
}
