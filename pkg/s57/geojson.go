package s57

import "encoding/json"

// geojsonFeature is the GeoJSON (RFC 7946) form of one feature.
type geojsonFeature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Geometry   *geojsonGeometry       `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geojsonGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type geojsonCollection struct {
	Type     string           `json:"type"`
	Features []geojsonFeature `json:"features"`
}

// ToGeoJSON renders the feature set as a GeoJSON FeatureCollection.
// Passing object class acronyms restricts the export to those classes;
// no arguments exports everything.
//
// Each feature's id is its FOID string, properties carry the decoded
// attributes plus "objectClass" and "objl", and coordinates are the
// decoded [lon, lat] values unchanged. Go's float formatting emits the
// shortest decimal that parses back to the same value, so coordinates
// survive a round trip exactly. Features with unresolved geometry get
// a null geometry member rather than being dropped.
func (fs *FeatureSet) ToGeoJSON(objectClasses ...string) ([]byte, error) {
	classes := make(map[string]bool, len(objectClasses))
	for _, c := range objectClasses {
		classes[c] = true
	}

	collection := geojsonCollection{
		Type:     "FeatureCollection",
		Features: make([]geojsonFeature, 0, len(fs.features)),
	}

	for i := range fs.features {
		f := &fs.features[i]
		if len(classes) > 0 && !classes[f.objectClass] {
			continue
		}

		properties := make(map[string]interface{}, len(f.attributes)+2)
		for k, v := range f.attributes {
			properties[k] = v
		}
		properties["objectClass"] = f.objectClass
		properties["objl"] = f.objectCode

		collection.Features = append(collection.Features, geojsonFeature{
			Type:       "Feature",
			ID:         f.id.String(),
			Geometry:   geometryToGeoJSON(f.geometry),
			Properties: properties,
		})
	}

	return json.Marshal(collection)
}

// geometryToGeoJSON maps a geometry to its GeoJSON member, nil for
// unresolved geometry.
func geometryToGeoJSON(g Geometry) *geojsonGeometry {
	if len(g.Coordinates) == 0 {
		return nil
	}
	switch g.Type {
	case GeometryTypePoint:
		if len(g.Coordinates) == 1 {
			return &geojsonGeometry{Type: "Point", Coordinates: g.Coordinates[0]}
		}
		// Point features with several positions (soundings) become a
		// MultiPoint.
		return &geojsonGeometry{Type: "MultiPoint", Coordinates: g.Coordinates}
	case GeometryTypeLineString:
		return &geojsonGeometry{Type: "LineString", Coordinates: g.Coordinates}
	case GeometryTypePolygon:
		return &geojsonGeometry{Type: "Polygon", Coordinates: [][][]float64{g.Coordinates}}
	default:
		return nil
	}
}
