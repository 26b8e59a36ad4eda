package parser

import (
	"fmt"
)

// ValidateCoordinate checks a single coordinate pair against geographic
// bounds.
func ValidateCoordinate(lat, lon float64) error {
	if lat < -90.0 || lat > 90.0 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	if lon < -180.0 || lon > 180.0 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	return nil
}

// ValidateGeometry checks a geometry's coordinates per S-57 §7.3.
// Empty geometries are valid: meta-features (PRIM=255) have no spatial
// representation and degenerate shapes are kept rather than rejected.
func ValidateGeometry(geometry *Geometry) error {
	if geometry == nil {
		return &ErrInvalidGeometry{Reason: "geometry is nil"}
	}

	// Soundings (SOUNDG) use 3D coordinates [lon, lat, depth]; the
	// depth is unconstrained.
	for i, coord := range geometry.Coordinates {
		if len(coord) < 2 || len(coord) > 3 {
			return &ErrInvalidGeometry{
				Type:   geometry.Type,
				Reason: fmt.Sprintf("coordinate %d must have 2 or 3 values, got %d", i, len(coord)),
			}
		}
		lon, lat := coord[0], coord[1]
		if err := ValidateCoordinate(lat, lon); err != nil {
			return &ErrInvalidGeometry{
				Type:   geometry.Type,
				Reason: fmt.Sprintf("coordinate %d invalid: %v", i, err),
			}
		}
	}

	return nil
}

// ValidateFeature checks a decoded feature for internal consistency.
func ValidateFeature(feature *Feature) error {
	if feature == nil {
		return fmt.Errorf("feature is nil")
	}
	if feature.ObjectClass == "" {
		return fmt.Errorf("feature %s has empty object class", feature.FOID)
	}
	if err := ValidateGeometry(&feature.Geometry); err != nil {
		return fmt.Errorf("feature %s: %w", feature.FOID, err)
	}
	return nil
}
