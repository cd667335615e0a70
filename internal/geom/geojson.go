package geom

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb/geojson"
)

// ErrNoGeometries is returned by the loaders when a file parses but holds nothing drawable.
var ErrNoGeometries = errors.New("no geometries found")

// LoadGeo reads a GeoJSON file holding a FeatureCollection, a single Feature
// or a bare geometry.
func LoadGeo(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseGeoJSON(raw)
}

// ParseGeoJSON decodes GeoJSON bytes. Feature properties are kept.
func ParseGeoJSON(raw []byte) (Data, error) {
	var d Data
	if fc, err := geojson.UnmarshalFeatureCollection(raw); err == nil {
		for i, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			if err := d.addOrb(f.Geometry, f.Properties); err != nil {
				return Data{}, errors.Wrapf(err, "feature %d", i)
			}
		}
	} else if f, ferr := geojson.UnmarshalFeature(raw); ferr == nil && f.Type == "Feature" {
		if f.Geometry != nil {
			if err := d.addOrb(f.Geometry, f.Properties); err != nil {
				return Data{}, err
			}
		}
	} else {
		g, gerr := geojson.UnmarshalGeometry(raw)
		if gerr != nil {
			return Data{}, errors.Wrap(gerr, "geojson")
		}
		if err := d.addOrb(g.Geometry(), nil); err != nil {
			return Data{}, err
		}
	}
	if len(d.Features) == 0 {
		return Data{}, ErrNoGeometries
	}
	return d, nil
}
