// Package layer holds renderable map layers: in-memory feature layers and
// layers of decoded vector tiles. Both keep their render bundles current when
// selection changes.
package layer

import (
	"geomap/internal/geom"
)

// Feature is an item of a FeatureLayer. Geometry is geographic; the layer
// projects it.
type Feature interface {
	Geometry() geom.Geometry[geom.GeoPoint]
	IsSelected() bool
	SetSelected(selected bool)
}

// GeoFeature is a loaded file feature.
type GeoFeature struct {
	geometry   geom.Geometry[geom.GeoPoint]
	Properties map[string]any
	selected   bool
}

// NewGeoFeature wraps a geometry and its attributes.
func NewGeoFeature(g geom.Geometry[geom.GeoPoint], props map[string]any) *GeoFeature {
	return &GeoFeature{geometry: g, Properties: props}
}

func (f *GeoFeature) Geometry() geom.Geometry[geom.GeoPoint] { return f.geometry }
func (f *GeoFeature) IsSelected() bool                       { return f.selected }
func (f *GeoFeature) SetSelected(selected bool)              { f.selected = selected }

// FromData converts loader output into layer features, in file order.
func FromData(d geom.Data) []*GeoFeature {
	out := make([]*GeoFeature, len(d.Features))
	for i, f := range d.Features {
		out[i] = NewGeoFeature(f.Geometry, f.Properties)
	}
	return out
}
