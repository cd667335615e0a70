// Package mvt decodes Mapbox vector tiles into tile-local geometry.
package mvt

import (
	"fmt"
	"iter"

	"geomap/internal/geom"
)

// Point is a tile-local integer coordinate. Y grows downward.
type Point = geom.Vec2[int32]

// GeomKind is the geometry kind of a feature.
type GeomKind uint8

const (
	KindPoint GeomKind = iota + 1
	KindLineString
	KindPolygon
)

func (k GeomKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLineString:
		return "line"
	case KindPolygon:
		return "polygon"
	}
	return fmt.Sprintf("GeomKind(%d)", uint8(k))
}

// Geometry is one of Points, LineStrings or Polygons.
type Geometry interface {
	Kind() GeomKind
	BoundingRect() (geom.Rect, bool)
	sealed()
}

// Points is a point set.
type Points []Point

// LineStrings is a set of open contours.
type LineStrings []geom.Contour[Point]

// Polygons is a set of polygons.
type Polygons []geom.Polygon[Point]

func (Points) Kind() GeomKind      { return KindPoint }
func (LineStrings) Kind() GeomKind { return KindLineString }
func (Polygons) Kind() GeomKind    { return KindPolygon }

func (Points) sealed()      {}
func (LineStrings) sealed() {}
func (Polygons) sealed()    {}

func (g Points) BoundingRect() (geom.Rect, bool) { return geom.BoundsOf([]Point(g)) }

func (g LineStrings) BoundingRect() (geom.Rect, bool) {
	return geom.MultiLineString[Point](g).BoundingRect()
}

func (g Polygons) BoundingRect() (geom.Rect, bool) {
	return geom.MultiPolygon[Point](g).BoundingRect()
}

// Feature is a decoded tile feature.
type Feature struct {
	ID         uint64
	HasID      bool
	Properties map[string]any
	Geometry   Geometry
	// Selected is display state owned by the layer holding the tile.
	Selected bool
}

// Layer is a named, ordered list of features.
type Layer struct {
	Name     string
	Version  uint32
	Extent   uint32
	Features []Feature
}

// Tile holds the layers of one tile in wire order.
type Tile struct {
	Layers []Layer
}

// Layer returns the first layer with the given name.
func (t *Tile) Layer(name string) (*Layer, bool) {
	for i := range t.Layers {
		if t.Layers[i].Name == name {
			return &t.Layers[i], true
		}
	}
	return nil, false
}

// FeatureRef addresses a feature inside a tile.
type FeatureRef struct {
	Layer, Feature int
}

// Features yields every feature with its address, in paint order.
func (t *Tile) Features() iter.Seq2[FeatureRef, *Feature] {
	return func(yield func(FeatureRef, *Feature) bool) {
		for li := range t.Layers {
			l := &t.Layers[li]
			for fi := range l.Features {
				if !yield(FeatureRef{li, fi}, &l.Features[fi]) {
					return
				}
			}
		}
	}
}

// Feature returns the feature at ref.
func (t *Tile) Feature(ref FeatureRef) (*Feature, bool) {
	if ref.Layer < 0 || ref.Layer >= len(t.Layers) {
		return nil, false
	}
	l := &t.Layers[ref.Layer]
	if ref.Feature < 0 || ref.Feature >= len(l.Features) {
		return nil, false
	}
	return &l.Features[ref.Feature], true
}

// Counts returns the number of features per kind.
func (t *Tile) Counts() map[GeomKind]int {
	out := make(map[GeomKind]int, 3)
	for _, f := range t.Features() {
		if f.Geometry != nil {
			out[f.Geometry.Kind()]++
		}
	}
	return out
}
