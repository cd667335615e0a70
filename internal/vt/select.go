package vt

import (
	"geomap/internal/errs"
	"geomap/internal/geom"
	"geomap/internal/mvt"
	"geomap/internal/render"
	"geomap/internal/style"
)

// ToTileLocal maps a map-space point into the local space of a layer with
// the given extent. It is the inverse of the decode transform.
func ToTileLocal(p geom.Vec2[float64], bbox geom.Rect, tileResolution float64, extent uint32) geom.Vec2[float64] {
	scale := float64(extent) / tileResolution
	if extent == 0 {
		scale = DefaultExtent / tileResolution
	}
	return geom.Vec2[float64]{
		X: (p.X - bbox.XMin) * scale,
		Y: (bbox.YMax - p.Y) * scale,
	}
}

// FeatureAt finds the topmost feature of tile under a map-space point.
// Tolerance is in map units and applies to points and lines.
func FeatureAt(tile *mvt.Tile, bbox geom.Rect, tileResolution float64, p geom.Vec2[float64], tolerance float64) (mvt.FeatureRef, bool) {
	return featureAt(tile, bbox, tileResolution, p, tolerance, func(mvt.FeatureRef) bool { return true })
}

// FeatureAt finds the topmost drawn feature under a map-space point.
func (o *Output) FeatureAt(p geom.Vec2[float64], tolerance float64) (mvt.FeatureRef, bool) {
	if !o.BBox.Contains(p.X, p.Y) {
		return mvt.FeatureRef{}, false
	}
	return featureAt(o.Tile, o.BBox, o.TileResolution, p, tolerance, func(ref mvt.FeatureRef) bool {
		return len(o.ids(ref)) > 0
	})
}

func featureAt(tile *mvt.Tile, bbox geom.Rect, tileRes float64, p geom.Vec2[float64], tolerance float64, drawn func(mvt.FeatureRef) bool) (mvt.FeatureRef, bool) {
	for li := len(tile.Layers) - 1; li >= 0; li-- {
		l := &tile.Layers[li]
		local := ToTileLocal(p, bbox, tileRes, l.Extent)
		tol := tolerance * extentOf(l) / tileRes
		for fi := len(l.Features) - 1; fi >= 0; fi-- {
			ref := mvt.FeatureRef{Layer: li, Feature: fi}
			if !drawn(ref) {
				continue
			}
			if hit(l.Features[fi].Geometry, local, tol) {
				return ref, true
			}
		}
	}
	return mvt.FeatureRef{}, false
}

func hit(g mvt.Geometry, p geom.Vec2[float64], tolerance float64) bool {
	switch g := g.(type) {
	case mvt.Points:
		return geom.MultiPoint[mvt.Point](g).Contains(p, tolerance)
	case mvt.LineStrings:
		return geom.MultiLineString[mvt.Point](g).Contains(p, tolerance)
	case mvt.Polygons:
		return geom.MultiPolygon[mvt.Point](g).Contains(p, tolerance)
	}
	return false
}

func (o *Output) ids(ref mvt.FeatureRef) []render.PrimitiveID {
	if ref.Layer < 0 || ref.Layer >= len(o.FeatureIDs) {
		return nil
	}
	l := o.FeatureIDs[ref.Layer]
	if ref.Feature < 0 || ref.Feature >= len(l) {
		return nil
	}
	return l[ref.Feature]
}

// PrimitiveIDs returns the primitives emitted for a feature.
func (o *Output) PrimitiveIDs(ref mvt.FeatureRef) []render.PrimitiveID {
	return o.ids(ref)
}

// Restyle recomputes the paint of one feature, after its Selected flag
// changed, and updates exactly its primitives in the bundle.
func Restyle(o *Output, st *style.VectorTileStyle, ref mvt.FeatureRef) error {
	f, ok := o.Tile.Feature(ref)
	if !ok {
		return errs.Configurationf("tile %s has no feature %d/%d", o.Index, ref.Layer, ref.Feature)
	}
	ids := o.ids(ref)
	if len(ids) == 0 {
		return nil
	}
	layer := o.Tile.Layers[ref.Layer].Name
	switch f.Geometry.(type) {
	case mvt.LineStrings:
		if paint, ok := LinePaint(st, layer, f); ok {
			return o.Bundle.Update(ids, paint)
		}
	case mvt.Polygons:
		if paint, ok := PolygonPaint(st, layer, f); ok {
			return o.Bundle.Update(ids, paint)
		}
	}
	return nil
}

// SetSelected flips the selection flag of a feature and restyles it.
func (o *Output) SetSelected(st *style.VectorTileStyle, ref mvt.FeatureRef, selected bool) error {
	f, ok := o.Tile.Feature(ref)
	if !ok {
		return errs.Configurationf("tile %s has no feature %d/%d", o.Index, ref.Layer, ref.Feature)
	}
	if f.Selected == selected {
		return nil
	}
	f.Selected = selected
	return Restyle(o, st, ref)
}
