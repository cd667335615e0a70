package geom

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Feature is a loaded geometry with its attributes, in geographic coordinates.
type Feature struct {
	Geometry   Geometry[GeoPoint]
	Properties map[string]any
}

// Data is what the file loaders produce for a feature layer.
type Data struct {
	Features []Feature
	Bounds   Rect
	// Columns is the union of property keys in first-seen order.
	Columns []string
}

// Counts returns the number of point, line and polygon parts.
func (d Data) Counts() (points, lines, polygons int) {
	for _, f := range d.Features {
		switch f.Geometry.Kind() {
		case KindPoint, KindMultiPoint:
			points += f.Geometry.Parts()
		case KindLineString, KindMultiLineString:
			lines += f.Geometry.Parts()
		case KindPolygon, KindMultiPolygon:
			polygons += f.Geometry.Parts()
		}
	}
	return points, lines, polygons
}

func (d *Data) add(g Geometry[GeoPoint], props map[string]any) {
	r, ok := g.BoundingRect()
	if !ok {
		return
	}
	if len(d.Features) == 0 {
		d.Bounds = r
	} else {
		d.Bounds = d.Bounds.Union(r)
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		seen[c] = true
	}
	for k := range props {
		if !seen[k] {
			seen[k] = true
			d.Columns = append(d.Columns, k)
		}
	}
	d.Features = append(d.Features, Feature{Geometry: g, Properties: props})
}

func (d *Data) addOrb(g orb.Geometry, props map[string]any) error {
	if c, ok := g.(orb.Collection); ok {
		for _, member := range c {
			if err := d.addOrb(member, props); err != nil {
				return err
			}
		}
		return nil
	}
	gg, err := FromOrb(g)
	if err != nil {
		return err
	}
	d.add(gg, props)
	return nil
}

func geoPoint(p orb.Point) GeoPoint { return GeoPoint{Lat: p[1], Lon: p[0]} }

func geoPoints(ps []orb.Point) []GeoPoint {
	out := make([]GeoPoint, len(ps))
	for i, p := range ps {
		out[i] = geoPoint(p)
	}
	return out
}

func geoPolygon(p orb.Polygon) (Polygon[GeoPoint], bool) {
	if len(p) == 0 {
		return Polygon[GeoPoint]{}, false
	}
	poly := Polygon[GeoPoint]{Outer: ClosedContour(geoPoints(p[0]))}
	for _, r := range p[1:] {
		poly.Inner = append(poly.Inner, ClosedContour(geoPoints(r)))
	}
	return poly, true
}

// FromOrb converts an orb geometry holding lon/lat coordinates.
// Collections must be flattened by the caller.
func FromOrb(g orb.Geometry) (Geometry[GeoPoint], error) {
	switch g := g.(type) {
	case orb.Point:
		return PointGeom[GeoPoint]{Point: geoPoint(g)}, nil
	case orb.MultiPoint:
		return MultiPoint[GeoPoint](geoPoints(g)), nil
	case orb.LineString:
		return OpenContour(geoPoints(g)), nil
	case orb.MultiLineString:
		out := make(MultiLineString[GeoPoint], 0, len(g))
		for _, ls := range g {
			out = append(out, OpenContour(geoPoints(ls)))
		}
		return out, nil
	case orb.Ring:
		return NewPolygon(geoPoints(g)), nil
	case orb.Polygon:
		if poly, ok := geoPolygon(g); ok {
			return poly, nil
		}
		return nil, fmt.Errorf("empty polygon")
	case orb.MultiPolygon:
		out := make(MultiPolygon[GeoPoint], 0, len(g))
		for _, p := range g {
			if poly, ok := geoPolygon(p); ok {
				out = append(out, poly)
			}
		}
		return out, nil
	case orb.Bound:
		return FromOrb(g.ToPolygon())
	}
	return nil, fmt.Errorf("unsupported geometry type %T", g)
}
