package mvt

import (
	"geomap/internal/geom"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
)

// encodeTile writes t as an uncompressed MVT payload. Polygon rings are
// written in the order stored, so fixtures must keep MVT winding (outer rings
// clockwise in tile space) for Decode to tell holes from new polygons.
func encodeTile(t *Tile) ([]byte, error) {
	layers := make(mvt.Layers, 0, len(t.Layers))
	for _, l := range t.Layers {
		extent := l.Extent
		if extent == 0 {
			extent = mvt.DefaultExtent
		}
		version := l.Version
		if version == 0 {
			version = 2
		}
		ml := &mvt.Layer{Name: l.Name, Version: version, Extent: extent}
		for _, f := range l.Features {
			gf := geojson.NewFeature(toOrb(f.Geometry))
			if f.HasID {
				gf.ID = f.ID
			}
			for k, v := range f.Properties {
				gf.Properties[k] = v
			}
			ml.Features = append(ml.Features, gf)
		}
		layers = append(layers, ml)
	}
	return mvt.Marshal(layers)
}

func orbPoint(p Point) orb.Point { return orb.Point{float64(p.X), float64(p.Y)} }

func orbLine(c geom.Contour[Point]) orb.LineString {
	out := make(orb.LineString, len(c.Points))
	for i, p := range c.Points {
		out[i] = orbPoint(p)
	}
	return out
}

func orbRing(c geom.Contour[Point]) orb.Ring {
	r := orb.Ring(orbLine(c))
	if len(r) > 0 {
		r = append(r, r[0])
	}
	return r
}

func orbPolygon(p geom.Polygon[Point]) orb.Polygon {
	out := orb.Polygon{orbRing(p.Outer)}
	for _, h := range p.Inner {
		out = append(out, orbRing(h))
	}
	return out
}

func toOrb(g Geometry) orb.Geometry {
	switch g := g.(type) {
	case Points:
		if len(g) == 1 {
			return orbPoint(g[0])
		}
		mp := make(orb.MultiPoint, len(g))
		for i, p := range g {
			mp[i] = orbPoint(p)
		}
		return mp
	case LineStrings:
		if len(g) == 1 {
			return orbLine(g[0])
		}
		mls := make(orb.MultiLineString, len(g))
		for i, c := range g {
			mls[i] = orbLine(c)
		}
		return mls
	case Polygons:
		if len(g) == 1 {
			return orbPolygon(g[0])
		}
		mp := make(orb.MultiPolygon, len(g))
		for i, p := range g {
			mp[i] = orbPolygon(p)
		}
		return mp
	}
	return nil
}
