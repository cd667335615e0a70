package layer

import (
	"geomap/internal/geom"
	"geomap/internal/render"
)

// Symbol turns a feature into primitives and can repaint them in place.
// Update must only change paint, never geometry.
type Symbol[F Feature] interface {
	Render(f F, g geom.Geometry[render.WorldPoint], b *render.Bundle, minResolution float64) []render.PrimitiveID
	Update(f F, ids []render.PrimitiveID, b *render.Bundle) error
}

// Selection alphas used by SelectableSymbol.
const (
	SelectedAlpha   = 255
	UnselectedAlpha = 150
)

// SimplePolygonSymbol fills polygon features. Other kinds are ignored.
type SimplePolygonSymbol[F Feature] struct {
	Fill render.Color
}

func (s SimplePolygonSymbol[F]) Render(_ F, g geom.Geometry[render.WorldPoint], b *render.Bundle, minRes float64) []render.PrimitiveID {
	return addPolygons(g, b, render.PolygonPaint{Color: s.Fill}, minRes)
}

func (s SimplePolygonSymbol[F]) Update(_ F, ids []render.PrimitiveID, b *render.Bundle) error {
	return b.Update(ids, render.PolygonPaint{Color: s.Fill})
}

// SimpleLineSymbol strokes line features.
type SimpleLineSymbol[F Feature] struct {
	Color render.Color
	Width float64
}

func (s SimpleLineSymbol[F]) paint() render.LinePaint {
	return render.LinePaint{Color: s.Color, Width: s.Width, Cap: render.CapRound}
}

func (s SimpleLineSymbol[F]) Render(_ F, g geom.Geometry[render.WorldPoint], b *render.Bundle, minRes float64) []render.PrimitiveID {
	return addLines(g, b, s.paint(), minRes)
}

func (s SimpleLineSymbol[F]) Update(_ F, ids []render.PrimitiveID, b *render.Bundle) error {
	return b.Update(ids, s.paint())
}

// SimplePointSymbol draws point features as dots.
type SimplePointSymbol[F Feature] struct {
	Color render.Color
	Size  float64
}

func (s SimplePointSymbol[F]) Render(_ F, g geom.Geometry[render.WorldPoint], b *render.Bundle, minRes float64) []render.PrimitiveID {
	return addPoints(g, b, render.PointPaint{Color: s.Color, Size: s.Size}, minRes)
}

func (s SimplePointSymbol[F]) Update(_ F, ids []render.PrimitiveID, b *render.Bundle) error {
	return b.Update(ids, render.PointPaint{Color: s.Color, Size: s.Size})
}

// SelectableSymbol draws any geometry kind in one color, opaque when the
// feature is selected and translucent otherwise.
type SelectableSymbol[F Feature] struct {
	Color     render.Color
	LineWidth float64
	PointSize float64
}

func (s SelectableSymbol[F]) color(f F) render.Color {
	if f.IsSelected() {
		return s.Color.WithAlpha(SelectedAlpha)
	}
	return s.Color.WithAlpha(UnselectedAlpha)
}

func (s SelectableSymbol[F]) paint(f F, kind render.PrimitiveKind) render.Paint {
	c := s.color(f)
	switch kind {
	case render.KindPoint:
		return render.PointPaint{Color: c, Size: s.PointSize}
	case render.KindLine:
		return render.LinePaint{Color: c, Width: s.LineWidth, Cap: render.CapRound}
	}
	return render.PolygonPaint{Color: c}
}

func (s SelectableSymbol[F]) Render(f F, g geom.Geometry[render.WorldPoint], b *render.Bundle, minRes float64) []render.PrimitiveID {
	switch g.Kind() {
	case geom.KindPoint, geom.KindMultiPoint:
		return addPoints(g, b, s.paint(f, render.KindPoint).(render.PointPaint), minRes)
	case geom.KindLineString, geom.KindMultiLineString:
		return addLines(g, b, s.paint(f, render.KindLine).(render.LinePaint), minRes)
	}
	return addPolygons(g, b, s.paint(f, render.KindPolygon).(render.PolygonPaint), minRes)
}

func (s SelectableSymbol[F]) Update(f F, ids []render.PrimitiveID, b *render.Bundle) error {
	if len(ids) == 0 {
		return nil
	}
	kind := render.KindPolygon
	if prim, ok := b.Get(ids[0]); ok {
		kind = prim.Kind
	}
	return b.Update(ids, s.paint(f, kind))
}

func addPolygons(g geom.Geometry[render.WorldPoint], b *render.Bundle, paint render.PolygonPaint, minRes float64) []render.PrimitiveID {
	switch g := g.(type) {
	case geom.Polygon[render.WorldPoint]:
		return []render.PrimitiveID{b.AddPolygon(g, paint, minRes)}
	case geom.MultiPolygon[render.WorldPoint]:
		return b.AddPolygons(g, paint, minRes)
	}
	return nil
}

func addLines(g geom.Geometry[render.WorldPoint], b *render.Bundle, paint render.LinePaint, minRes float64) []render.PrimitiveID {
	switch g := g.(type) {
	case geom.Contour[render.WorldPoint]:
		return []render.PrimitiveID{b.AddLine(g, paint, minRes)}
	case geom.MultiLineString[render.WorldPoint]:
		return b.AddLines(g, paint, minRes)
	}
	return nil
}

func addPoints(g geom.Geometry[render.WorldPoint], b *render.Bundle, paint render.PointPaint, minRes float64) []render.PrimitiveID {
	switch g := g.(type) {
	case geom.PointGeom[render.WorldPoint]:
		return []render.PrimitiveID{b.AddPoint(g.Point, paint, minRes)}
	case geom.MultiPoint[render.WorldPoint]:
		return b.AddPoints(g, paint, minRes)
	}
	return nil
}
