package tui

import (
	"math"
	"strings"

	"geomap/internal/geom"
	"geomap/internal/render"
	"geomap/internal/vt"
)

// mapBackground is used when no tile style provides one.
var mapBackground = render.MustParseColor("#0B0F14")

// microXY maps a map-space point onto the braille microgrid. The view is
// sized in micro pixels, 2x4 per cell.
func (m Model) microXY(p render.WorldPoint) (int, int) {
	x, y := m.view.MapToScreen(geom.Vec2[float64]{X: p.X, Y: p.Y})
	return int(math.Floor(x)), int(math.Floor(y))
}

// cellToMap converts a map cell to map coordinates at the cell center.
func (m Model) cellToMap(cx, cy int) geom.Vec2[float64] {
	return m.view.ScreenToMap(float64(cx*2)+1, float64(cy*4)+2)
}

// cellToLonLat converts a map cell to geographic coordinates.
func (m Model) cellToLonLat(cx, cy int) (float64, float64, bool) {
	g, ok := m.view.GeoProjection().Project(geom.Vec2[float64]{X: float64(cx*2) + 1, Y: float64(cy*4) + 2})
	if !ok {
		return 0, 0, false
	}
	return g.Lon, g.Lat, true
}

// pickTolerance is the hit radius in map units: about one cell.
func (m Model) pickTolerance() float64 { return m.view.Resolution * 2 }

func (m Model) renderBrailleMap(w, h int) string {
	bg := mapBackground
	if m.tiles != nil && m.showTiles {
		if c := m.tiles.Style().Background; c.A > 0 {
			bg = c
		}
	}
	br := newBrailleBuf(w, h, bg)

	if m.tiles != nil && m.showTiles {
		m.tiles.View(func(tiles []*vt.Output) {
			for _, t := range tiles {
				m.drawBundle(br, t.Bundle, &t.Background)
			}
		})
	}
	if m.features != nil {
		m.features.View(func(b *render.Bundle) {
			m.drawBundle(br, b, nil)
		})
	}
	if m.hovering {
		br.markCell(m.hoverCellX, m.hoverCellY)
	}
	return strings.Join(br.toLines(), "\n")
}

// drawBundle draws b in paint order. The tile background primitive, when
// given, is skipped: it would set every dot and hide the basemap texture.
func (m Model) drawBundle(br *brailleBuf, b *render.Bundle, background *render.PrimitiveID) {
	br.resetClip()
	if clip, ok := b.Clip(); ok {
		if r, ok := clip.BoundingRect(); ok {
			x0, y0 := m.microXY(render.WorldPoint{X: r.XMin, Y: r.YMax})
			x1, y1 := m.microXY(render.WorldPoint{X: r.XMax, Y: r.YMin})
			if x1 < 0 || y1 < 0 || x0 >= br.w*2 || y0 >= br.h*4 {
				return
			}
			br.clip(x0, y0, x1-1, y1-1)
		}
	}
	for p := range b.Primitives() {
		if background != nil && p.ID == *background {
			continue
		}
		br.next()
		switch paint := p.Paint.(type) {
		case render.PolygonPaint:
			if !m.showPolys || paint.Color.A == 0 {
				continue
			}
			m.drawPolygon(br, p.Area, paint.Color)
		case render.LinePaint:
			if !m.showLines || paint.Color.A == 0 {
				continue
			}
			m.drawContour(br, p.Line, paint.Color)
		case render.PointPaint:
			if !m.showPoints || paint.Color.A == 0 {
				continue
			}
			x, y := m.microXY(p.Point)
			br.setPixel(x, y, paint.Color)
		}
	}
	br.resetClip()
}

func (m Model) drawContour(br *brailleBuf, c geom.Contour[render.WorldPoint], col render.Color) {
	if len(c.Points) == 0 {
		return
	}
	px, py := m.microXY(c.Points[0])
	br.setPixel(px, py, col)
	for _, p := range c.Points[1:] {
		x, y := m.microXY(p)
		br.drawLineMicro(px, py, x, y, col)
		px, py = x, y
	}
	if c.Closed && len(c.Points) > 2 {
		x, y := m.microXY(c.Points[0])
		br.drawLineMicro(px, py, x, y, col)
	}
}

// drawPolygon fills on the microgrid, then traces the rings so thin
// polygons stay visible.
func (m Model) drawPolygon(br *brailleBuf, poly geom.Polygon[render.WorldPoint], col render.Color) {
	var rings [][][2]int
	for ring := range poly.IterContours() {
		if len(ring.Points) < 3 {
			continue
		}
		sm := make([][2]int, 0, len(ring.Points))
		for _, p := range ring.Points {
			x, y := m.microXY(p)
			sm = append(sm, [2]int{x, y})
		}
		rings = append(rings, sm)
	}
	if len(rings) == 0 {
		return
	}
	br.fillRings(rings, col)
	for ring := range poly.IterContours() {
		m.drawContour(br, ring, col)
	}
}
