// Package raster draws render bundles into images with an anti-aliasing
// software rasteriser.
package raster

import (
	"image"
	"image/draw"
	"math"

	"geomap/internal/geom"
	"geomap/internal/render"
	"geomap/internal/view"

	"golang.org/x/image/vector"
)

// circleSegments approximates dots and round caps.
const circleSegments = 16

// Canvas is an RGBA image seen through a map view.
type Canvas struct {
	img  *image.RGBA
	view view.MapView
}

// NewCanvas allocates a canvas the size of v, filled with bg.
func NewCanvas(v view.MapView, bg render.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg.NRGBA()), image.Point{}, draw.Src)
	return &Canvas{img: img, view: v}
}

// Image returns the drawn image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Render draws bundles in order onto a new canvas.
func Render(v view.MapView, bg render.Color, bundles ...*render.Bundle) *image.RGBA {
	c := NewCanvas(v, bg)
	for _, b := range bundles {
		c.Draw(b)
	}
	return c.img
}

type pt struct{ x, y float32 }

func (c *Canvas) screen(p render.WorldPoint) pt {
	x, y := c.view.MapToScreen(geom.Vec2[float64]{X: p.X, Y: p.Y})
	return pt{float32(x), float32(y)}
}

// clipRect is the screen rectangle the bundle may draw into.
func (c *Canvas) clipRect(b *render.Bundle) image.Rectangle {
	full := c.img.Bounds()
	clip, ok := b.Clip()
	if !ok {
		return full
	}
	r, ok := clip.BoundingRect()
	if !ok {
		return image.Rectangle{}
	}
	x0, y0 := c.view.MapToScreen(geom.Vec2[float64]{X: r.XMin, Y: r.YMax})
	x1, y1 := c.view.MapToScreen(geom.Vec2[float64]{X: r.XMax, Y: r.YMin})
	return image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	).Intersect(full)
}

// Draw paints every primitive of b, bounded by the bundle clip area.
func (c *Canvas) Draw(b *render.Bundle) {
	r := c.clipRect(b)
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	off := pt{float32(r.Min.X), float32(r.Min.Y)}
	for p := range b.Primitives() {
		z.Reset(r.Dx(), r.Dy())
		var col render.Color
		switch paint := p.Paint.(type) {
		case render.PolygonPaint:
			col = paint.Color
			c.polygon(z, off, p.Area)
		case render.LinePaint:
			col = paint.Color
			c.line(z, off, p.Line, paint, p.MinResolution)
		case render.PointPaint:
			col = paint.Color
			circle(z, c.screen(p.Point).sub(off), float32(max(paint.Size, 1))/2)
		default:
			continue
		}
		if col.A == 0 {
			continue
		}
		z.Draw(c.img, r, image.NewUniform(col.NRGBA()), image.Point{})
	}
}

func (a pt) sub(b pt) pt { return pt{a.x - b.x, a.y - b.y} }

func signedArea(ring []pt) float32 {
	var s float32
	for i := range ring {
		j := (i + 1) % len(ring)
		s += ring[i].x*ring[j].y - ring[j].x*ring[i].y
	}
	return s / 2
}

func (c *Canvas) ring(con geom.Contour[render.WorldPoint], off pt) []pt {
	out := make([]pt, 0, len(con.Points))
	for _, p := range con.Points {
		out = append(out, c.screen(p).sub(off))
	}
	return out
}

// polygon adds the rings with holes wound against the outer ring, so the
// accumulated coverage cancels inside holes.
func (c *Canvas) polygon(z *vector.Rasterizer, off pt, poly geom.Polygon[render.WorldPoint]) {
	outer := c.ring(poly.Outer, off)
	if len(outer) < 3 {
		return
	}
	sign := signedArea(outer) > 0
	addRing(z, outer, false)
	for _, h := range poly.Inner {
		hole := c.ring(h, off)
		if len(hole) < 3 {
			continue
		}
		addRing(z, hole, (signedArea(hole) > 0) == sign)
	}
}

func addRing(z *vector.Rasterizer, ring []pt, reverse bool) {
	if reverse {
		rev := make([]pt, len(ring))
		for i, p := range ring {
			rev[len(ring)-1-i] = p
		}
		ring = rev
	}
	z.MoveTo(ring[0].x, ring[0].y)
	for _, p := range ring[1:] {
		z.LineTo(p.x, p.y)
	}
	z.ClosePath()
}

// line strokes each segment as a quad. Vertices closer together than the
// primitive's resolution are merged first.
func (c *Canvas) line(z *vector.Rasterizer, off pt, con geom.Contour[render.WorldPoint], paint render.LinePaint, minRes float64) {
	var pts []pt
	var last render.WorldPoint
	for i, p := range con.Points {
		if i > 0 && i < len(con.Points)-1 && math.Hypot(p.X-last.X, p.Y-last.Y) < minRes {
			continue
		}
		pts = append(pts, c.screen(p).sub(off))
		last = p
	}
	if con.Closed && len(pts) > 2 {
		pts = append(pts, pts[0])
	}
	hw := float32(max(paint.Width, 1)) / 2
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.x-a.x, b.y-a.y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		if paint.Cap == render.CapSquare {
			ex, ey := dx/l*hw, dy/l*hw
			a = pt{a.x - ex, a.y - ey}
			b = pt{b.x + ex, b.y + ey}
		}
		z.MoveTo(a.x+nx, a.y+ny)
		z.LineTo(b.x+nx, b.y+ny)
		z.LineTo(b.x-nx, b.y-ny)
		z.LineTo(a.x-nx, a.y-ny)
		z.ClosePath()
	}
	if paint.Cap == render.CapRound {
		for _, p := range pts {
			circle(z, p, hw)
		}
	}
}

func circle(z *vector.Rasterizer, c pt, r float32) {
	for i := 0; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		x := c.x + r*float32(math.Cos(a))
		y := c.y + r*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}
