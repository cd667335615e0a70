// Package view maps between screen pixels and map coordinates.
package view

import (
	"math"

	"geomap/internal/geom"
	"geomap/internal/proj"
)

// Resolution limits. One pixel never covers more than the web z0 resolution
// or less than a centimetre.
const (
	MaxResolution = 156543.03392800014
	MinResolution = 0.01
)

// MapView is a viewport: a map-space center, a resolution in map units per
// pixel and a pixel size. Screen Y grows downward, map Y upward. A MapView
// is a value; the mutating helpers return a modified copy.
type MapView struct {
	Center     geom.Vec2[float64]
	Resolution float64
	Width      int
	Height     int
	Crs        proj.Crs
}

// New returns a view of the given pixel size centered on c.
func New(c geom.Vec2[float64], resolution float64, width, height int, crs proj.Crs) MapView {
	return MapView{Center: c, Resolution: clampRes(resolution), Width: width, Height: height, Crs: crs}
}

func clampRes(r float64) float64 {
	if math.IsNaN(r) || r <= 0 {
		return MaxResolution
	}
	return math.Min(math.Max(r, MinResolution), MaxResolution)
}

// ScreenToMap converts a pixel position into map coordinates.
func (v MapView) ScreenToMap(px, py float64) geom.Vec2[float64] {
	return geom.Vec2[float64]{
		X: v.Center.X + (px-float64(v.Width)/2)*v.Resolution,
		Y: v.Center.Y - (py-float64(v.Height)/2)*v.Resolution,
	}
}

// MapToScreen converts map coordinates into a pixel position.
func (v MapView) MapToScreen(p geom.Vec2[float64]) (px, py float64) {
	px = (p.X-v.Center.X)/v.Resolution + float64(v.Width)/2
	py = (v.Center.Y-p.Y)/v.Resolution + float64(v.Height)/2
	return px, py
}

// BBox is the map-space rectangle covered by the view.
func (v MapView) BBox() geom.Rect {
	a := v.ScreenToMap(0, 0)
	b := v.ScreenToMap(float64(v.Width), float64(v.Height))
	return geom.NewRect(a.X, a.Y, b.X, b.Y)
}

// Zoom scales the resolution by factor around the center. Factors above 1
// zoom out.
func (v MapView) Zoom(factor float64) MapView {
	v.Resolution = clampRes(v.Resolution * factor)
	return v
}

// ZoomAt zooms keeping the map point under pixel (px, py) in place.
func (v MapView) ZoomAt(factor, px, py float64) MapView {
	anchor := v.ScreenToMap(px, py)
	v = v.Zoom(factor)
	moved := v.ScreenToMap(px, py)
	v.Center = v.Center.Add(anchor.Sub(moved))
	return v
}

// Pan moves the view by a pixel offset. Positive dx shows what lies to the
// right, positive dy what lies below.
func (v MapView) Pan(dx, dy float64) MapView {
	v.Center.X += dx * v.Resolution
	v.Center.Y -= dy * v.Resolution
	return v
}

// Resize changes the pixel size keeping center and resolution.
func (v MapView) Resize(width, height int) MapView {
	v.Width, v.Height = width, height
	return v
}

// Fit centers r and picks the resolution that shows all of it, with margin
// as a fraction of the view left free.
func (v MapView) Fit(r geom.Rect, margin float64) MapView {
	if v.Width <= 0 || v.Height <= 0 {
		return v
	}
	free := 1 - margin
	if free <= 0 {
		free = 1
	}
	v.Center = r.Center()
	res := math.Max(r.Width()/(float64(v.Width)*free), r.Height()/(float64(v.Height)*free))
	if res <= 0 {
		res = v.Resolution
	}
	v.Resolution = clampRes(res)
	return v
}

// ScreenProjection maps pixels to map coordinates and back.
func (v MapView) ScreenProjection() proj.Invertible[geom.Vec2[float64], geom.Vec2[float64]] {
	return proj.InvertibleFunc[geom.Vec2[float64], geom.Vec2[float64]]{
		Forward: func(p geom.Vec2[float64]) (geom.Vec2[float64], bool) {
			if v.Resolution <= 0 {
				return geom.Vec2[float64]{}, false
			}
			return v.ScreenToMap(p.X, p.Y), true
		},
		Inverse: func(p geom.Vec2[float64]) (geom.Vec2[float64], bool) {
			if v.Resolution <= 0 {
				return geom.Vec2[float64]{}, false
			}
			x, y := v.MapToScreen(p)
			return geom.Vec2[float64]{X: x, Y: y}, true
		},
	}
}

// GeoProjection maps pixels to geographic coordinates through the view CRS.
func (v MapView) GeoProjection() proj.Invertible[geom.Vec2[float64], geom.GeoPoint] {
	return proj.ChainInvertible(v.ScreenProjection(), proj.Invert(v.Crs.Projection()))
}

// ToCrs builds the projection from this view's map space into another CRS,
// going through geographic coordinates.
func (v MapView) ToCrs(target proj.Crs) proj.Projection[geom.Vec2[float64], geom.Vec2[float64]] {
	if target == v.Crs {
		return proj.Identity[geom.Vec2[float64]]()
	}
	return proj.Chain[geom.Vec2[float64], geom.GeoPoint, geom.Vec2[float64]](
		proj.Invert(v.Crs.Projection()), target.Projection())
}
