// Package tilescheme maps tile indices to world bounding boxes and
// resolutions. Everything here is pure: no I/O after construction.
package tilescheme

import (
	"iter"
	"math"

	"geomap/internal/errs"
	"geomap/internal/geom"
	"geomap/internal/proj"
)

// VerticalDirection tells which way tile rows grow.
type VerticalDirection uint8

const (
	TopToBottom VerticalDirection = iota
	BottomToTop
)

// Web scheme constants (EPSG:3857, 256 px tiles).
const (
	WebTileSize      = 256
	WebZ0Resolution  = 156543.03392800014
	WebOriginX       = -20037508.342787
	WebOriginY       = 20037508.342787
	DefaultWebLevels = 20
)

// Scheme is an immutable tiling scheme. Construct it with New, Web or LoadFile.
type Scheme struct {
	origin      geom.Vec2[float64]
	bounds      geom.Rect
	resolutions []float64
	tileWidth   int
	tileHeight  int
	yDirection  VerticalDirection
	crs         proj.Crs
}

// Web returns the standard web mercator scheme with the given number of levels.
func Web(levels int) *Scheme {
	if levels <= 0 {
		levels = DefaultWebLevels
	}
	res := make([]float64, levels)
	r := WebZ0Resolution
	for i := range res {
		res[i] = r
		r /= 2
	}
	return &Scheme{
		origin:      geom.Vec2[float64]{X: WebOriginX, Y: WebOriginY},
		bounds:      geom.Rect{XMin: WebOriginX, YMin: -WebOriginY, XMax: -WebOriginX, YMax: WebOriginY},
		resolutions: res,
		tileWidth:   WebTileSize,
		tileHeight:  WebTileSize,
		yDirection:  TopToBottom,
		crs:         proj.EPSG3857,
	}
}

// New validates cfg and builds a scheme from it.
func New(cfg Config) (*Scheme, error) {
	res, err := cfg.levels()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, errs.Configurationf("tile scheme has no levels")
	}
	for i, r := range res {
		if !(r > 0) || math.IsInf(r, 0) {
			return nil, errs.Configurationf("level %d: resolution %v must be positive", i, r)
		}
		if i > 0 && r >= res[i-1] {
			return nil, errs.Configurationf("level %d: resolution %v is not below level %d (%v)", i, r, i-1, res[i-1])
		}
	}
	if cfg.TileWidth <= 0 || cfg.TileHeight <= 0 {
		return nil, errs.Configurationf("tile size %dx%d must be positive", cfg.TileWidth, cfg.TileHeight)
	}
	dir, err := parseDirection(cfg.YDirection)
	if err != nil {
		return nil, err
	}
	crs, err := proj.ParseCrs(cfg.Crs)
	if err != nil {
		return nil, err
	}
	bounds := geom.NewRect(cfg.Bounds.XMin, cfg.Bounds.YMin, cfg.Bounds.XMax, cfg.Bounds.YMax)
	if bounds.Width() <= 0 || bounds.Height() <= 0 {
		return nil, errs.Configurationf("tile scheme bounds are empty")
	}
	return &Scheme{
		origin:      geom.Vec2[float64]{X: cfg.Origin.X, Y: cfg.Origin.Y},
		bounds:      bounds,
		resolutions: res,
		tileWidth:   cfg.TileWidth,
		tileHeight:  cfg.TileHeight,
		yDirection:  dir,
		crs:         crs,
	}, nil
}

func (s *Scheme) TileWidth() int                { return s.tileWidth }
func (s *Scheme) TileHeight() int               { return s.tileHeight }
func (s *Scheme) Levels() int                   { return len(s.resolutions) }
func (s *Scheme) Bounds() geom.Rect             { return s.bounds }
func (s *Scheme) Crs() proj.Crs                 { return s.crs }
func (s *Scheme) YDirection() VerticalDirection { return s.yDirection }

// LodResolution is the ground distance per pixel at level z.
func (s *Scheme) LodResolution(z int) (float64, bool) {
	if z < 0 || z >= len(s.resolutions) {
		return 0, false
	}
	return s.resolutions[z], true
}

// TileResolution is the ground distance per tile width at level z.
func (s *Scheme) TileResolution(z int) (float64, bool) {
	r, ok := s.LodResolution(z)
	if !ok {
		return 0, false
	}
	return r * float64(s.tileWidth), true
}

// GridSize is the number of tile columns and rows covering the bounds at z.
func (s *Scheme) GridSize(z int) (cols, rows int, ok bool) {
	r, ok := s.LodResolution(z)
	if !ok {
		return 0, 0, false
	}
	cols = int(math.Ceil(s.bounds.Width()/(r*float64(s.tileWidth)) - 1e-9))
	rows = int(math.Ceil(s.bounds.Height()/(r*float64(s.tileHeight)) - 1e-9))
	return max(cols, 1), max(rows, 1), true
}

// TileBBox returns the world bounding box of idx. It fails for a level
// outside the scheme or a column/row outside the grid at that level.
func (s *Scheme) TileBBox(idx TileIndex) (geom.Rect, bool) {
	cols, rows, ok := s.GridSize(idx.Z)
	if !ok || idx.X < 0 || idx.Y < 0 || idx.X >= cols || idx.Y >= rows {
		return geom.Rect{}, false
	}
	r := s.resolutions[idx.Z]
	w := r * float64(s.tileWidth)
	h := r * float64(s.tileHeight)

	xmin := s.origin.X + float64(idx.X)*w
	var ymin float64
	if s.yDirection == TopToBottom {
		ymin = s.origin.Y - float64(idx.Y+1)*h
	} else {
		ymin = s.origin.Y + float64(idx.Y)*h
	}
	return geom.Rect{XMin: xmin, YMin: ymin, XMax: xmin + w, YMax: ymin + h}, true
}

// SelectLod picks the level whose resolution is nearest to resolution on a
// log scale.
func (s *Scheme) SelectLod(resolution float64) int {
	if resolution <= 0 {
		return len(s.resolutions) - 1
	}
	best, bestDiff := 0, math.Inf(1)
	target := math.Log2(resolution)
	for z, r := range s.resolutions {
		if d := math.Abs(math.Log2(r) - target); d < bestDiff {
			best, bestDiff = z, d
		}
	}
	return best
}

// IterTiles yields the tiles at the level nearest to resolution that
// intersect bbox, row by row.
func (s *Scheme) IterTiles(bbox geom.Rect, resolution float64) iter.Seq[TileIndex] {
	return func(yield func(TileIndex) bool) {
		z := s.SelectLod(resolution)
		cols, rows, _ := s.GridSize(z)
		r := s.resolutions[z]
		w := r * float64(s.tileWidth)
		h := r * float64(s.tileHeight)

		x0 := int(math.Floor((bbox.XMin - s.origin.X) / w))
		x1 := int(math.Ceil((bbox.XMax-s.origin.X)/w)) - 1
		var y0, y1 int
		if s.yDirection == TopToBottom {
			y0 = int(math.Floor((s.origin.Y - bbox.YMax) / h))
			y1 = int(math.Ceil((s.origin.Y-bbox.YMin)/h)) - 1
		} else {
			y0 = int(math.Floor((bbox.YMin - s.origin.Y) / h))
			y1 = int(math.Ceil((bbox.YMax-s.origin.Y)/h)) - 1
		}
		x0, y0 = max(x0, 0), max(y0, 0)
		x1, y1 = min(x1, cols-1), min(y1, rows-1)

		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if !yield(TileIndex{Z: z, X: x, Y: y}) {
					return
				}
			}
		}
	}
}
