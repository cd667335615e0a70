// Package vt turns one tile's vector-tile bytes into styled render primitives.
package vt

import (
	"time"

	"geomap/internal/errs"
	"geomap/internal/geom"
	"geomap/internal/metrics"
	"geomap/internal/mvt"
	"geomap/internal/render"
	"geomap/internal/style"
	"geomap/internal/tilescheme"

	"go.uber.org/zap"
)

// DefaultExtent is used for layers that do not declare one.
const DefaultExtent = 4096

// DataProcessor converts fetched input into renderable output.
type DataProcessor[In, Ctx, Out any] interface {
	Process(in In, ctx Ctx) (Out, error)
}

// DecodeContext is everything a decode pass needs besides the bytes. Style
// and Scheme are only read. A nil Bundle gets a fresh one.
type DecodeContext struct {
	Index  tilescheme.TileIndex
	Style  *style.VectorTileStyle
	Scheme *tilescheme.Scheme
	Bundle *render.Bundle
}

// Output is a decoded and styled tile.
type Output struct {
	Index  tilescheme.TileIndex
	Bundle *render.Bundle
	Tile   *mvt.Tile
	// FeatureIDs[layer][feature] lists the primitives emitted for a feature.
	// Skipped features have none.
	FeatureIDs [][][]render.PrimitiveID
	// Background is the clip polygon primitive.
	Background     render.PrimitiveID
	BBox           geom.Rect
	LodResolution  float64
	TileResolution float64
}

// Processor is the vector tile DataProcessor. The zero value works; it does
// not log or record metrics.
type Processor struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ DataProcessor[[]byte, DecodeContext, *Output] = (*Processor)(nil)

// NewProcessor returns a processor reporting to logger and m. Both may be nil.
func NewProcessor(logger *zap.Logger, m *metrics.Metrics) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger, metrics: m}
}

// Process decodes raw and paints it into ctx.Bundle. On error nothing has
// been added to the bundle.
func (p *Processor) Process(raw []byte, ctx DecodeContext) (*Output, error) {
	start := time.Now()
	out, err := p.process(raw, ctx)
	if err != nil {
		p.metrics.DecodeFailed(errs.Kind(err))
		p.log().Debug("tile decode failed",
			zap.Stringer("tile", ctx.Index),
			zap.String("kind", errs.Kind(err)),
			zap.Error(err))
		return nil, err
	}
	p.metrics.Decoded(time.Since(start), out.Bundle.Len())
	p.log().Debug("tile decoded",
		zap.Stringer("tile", ctx.Index),
		zap.Int("layers", len(out.Tile.Layers)),
		zap.Int("primitives", out.Bundle.Len()),
		zap.Duration("took", time.Since(start)))
	return out, nil
}

func (p *Processor) log() *zap.Logger {
	if p == nil || p.logger == nil {
		return zap.NewNop()
	}
	return p.logger
}

func (p *Processor) process(raw []byte, ctx DecodeContext) (*Output, error) {
	if ctx.Style == nil || ctx.Scheme == nil {
		return nil, errs.Configurationf("tile %s: style and tile scheme are required", ctx.Index)
	}
	tile, err := mvt.Decode(raw)
	if err != nil {
		return nil, err
	}
	bbox, ok := ctx.Scheme.TileBBox(ctx.Index)
	if !ok {
		return nil, errs.Configurationf("tile %s is outside the tile scheme", ctx.Index)
	}
	lodRes, ok := ctx.Scheme.LodResolution(ctx.Index.Z)
	if !ok {
		return nil, errs.Configurationf("no resolution for level %d", ctx.Index.Z)
	}

	bundle := ctx.Bundle
	if bundle == nil {
		bundle = render.NewBundle()
	}
	out := &Output{
		Index:          ctx.Index,
		Bundle:         bundle,
		Tile:           tile,
		FeatureIDs:     make([][][]render.PrimitiveID, len(tile.Layers)),
		BBox:           bbox,
		LodResolution:  lodRes,
		TileResolution: lodRes * float64(ctx.Scheme.TileWidth()),
	}

	bounds := geom.NewPolygon([]render.WorldPoint{
		{X: bbox.XMin, Y: bbox.YMin},
		{X: bbox.XMin, Y: bbox.YMax},
		{X: bbox.XMax, Y: bbox.YMax},
		{X: bbox.XMax, Y: bbox.YMin},
	})
	bundle.ClipArea(bounds)
	out.Background = bundle.AddPolygon(bounds, render.PolygonPaint{Color: ctx.Style.Background}, lodRes)

	for li := range tile.Layers {
		layer := &tile.Layers[li]
		ids := make([][]render.PrimitiveID, len(layer.Features))
		tr := out.transform(layer)
		for fi := range layer.Features {
			ids[fi] = emit(bundle, ctx.Style, layer.Name, &layer.Features[fi], tr, lodRes)
		}
		out.FeatureIDs[li] = ids
	}
	return out, nil
}

func emit(b *render.Bundle, st *style.VectorTileStyle, layer string, f *mvt.Feature, tr func(mvt.Point) render.WorldPoint, lodRes float64) []render.PrimitiveID {
	switch g := f.Geometry.(type) {
	case mvt.Points:
		// Point symbols are not drawn for tiles; feature layers handle points.
		return nil
	case mvt.LineStrings:
		paint, ok := LinePaint(st, layer, f)
		if !ok {
			return nil
		}
		ids := make([]render.PrimitiveID, 0, len(g))
		for _, c := range g {
			line := geom.CastContour(c, tr)
			line.Closed = false
			ids = append(ids, b.AddLine(line, paint, lodRes))
		}
		return ids
	case mvt.Polygons:
		paint, ok := PolygonPaint(st, layer, f)
		if !ok {
			return nil
		}
		ids := make([]render.PrimitiveID, 0, len(g))
		for _, poly := range g {
			ids = append(ids, b.AddPolygon(geom.CastPolygon(poly, tr), paint, lodRes))
		}
		return ids
	}
	return nil
}

// LinePaint resolves the stroke of a line feature. Tile lines always have a
// butt cap and no offset.
func LinePaint(st *style.VectorTileStyle, layer string, f *mvt.Feature) (render.LinePaint, bool) {
	sym := st.SymbolFor(layer, f).Line
	if sym == nil {
		return render.LinePaint{}, false
	}
	if f.Selected && st.Selected.Line != nil {
		sym = st.Selected.Line
	}
	return render.LinePaint{Color: sym.StrokeColor, Width: sym.Width, Offset: 0, Cap: render.CapButt}, true
}

// PolygonPaint resolves the fill of a polygon feature.
func PolygonPaint(st *style.VectorTileStyle, layer string, f *mvt.Feature) (render.PolygonPaint, bool) {
	sym := st.SymbolFor(layer, f).Polygon
	if sym == nil {
		return render.PolygonPaint{}, false
	}
	if f.Selected && st.Selected.Polygon != nil {
		sym = st.Selected.Polygon
	}
	return render.PolygonPaint{Color: sym.FillColor}, true
}

func extentOf(l *mvt.Layer) float64 {
	if l.Extent == 0 {
		return DefaultExtent
	}
	return float64(l.Extent)
}

// transform maps layer-local coordinates into map space. Local Y grows
// downward, map Y upward.
func (o *Output) transform(l *mvt.Layer) func(mvt.Point) render.WorldPoint {
	scale := o.TileResolution / extentOf(l)
	return func(p mvt.Point) render.WorldPoint {
		return render.WorldPoint{
			X: o.BBox.XMin + float64(p.X)*scale,
			Y: o.BBox.YMax - float64(p.Y)*scale,
		}
	}
}
