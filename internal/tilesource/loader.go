package tilesource

import (
	"context"

	"geomap/internal/errs"
	"geomap/internal/layer"
	"geomap/internal/metrics"
	"geomap/internal/tilescheme"
	"geomap/internal/vt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent tile loads when no limit is configured.
const DefaultWorkers = 4

// Result is the outcome of loading one tile. Exactly one of Output and Err
// is set.
type Result struct {
	Index  tilescheme.TileIndex
	Output *vt.Output
	Err    error
}

// Loader fetches tiles concurrently and runs each through the processor.
// Fetches stop when the context is cancelled; a tile whose bytes have
// arrived is always decoded to completion.
type Loader struct {
	source    Source
	processor *vt.Processor
	workers   int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewLoader returns a loader running at most workers loads at once.
func NewLoader(src Source, proc *vt.Processor, workers int, logger *zap.Logger, m *metrics.Metrics) *Loader {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if proc == nil {
		proc = vt.NewProcessor(logger, m)
	}
	return &Loader{source: src, processor: proc, workers: workers, logger: logger, metrics: m}
}

// Load starts loading tiles and returns a channel receiving one Result per
// tile, in completion order. The channel is closed when all are done.
func (l *Loader) Load(ctx context.Context, tiles []tilescheme.TileIndex, decodeContext func(tilescheme.TileIndex) vt.DecodeContext) <-chan Result {
	results := make(chan Result, len(tiles))
	g := new(errgroup.Group)
	g.SetLimit(l.workers)

	go func() {
		defer close(results)
		for _, idx := range tiles {
			if ctx.Err() != nil {
				results <- Result{Index: idx, Err: errs.IO(ctx.Err(), "load %s", idx)}
				continue
			}
			g.Go(func() error {
				results <- l.loadOne(ctx, idx, decodeContext(idx))
				return nil
			})
		}
		_ = g.Wait()
	}()
	return results
}

func (l *Loader) loadOne(ctx context.Context, idx tilescheme.TileIndex, dc vt.DecodeContext) Result {
	done := l.metrics.Track()
	defer done()

	raw, err := l.source.Load(ctx, idx)
	if err != nil {
		l.metrics.FetchFailed(l.source.Name())
		l.logger.Debug("tile fetch failed",
			zap.Stringer("tile", idx),
			zap.String("source", l.source.Name()),
			zap.Error(err))
		return Result{Index: idx, Err: err}
	}
	l.metrics.Fetched(l.source.Name())

	out, err := l.processor.Process(raw, dc)
	if err != nil {
		l.logger.Warn("tile decode failed",
			zap.Stringer("tile", idx),
			zap.String("kind", errs.Kind(err)),
			zap.Error(err))
		return Result{Index: idx, Err: err}
	}
	return Result{Index: idx, Output: out}
}

// LoadInto loads the tiles the layer does not have yet and inserts them.
// It returns how many tiles were inserted and the first error seen; other
// tiles still load when one fails.
func (l *Loader) LoadInto(ctx context.Context, tl *layer.TileLayer, tiles []tilescheme.TileIndex) (int, error) {
	var missing []tilescheme.TileIndex
	for _, idx := range tiles {
		if !tl.Has(idx) {
			missing = append(missing, idx)
		}
	}
	var (
		inserted int
		first    error
	)
	for r := range l.Load(ctx, missing, tl.DecodeContext) {
		if r.Err != nil {
			if first == nil {
				first = r.Err
			}
			continue
		}
		tl.Insert(r.Output)
		inserted++
	}
	return inserted, first
}
