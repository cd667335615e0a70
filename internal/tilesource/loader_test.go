package tilesource

import (
	"context"
	"sync"
	"testing"

	"geomap/internal/errs"
	"geomap/internal/layer"
	"geomap/internal/metrics"
	"geomap/internal/style"
	"geomap/internal/tilescheme"
	"geomap/internal/vt"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySource struct {
	mu    sync.Mutex
	tiles map[tilescheme.TileIndex][]byte
	calls int
}

func (s *memorySource) Name() string { return "memory" }

func (s *memorySource) Load(ctx context.Context, idx tilescheme.TileIndex) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, errs.IO(err, "load %s", idx)
	}
	raw, ok := s.tiles[idx]
	if !ok {
		return nil, errs.IOf("no tile %s", idx)
	}
	return raw, nil
}

func fixtureTile(t *testing.T) []byte {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}}))
	raw, err := mvt.Marshal(mvt.Layers{mvt.NewLayer("landuse", fc)})
	require.NoError(t, err)
	return raw
}

func TestLoaderLoadInto(t *testing.T) {
	raw := fixtureTile(t)
	src := &memorySource{tiles: map[tilescheme.TileIndex][]byte{
		tilescheme.Index(1, 0, 0): raw,
		tilescheme.Index(1, 1, 0): raw,
		tilescheme.Index(1, 0, 1): []byte{0x1a, 0x05, 0x01},
	}}
	m := metrics.New(prometheus.NewRegistry())
	loader := NewLoader(src, nil, 2, nil, m)
	tl := layer.NewTileLayer(tilescheme.Web(tilescheme.DefaultWebLevels), style.Default())

	n, err := loader.LoadInto(context.Background(), tl, []tilescheme.TileIndex{
		tilescheme.Index(1, 0, 0),
		tilescheme.Index(1, 1, 0),
		tilescheme.Index(1, 0, 1),
		tilescheme.Index(1, 1, 1),
	})
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.Equal(t, 2, tl.Len())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TilesFetched.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("decode")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))

	// Loaded tiles are not fetched again.
	calls := src.calls
	n, err = loader.LoadInto(context.Background(), tl, []tilescheme.TileIndex{tilescheme.Index(1, 0, 0)})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, calls, src.calls)
}

func TestLoaderResults(t *testing.T) {
	raw := fixtureTile(t)
	src := &memorySource{tiles: map[tilescheme.TileIndex][]byte{tilescheme.Index(0, 0, 0): raw}}
	tl := layer.NewTileLayer(tilescheme.Web(tilescheme.DefaultWebLevels), style.Default())
	loader := NewLoader(src, vt.NewProcessor(nil, nil), 0, nil, nil)

	var got []Result
	for r := range loader.Load(context.Background(), []tilescheme.TileIndex{tilescheme.Index(0, 0, 0), tilescheme.Index(25, 0, 0)}, tl.DecodeContext) {
		got = append(got, r)
	}
	require.Len(t, got, 2)
	for _, r := range got {
		if r.Index.Z == 0 {
			require.NoError(t, r.Err)
			assert.Equal(t, 2, r.Output.Bundle.Len())
		} else {
			assert.True(t, errors.Is(r.Err, errs.ErrIO))
		}
	}
}

func TestLoaderCancelled(t *testing.T) {
	src := &memorySource{tiles: map[tilescheme.TileIndex][]byte{tilescheme.Index(0, 0, 0): fixtureTile(t)}}
	tl := layer.NewTileLayer(tilescheme.Web(tilescheme.DefaultWebLevels), style.Default())
	loader := NewLoader(src, nil, 1, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := loader.LoadInto(ctx, tl, []tilescheme.TileIndex{tilescheme.Index(0, 0, 0)})
	assert.Zero(t, n)
	assert.True(t, errors.Is(err, errs.ErrIO))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, tl.Len())
}
