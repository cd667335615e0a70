// Package metrics exposes prometheus instruments for tile loading and decoding.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics groups the pipeline instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	TilesFetched      *prometheus.CounterVec
	FetchErrors       *prometheus.CounterVec
	TilesDecoded      prometheus.Counter
	DecodeErrors      *prometheus.CounterVec
	DecodeDuration    prometheus.Histogram
	PrimitivesEmitted prometheus.Counter
	// Tile loads in flight
	InFlight prometheus.Gauge
}

// New registers the instruments against reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TilesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "geomap_tiles_fetched_total",
			Help: "Total number of tiles fetched",
		}, []string{"source"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "geomap_tile_fetch_errors_total",
			Help: "Total number of failed tile fetches",
		}, []string{"source"}),
		TilesDecoded: f.NewCounter(prometheus.CounterOpts{
			Name: "geomap_tiles_decoded_total",
			Help: "Total number of tiles decoded and styled",
		}),
		DecodeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "geomap_tile_decode_errors_total",
			Help: "Total number of tiles that failed to decode",
		}, []string{"kind"}),
		DecodeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "geomap_tile_decode_duration_seconds",
			Help:    "Time taken to decode and style a single tile",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}),
		PrimitivesEmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "geomap_primitives_emitted_total",
			Help: "Total number of render primitives produced",
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "geomap_tile_loads_in_flight",
			Help: "Current number of tile loads in progress",
		}),
	}
}

func (m *Metrics) Fetched(source string) {
	if m != nil {
		m.TilesFetched.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) FetchFailed(source string) {
	if m != nil {
		m.FetchErrors.WithLabelValues(source).Inc()
	}
}

// Decoded records a successful decode of a tile that produced n primitives.
func (m *Metrics) Decoded(d time.Duration, n int) {
	if m == nil {
		return
	}
	m.TilesDecoded.Inc()
	m.DecodeDuration.Observe(d.Seconds())
	m.PrimitivesEmitted.Add(float64(n))
}

func (m *Metrics) DecodeFailed(kind string) {
	if m != nil {
		m.DecodeErrors.WithLabelValues(kind).Inc()
	}
}

// Track bumps the in-flight gauge and returns the matching decrement.
func (m *Metrics) Track() func() {
	if m == nil {
		return func() {}
	}
	m.InFlight.Inc()
	return m.InFlight.Dec
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
