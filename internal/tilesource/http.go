package tilesource

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"geomap/internal/errs"
	"geomap/internal/tilescheme"

	"github.com/cenkalti/backoff/v3"
	"go.uber.org/zap"
)

// UserAgent is sent with every tile request.
const UserAgent = "geomap/0.1"

// HTTPSource fetches tiles from a URL template with {z}, {x} and {y}
// placeholders. Transport errors and 5xx/429 responses are retried with
// exponential backoff; other non-success statuses fail at once.
type HTTPSource struct {
	Template   string
	Client     *http.Client
	MaxRetries uint64
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	MaxElapsed      time.Duration
	Logger          *zap.Logger
}

// NewHTTPSource returns a source with the default client and retry policy.
func NewHTTPSource(template string, timeout time.Duration, maxRetries uint64, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		Template:        template,
		Client:          &http.Client{Timeout: timeout},
		MaxRetries:      maxRetries,
		InitialInterval: 200 * time.Millisecond,
		MaxElapsed:      30 * time.Second,
		Logger:          logger,
	}
}

func (s *HTTPSource) Name() string { return "http" }

// URL expands the template for idx.
func (s *HTTPSource) URL(idx tilescheme.TileIndex) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(idx.Z),
		"{x}", strconv.Itoa(idx.X),
		"{y}", strconv.Itoa(idx.Y),
	).Replace(s.Template)
}

func (s *HTTPSource) policy(ctx context.Context) backoff.BackOff {
	if s.MaxRetries == 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	if s.InitialInterval > 0 {
		b.InitialInterval = s.InitialInterval
	}
	b.MaxElapsedTime = s.MaxElapsed
	return backoff.WithMaxRetries(backoff.WithContext(b, ctx), s.MaxRetries)
}

// Load fetches one tile. A cancelled context stops retries.
func (s *HTTPSource) Load(ctx context.Context, idx tilescheme.TileIndex) ([]byte, error) {
	url := s.URL(idx)
	var body []byte
	op := func() error {
		b, err := s.fetch(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}
	notify := func(err error, next time.Duration) {
		s.logger().Debug("retrying tile fetch",
			zap.String("url", url),
			zap.Duration("in", next),
			zap.Error(err))
	}
	if err := backoff.RetryNotify(op, s.policy(ctx), notify); err != nil {
		if ctx.Err() != nil {
			return nil, errs.IO(ctx.Err(), "fetch %s", url)
		}
		return nil, err
	}
	return body, nil
}

func (s *HTTPSource) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *HTTPSource) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s *HTTPSource) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(errs.IO(err, "build request for %s", url))
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(errs.IO(err, "fetch %s", url))
		}
		return nil, errs.IO(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		err := errs.IOf("fetch %s: status %d", url, resp.StatusCode)
		if retryable(resp.StatusCode) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.IO(err, "read %s", url)
	}
	return body, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
