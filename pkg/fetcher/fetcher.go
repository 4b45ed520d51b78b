// Package fetcher checks whether archived image assets still exist on the
// forum host.
package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/bbs-archive-parser/pkg/caching"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = time.Second

// Options configures a Fetcher. Zero values mean: DefaultTimeout, no rate
// limit, no cache, slog.Default.
type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Cache     *caching.Cache
	Logger    *slog.Logger
}

// Fetcher probes asset URLs. It is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	cache   *caching.Cache
	logger  *slog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{},
		timeout: opts.Timeout,
		cache:   opts.Cache,
		logger:  opts.Logger,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Exists issues a GET for url and reports whether it answered 200. Any
// error, timeout or other status counts as absent. Nothing is retried.
func (f *Fetcher) Exists(ctx context.Context, url string) bool {
	if f.cache != nil {
		if exists, ok := f.cache.Lookup(url); ok {
			return exists
		}
	}

	exists := f.probe(ctx, url)

	// a cancelled caller says nothing about the asset
	if f.cache != nil && ctx.Err() == nil {
		if err := f.cache.Store(url, exists); err != nil {
			f.logger.Warn("failed to cache probe result", "url", url, "error", err)
		}
	}
	return exists
}

func (f *Fetcher) probe(ctx context.Context, url string) bool {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			f.logger.Warn("asset probe not sent", "url", url, "error", err)
			return false
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Warn("asset probe failed", "url", url, "error", err)
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("asset probe failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, 64<<10)

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("asset missing", "url", url, "status", resp.StatusCode)
		return false
	}
	return true
}
