package vision

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
)

// Analyzer loads images, calls a provider, and caches results by reference.
// It is safe for concurrent use.
type Analyzer struct {
	client  Client
	loader  *Loader
	cache   *common.TTLCache[model.ImageAttributes]
	limiter *common.RateLimiter
	logger  *slog.Logger
	retry   service.RetryOptions
}

// NewAnalyzer wraps a provider client with caching, rate limiting and retries.
func NewAnalyzer(client Client, cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &Analyzer{
		client:  client,
		loader:  NewLoader(),
		cache:   common.NewTTLCache[model.ImageAttributes](cfg.CacheTTL),
		limiter: common.NewRateLimiter(cfg.RateLimit),
		logger:  logger,
		retry: service.RetryOptions{
			MaxAttempts:  maxRetries,
			InitialDelay: retryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Analyze returns the attributes observed in the image behind ref.
func (a *Analyzer) Analyze(ctx context.Context, ref string) (model.ImageAttributes, error) {
	if attrs, ok := a.cache.Get(ref); ok {
		a.logger.Debug("image analysis cache hit", "ref", ref)
		return attrs, nil
	}

	var img Image
	err := common.WithRetry(ctx, func() error {
		var loadErr error
		img, loadErr = a.loader.Load(ctx, ref)
		return loadErr
	}, a.retry)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	var attrs model.ImageAttributes
	err = common.WithRetry(ctx, func() error {
		if waitErr := a.limiter.Wait(ctx); waitErr != nil {
			return common.Permanent(waitErr)
		}
		var analyzeErr error
		attrs, analyzeErr = a.client.Analyze(ctx, img)
		return analyzeErr
	}, a.retry)
	if err != nil {
		return nil, err
	}

	a.cache.Set(ref, attrs)
	a.logger.Debug("image analyzed", "ref", ref, "axes", len(attrs))
	return attrs, nil
}

// Close stops background goroutines and releases the provider client.
func (a *Analyzer) Close() error {
	a.cache.Close()
	a.limiter.Close()
	if c, ok := a.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
