package llm

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
	"github.com/Veraticus/facet-flow/internal/textgen"
)

// Generator writes product copy with a language model. It is safe for
// concurrent use.
type Generator struct {
	client   Client
	fallback *textgen.Template
	cache    *common.TTLCache[model.GeneratedText]
	limiter  *common.RateLimiter
	logger   *slog.Logger
	retry    service.RetryOptions
}

// NewGenerator wraps client with caching, rate limiting and retries. A nil
// client always uses the template generator.
func NewGenerator(client Client, cfg Config, logger *slog.Logger) *Generator {
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

	g := &Generator{
		client:  client,
		cache:   common.NewTTLCache[model.GeneratedText](cfg.CacheTTL),
		limiter: common.NewRateLimiter(cfg.RateLimit),
		logger:  logger,
		retry: service.RetryOptions{
			MaxAttempts:  maxRetries,
			InitialDelay: retryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
	if cfg.Fallback || client == nil {
		g.fallback = textgen.NewTemplate()
	}
	return g
}

// Generate returns copy for the product, from cache when the same prompt was
// answered before.
func (g *Generator) Generate(ctx context.Context, product model.ProductInfo, image model.ImageAttributes) (model.GeneratedText, error) {
	if g.client == nil {
		return g.fallback.Generate(ctx, product, image)
	}

	prompt := buildPrompt(product, image)
	if text, ok := g.cache.Get(prompt); ok {
		g.logger.Debug("copy cache hit", "brand", product.Brand)
		return text, nil
	}

	var text model.GeneratedText
	err := common.WithRetry(ctx, func() error {
		if waitErr := g.limiter.Wait(ctx); waitErr != nil {
			return common.Permanent(waitErr)
		}
		raw, completeErr := g.client.Complete(ctx, systemPrompt, prompt)
		if completeErr != nil {
			return completeErr
		}
		var parseErr error
		text, parseErr = parseCopy(raw)
		return parseErr
	}, g.retry)
	if err != nil {
		if g.fallback == nil || ctx.Err() != nil {
			return model.GeneratedText{}, err
		}
		g.logger.Warn("copy generation failed, using template", "error", err, "brand", product.Brand)
		return g.fallback.Generate(ctx, product, image)
	}

	g.cache.Set(prompt, text)
	g.logger.Debug("copy generated", "title", text.Title, "bullets", len(text.BulletPoints))
	return text, nil
}

// Close stops background goroutines.
func (g *Generator) Close() error {
	g.cache.Close()
	g.limiter.Close()
	if c, ok := g.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
