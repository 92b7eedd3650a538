package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pokerec/deckworker/helpers"
	pkgerrors "pokerec/deckworker/pkg/errors"
	"pokerec/deckworker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher abstracts the page-fetching layer. Crawlers only see parsed
// documents; how a page is obtained (plain HTTP, headless browser) is the
// fetcher's business.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPFetcher fetches pages over plain HTTP with randomized headers and a
// memcache-backed rate-limit guard: after the source throttles us, further
// fetches of the same source are refused for BlockTime.
type HTTPFetcher struct {
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
}

// NewHTTPFetcher creates a fetcher guarded by the given cache key.
// A nil cache service disables the guard.
func NewHTTPFetcher(cacheKey string, cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		CacheKey:  cacheKey,
		CacheSvc:  cacheSvc,
		BlockTime: blockTime,
	}
}

// Fetch retrieves and parses one page
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.CacheSvc != nil && f.CacheKey != "" {
		if _, err := f.CacheSvc.Get(f.CacheKey); err == nil {
			return nil, pkgerrors.NewAutomation(url,
				fmt.Sprintf("source blocked for %ds after rate limit", int(f.BlockTime/time.Second)), nil)
		}
	}

	body, err := helpers.FetchWithRandomHeaders(url)
	if err != nil {
		var rateLimited *helpers.ErrRateLimited
		if errors.As(err, &rateLimited) && f.CacheSvc != nil && f.CacheKey != "" {
			f.CacheSvc.Set(f.CacheKey, []byte(rateLimited.RetryAfter), f.BlockTime)
		}
		return nil, pkgerrors.NewAutomation(url, "fetch failed", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, pkgerrors.NewAutomation(url, "HTML parse failed", err)
	}
	return doc, nil
}

// IsAutomationError reports whether err came from the fetch/DOM layer
func IsAutomationError(err error) bool {
	var perr *pkgerrors.PipelineError
	return errors.As(err, &perr) && perr.Type == pkgerrors.ErrorTypeAutomation
}
