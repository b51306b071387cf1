package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"StockLab/internal/model"
)

// Cache stores JSON-encodable values by key.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedFetcher serves bars from a cache before falling through to the wrapped fetcher.
type CachedFetcher struct {
	Next  Fetcher
	Cache Cache
	TTL   time.Duration
}

// NewCachedFetcher wraps next. A nil cache disables caching.
func NewCachedFetcher(next Fetcher, cache Cache, ttl time.Duration) Fetcher {
	if cache == nil {
		return next
	}
	return &CachedFetcher{Next: next, Cache: cache, TTL: ttl}
}

func (f *CachedFetcher) Name() string { return f.Next.Name() + "+cache" }

func (f *CachedFetcher) FetchBars(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	key := fmt.Sprintf("bars:%s:%s:%s:%s", f.Next.Name(), symbol, model.DateKey(start), model.DateKey(end))

	var cached model.PriceSeries
	if err := f.Cache.Get(ctx, key, &cached); err == nil && cached.Len() > 0 {
		log.Debug().Str("key", key).Msg("price cache hit")
		return &cached, nil
	}

	series, err := f.Next.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if err := f.Cache.Set(ctx, key, series, f.TTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("price cache write failed")
	}
	return series, nil
}
