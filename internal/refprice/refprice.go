// Package refprice caches daily reference prices in front of a venue
// fetch. Reference prices change once per trading day, so repeated lookups
// within the TTL are served from memory instead of hitting the venue again.
package refprice

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"tradegate/internal/domain"
	"tradegate/internal/util"
)

const (
	// DefaultExpiration is how long a fetched reference price stays fresh.
	DefaultExpiration = 15 * time.Minute

	cleanupInterval = 30 * time.Minute

	fetchAttempts  = 3
	fetchBaseDelay = 500 * time.Millisecond
)

// Fetch retrieves reference prices for the given symbols from a venue.
// Symbols the venue cannot price are absent from the result.
type Fetch func(ctx context.Context, symbols []string) (map[string]domain.PriceInfo, error)

// Service answers reference-price lookups from a TTL cache, falling back to
// the venue fetch (with retries) for symbols not cached yet.
type Service struct {
	fetch      Fetch
	cache      *cache.Cache
	log        *slog.Logger
	retryDelay time.Duration
}

// NewService wraps fetch with a reference-price cache.
func NewService(fetch Fetch, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetch:      fetch,
		cache:      cache.New(DefaultExpiration, cleanupInterval),
		log:        logger,
		retryDelay: fetchBaseDelay,
	}
}

// Get returns reference prices for the given symbols, keyed by symbol.
// Cached entries are served directly; the rest are fetched in one venue
// call. Symbols that cannot be priced are absent, never an error.
func (s *Service) Get(ctx context.Context, symbols []string) map[string]domain.PriceInfo {
	out := make(map[string]domain.PriceInfo, len(symbols))

	var missing []string
	for _, sym := range symbols {
		if v, ok := s.cache.Get(sym); ok {
			out[sym] = v.(domain.PriceInfo)
			continue
		}
		missing = append(missing, sym)
	}
	if len(missing) == 0 {
		return out
	}

	var fetched map[string]domain.PriceInfo
	err := util.Retry(ctx, fetchAttempts, s.retryDelay, func() error {
		var ferr error
		fetched, ferr = s.fetch(ctx, missing)
		return ferr
	})
	if err != nil {
		s.log.Warn("reference price fetch failed", "symbols", missing, "error", err)
		return out
	}

	for sym, info := range fetched {
		s.cache.Set(sym, info, cache.DefaultExpiration)
		out[sym] = info
	}
	return out
}

// Invalidate drops the cached entry for a symbol, forcing the next lookup
// to hit the venue. Used when a new trading day opens.
func (s *Service) Invalidate(symbols ...string) {
	for _, sym := range symbols {
		s.cache.Delete(sym)
	}
}
