package iconcache

import (
	"context"
	"log/slog"

	"urldeck/internal/icon"
	"urldeck/internal/logging"
)

// Fetcher performs one icon fetch attempt.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (icon.Icon, error)
}

// CachingFetcher serves fresh icons from the cache and records new successes.
type CachingFetcher struct {
	next   Fetcher
	cache  *Cache
	logger *slog.Logger
}

// NewCachingFetcher wraps next with cache. A nil cache passes every call
// through.
func NewCachingFetcher(next Fetcher, cache *Cache, logger *slog.Logger) *CachingFetcher {
	return &CachingFetcher{
		next:   next,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "iconcache"),
	}
}

// Fetch implements Fetcher.
func (f *CachingFetcher) Fetch(ctx context.Context, target string) (icon.Icon, error) {
	if f.cache == nil {
		return f.next.Fetch(ctx, target)
	}

	ic, ok, err := f.cache.Lookup(ctx, target)
	switch {
	case err != nil:
		logging.WarnWithContext(f.logger, "icon cache lookup failed", "cache_lookup_failed",
			logging.String(logging.FieldCandidate, target),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'urldeck cache clear' if the database is corrupt"),
			logging.String(logging.FieldImpact, "icon fetched from the network instead"),
		)
	case ok:
		f.logger.Debug("icon cache hit", logging.String(logging.FieldCandidate, target))
		return ic, nil
	}

	ic, err = f.next.Fetch(ctx, target)
	if err != nil {
		return icon.Icon{}, err
	}
	if storeErr := f.cache.Store(ctx, target, ic); storeErr != nil {
		logging.WarnWithContext(f.logger, "icon cache store failed", "cache_store_failed",
			logging.String(logging.FieldCandidate, target),
			logging.Error(storeErr),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the data directory"),
			logging.String(logging.FieldImpact, "icon will be fetched again next run"),
		)
	}
	return ic, nil
}
