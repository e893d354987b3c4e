package service

import (
	"context"
	"strings"

	"shortlink/pkg/cache"
	"shortlink/pkg/logging"
	"shortlink/pkg/storage"
)

// Resolver is the redirect hot path. Resolving a code records the click and
// returns the target URL in one store round trip.
type Resolver struct {
	store  storage.LinkStore
	cache  cache.MissCache
	logger *logging.Logger
}

// NewResolver constructs a resolver. cache may be nil to disable miss
// caching.
func NewResolver(store storage.LinkStore, missCache cache.MissCache, logger *logging.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cache:  missCache,
		logger: logger,
	}
}

// Resolve maps an inbound code to its target URL, atomically bumping the
// click counter and last-clicked timestamp of the record. Codes shorter
// than 3 characters are rejected before any store access. The click update
// happens inside the store's IncrementClick, never as a read-then-write, so
// concurrent redirects to the same code cannot lose counts.
func (r *Resolver) Resolve(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) < 3 {
		return "", ErrInvalidCode
	}
	code = strings.ToUpper(code)

	if r.cache != nil {
		// Cache failures fall through to the store.
		miss, err := r.cache.IsKnownMiss(ctx, code)
		if err != nil {
			r.logger.Warn(ctx, "miss cache read failed", "error", err.Error())
		} else if miss {
			return "", ErrNotFound
		}
	}

	targetURL, err := r.store.IncrementClick(ctx, code)
	if err != nil {
		return "", storeErr(err)
	}
	if targetURL == "" {
		if r.cache != nil {
			_ = r.cache.MarkMiss(ctx, code)
		}
		return "", ErrNotFound
	}

	r.logger.Debug(ctx, "redirect resolved", "code", code)
	return targetURL, nil
}
