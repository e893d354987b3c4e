package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"shortlink/pkg/cache"
	"shortlink/pkg/logging"
	"shortlink/pkg/storage"
)

// maxGenerationAttempts bounds the generate-and-check loop. With a 32^7 code
// space the odds of hitting 50 collisions in a row are negligible, but the
// loop must still terminate with a reportable error instead of spinning.
const maxGenerationAttempts = 50

var customCodeRegex = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

// Registry is the single authority for turning a creation request into a
// persisted, uniquely-coded record. It holds no state of its own; every
// uniqueness guarantee comes from the store, so any number of registry
// instances (or processes) can run against the same store.
type Registry struct {
	store  storage.LinkStore
	cache  cache.MissCache
	logger *logging.Logger
}

// NewRegistry constructs a registry. cache may be nil to disable miss
// caching.
func NewRegistry(store storage.LinkStore, missCache cache.MissCache, logger *logging.Logger) *Registry {
	return &Registry{
		store:  store,
		cache:  missCache,
		logger: logger,
	}
}

// CreateWithGeneratedCode allocates a fresh random code for targetURL. Each
// attempt checks for an existing record before inserting; the insert itself
// is the final arbiter, so a lost race against a concurrent creator simply
// counts as another collision.
func (r *Registry) CreateWithGeneratedCode(ctx context.Context, targetURL string) (*storage.Link, error) {
	targetURL, err := normalizeTargetURL(targetURL)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxGenerationAttempts; i++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}

		existing, err := r.store.FindByCode(ctx, code)
		if err != nil {
			return nil, storeErr(err)
		}
		if existing != nil {
			continue
		}

		link := &storage.Link{Code: code, TargetURL: targetURL}
		err = r.store.InsertIfAbsent(ctx, link)
		if errors.Is(err, storage.ErrCodeExists) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}

		r.clearMiss(ctx, code)
		r.logger.LogLinkOperation(ctx, "create", code, true)
		return link, nil
	}

	r.logger.Error(ctx, "code generation exhausted", "attempts", maxGenerationAttempts)
	return nil, ErrExhaustedAttempts
}

// CreateWithCustomCode persists targetURL under a caller-supplied code. The
// code is uppercased before validation and storage, so collisions are
// case-insensitive. Two concurrent creators requesting the same code race at
// the store's unique constraint: exactly one wins.
func (r *Registry) CreateWithCustomCode(ctx context.Context, targetURL, requestedCode string) (*storage.Link, error) {
	targetURL, err := normalizeTargetURL(targetURL)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(requestedCode))
	if !customCodeRegex.MatchString(code) {
		return nil, ErrInvalidCodeFormat
	}

	link := &storage.Link{Code: code, TargetURL: targetURL}
	err = r.store.InsertIfAbsent(ctx, link)
	if errors.Is(err, storage.ErrCodeExists) {
		return nil, ErrCodeTaken
	}
	if err != nil {
		return nil, storeErr(err)
	}

	r.clearMiss(ctx, code)
	r.logger.LogLinkOperation(ctx, "create", code, true)
	return link, nil
}

// Lookup resolves a code to its record without touching click statistics.
// Matching is case-insensitive.
func (r *Registry) Lookup(ctx context.Context, code string) (*storage.Link, error) {
	code = strings.TrimSpace(code)
	if len(code) < 3 {
		return nil, ErrInvalidCode
	}

	link, err := r.store.FindByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, storeErr(err)
	}
	if link == nil {
		return nil, ErrNotFound
	}
	return link, nil
}

// List returns all records, newest first.
func (r *Registry) List(ctx context.Context) ([]*storage.Link, error) {
	links, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return links, nil
}

// Delete removes a record permanently. Deleting a nonexistent code reports
// ErrNotFound rather than failing hard, so retries are harmless.
func (r *Registry) Delete(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	deleted, err := r.store.DeleteByCode(ctx, code)
	if err != nil {
		return storeErr(err)
	}
	if !deleted {
		return ErrNotFound
	}

	if r.cache != nil {
		_ = r.cache.MarkMiss(ctx, code)
	}
	r.logger.LogLinkOperation(ctx, "delete", code, true)
	return nil
}

// Ping reports whether the store is reachable.
func (r *Registry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func (r *Registry) clearMiss(ctx context.Context, code string) {
	if r.cache != nil {
		_ = r.cache.Clear(ctx, code)
	}
}

func normalizeTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	return raw, nil
}
