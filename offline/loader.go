package offline

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// FillFunc fetches a fresh answer from the server on a cache miss.
type FillFunc func(ctx context.Context, category, query, language string) (string, error)

// ResponseLoader is a read-through front for the response cache. On a
// miss it fetches via the fill function and caches the result;
// singleflight collapses concurrent misses for the same question into one
// fetch.
type ResponseLoader struct {
	store  *Store
	fill   FillFunc
	flight singleflight.Group
}

// NewResponseLoader creates a read-through loader over the store.
func NewResponseLoader(store *Store, fill FillFunc) *ResponseLoader {
	return &ResponseLoader{store: store, fill: fill}
}

// Get returns the cached answer for the question, filling on a miss.
// Cache read failures degrade to a fill; a fill failure with nothing
// cached is the only error path.
func (l *ResponseLoader) Get(ctx context.Context, category, query, language string) (string, error) {
	cached, err := l.store.GetCachedResponses(ctx, category, language, 0)
	if err == nil {
		for _, r := range cached {
			if r.Query == query {
				return r.Response, nil
			}
		}
	}

	key := fmt.Sprintf("%s\x00%s\x00%s", category, query, language)
	v, err, _ := l.flight.Do(key, func() (any, error) {
		response, err := l.fill(ctx, category, query, language)
		if err != nil {
			return "", err
		}
		// Best effort: a failed cache write must not lose the fresh answer.
		if _, err := l.store.CacheResponse(ctx, "", category, query, response, language); err != nil {
			l.store.logger.Warn("caching fetched response failed", "error", err)
		}
		return response, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
