package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"sidefx/internal/logging"
)

// DefaultProviderTimeout bounds a provider call when its config carries no
// positive timeout.
const DefaultProviderTimeout = 10 * time.Second

// Attempt records one provider failure during a routing call.
type Attempt struct {
	Provider string
	Err      *ProviderError
}

// RouteResult is the tagged outcome of one routing call. On success Provider
// and Content are set; on failure Err is set. Attempts always carries the
// ordered failures that preceded the outcome.
type RouteResult struct {
	Provider string
	Content  string
	Err      *ProviderError
	Attempts []Attempt
}

// OK reports whether the route succeeded.
func (r RouteResult) OK() bool { return r.Err == nil }

// RouteOptions adjusts a single routing call.
type RouteOptions struct {
	// Providers overrides the router's enabled set for this call.
	Providers []Provider

	// ProviderOrder is an explicit preference by id, honored strictly ahead
	// of the intent fallback order.
	ProviderOrder []string
}

// Router tries providers in preference order until one succeeds.
type Router struct {
	providers []Provider
	timeout   time.Duration
	cache     *Cache
	group     singleflight.Group
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithCache attaches a result cache. Concurrent identical queries collapse
// into a single flight; failures are never cached.
func WithCache(cache *Cache) RouterOption {
	return func(r *Router) { r.cache = cache }
}

// WithDefaultTimeout overrides DefaultProviderTimeout.
func WithDefaultTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRouter creates a router over the enabled provider set.
func NewRouter(providers []Provider, opts ...RouterOption) *Router {
	r := &Router{
		providers: providers,
		timeout:   DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route tries each provider in order and returns the first success, or an
// aggregated failure once every provider has been attempted.
func (r *Router) Route(ctx context.Context, q Query, opts RouteOptions) RouteResult {
	enabled := opts.Providers
	if enabled == nil {
		enabled = r.providers
	}

	if len(enabled) == 0 {
		return RouteResult{
			Err: &ProviderError{
				Kind:    KindNoProviders,
				Message: "no research providers are enabled",
			},
			Attempts: []Attempt{},
		}
	}

	if r.cache == nil {
		return r.route(ctx, q, enabled, opts.ProviderOrder)
	}

	key := cacheKey(q)
	if cached, ok := r.cache.Get(key); ok {
		logging.ResearchDebug("Route cache hit: query=%q provider=%s", q.Text, cached.Provider)
		return cached
	}

	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		res := r.route(ctx, q, enabled, opts.ProviderOrder)
		if res.OK() {
			r.cache.Set(key, res)
		}
		return res, nil
	})
	return v.(RouteResult)
}

func (r *Router) route(ctx context.Context, q Query, enabled []Provider, explicit []string) RouteResult {
	ordered := orderProviders(enabled, explicit, q.Intent)
	attempts := make([]Attempt, 0, len(ordered))

	for _, p := range ordered {
		res := r.attempt(ctx, p, q)
		if res.Err == nil {
			logging.Research("Route success: query=%q provider=%s after %d failed attempts",
				q.Text, p.ID(), len(attempts))
			return RouteResult{
				Provider: p.ID(),
				Content:  res.Content,
				Attempts: attempts,
			}
		}

		logging.ResearchWarn("Provider attempt failed: %v", res.Err)
		attempts = append(attempts, Attempt{Provider: p.ID(), Err: res.Err})
	}

	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.Provider
	}
	return RouteResult{
		Err: &ProviderError{
			Kind: KindAllFailed,
			Message: fmt.Sprintf("all providers failed for query %q (attempted: %s)",
				q.Text, strings.Join(ids, ",")),
		},
		Attempts: attempts,
	}
}

// attempt races one provider call against its timeout. The buffered channel
// guarantees exactly one settlement even when the call and the timer finish
// nearly simultaneously; a late result is simply discarded.
func (r *Router) attempt(ctx context.Context, p Provider, q Query) ProviderResult {
	timeout := p.Timeout()
	if timeout <= 0 {
		timeout = r.timeout
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan ProviderResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- Failure(p.ID(), KindUnknown, "%v", rec)
			}
		}()
		ch <- p.Search(attemptCtx, q)
	}()

	select {
	case res := <-ch:
		if res.Err != nil && res.Err.Kind == "" {
			// Providers should classify their own failures; anything
			// unclassified is reported as unexpected.
			res.Err.Kind = KindUnknown
		}
		return res
	case <-attemptCtx.Done():
		return Failure(p.ID(), KindTimeout, "provider %s timed out after %s", p.ID(), timeout)
	}
}

// orderProviders merges explicit preference, the intent fallback table, and
// the remaining enabled providers (in registry order), deduplicating while
// preserving first occurrence. Every enabled provider appears exactly once.
func orderProviders(enabled []Provider, explicit []string, intent Intent) []Provider {
	byID := make(map[string]Provider, len(enabled))
	for _, p := range enabled {
		byID[p.ID()] = p
	}

	ordered := make([]Provider, 0, len(enabled))
	seen := make(map[string]bool, len(enabled))
	add := func(id string) {
		if seen[id] {
			return
		}
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
			seen[id] = true
		}
	}

	for _, id := range explicit {
		add(id)
	}
	for _, id := range fallbackOrder(intent) {
		add(id)
	}
	for _, p := range enabled {
		add(p.ID())
	}

	return ordered
}
