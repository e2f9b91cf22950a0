// Package alloyhttp bridges an alloy container into net/http servers: a
// middleware opens one request scope per request and disposes it after the
// handler returns, so scoped components live exactly as long as the
// request that created them.
package alloyhttp

import (
	"context"
	"net/http"

	"github.com/alloydi/alloy"
)

type scopeContextKey struct{}

// Middleware returns an http middleware that enters a request scope on the
// container, stores it on the request context and exits it once the
// handler has returned. Exit errors are passed to onError when provided.
func Middleware(c *alloy.Container, onError ...func(error)) func(http.Handler) http.Handler {
	var report func(error)
	if len(onError) > 0 && onError[0] != nil {
		report = onError[0]
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := c.EnterScopeContext(r.Context())
			if err != nil {
				http.Error(w, "request scope unavailable", http.StatusInternalServerError)
				return
			}
			// Exit must run even when the handler panics, otherwise the
			// scope's lifecycle instances are never disposed.
			defer func() {
				if err := scope.Exit(r.Context()); err != nil && report != nil {
					report(err)
				}
			}()
			ctx := context.WithValue(r.Context(), scopeContextKey{}, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ScopeFromContext returns the request scope stored by Middleware, or nil
// when the request did not pass through it.
func ScopeFromContext(ctx context.Context) *alloy.RequestScope {
	scope, _ := ctx.Value(scopeContextKey{}).(*alloy.RequestScope)
	return scope
}

// Resolve materializes T within the request's scope.
func Resolve[T any](r *http.Request) (T, error) {
	scope := ScopeFromContext(r.Context())
	if scope == nil {
		var zero T
		return zero, &alloy.ScopeError{Reason: "request did not pass through alloyhttp.Middleware"}
	}
	return alloy.ResolveScoped[T](scope)
}
