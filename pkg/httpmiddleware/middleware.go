// Package httpmiddleware provides the net/http middleware used by the
// checkout server: panic recovery, request IDs, request logging, CORS and a
// per-client rate limit.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies the middlewares to h so that the first listed middleware is the
// outermost one.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
