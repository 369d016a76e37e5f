package httpmiddleware

import (
	"net/http"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists the origins allowed to call the API. Empty, or the
	// single entry "*", allows every origin.
	AllowOrigins []string
	// AllowHeaders lists the request headers clients may send. The session
	// header must be listed here for browser clients to reach the API.
	AllowHeaders []string
}

// CORS returns a middleware answering preflight requests and attaching the
// allow-origin headers to actual responses.
func CORS(cfg CORSConfig) Middleware {
	allowAll := len(cfg.AllowOrigins) == 0
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(o)] = struct{}{}
	}

	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	if allowHeaders == "" {
		allowHeaders = "Content-Type, X-Session-ID, X-Request-ID"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			allowOrigin := ""
			switch {
			case allowAll:
				allowOrigin = "*"
			default:
				if _, ok := allowed[strings.ToLower(origin)]; ok {
					allowOrigin = origin
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowOrigin != "" {
					w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			}
			next.ServeHTTP(w, r)
		})
	}
}
