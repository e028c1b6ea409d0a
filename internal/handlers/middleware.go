package handlers

import (
	"net/http"

	"github.com/ffacttt-hash/frontend/internal/env"
)

// MiddlewareRobotsTag keeps non-production deployments out of search
// indexes.
func MiddlewareRobotsTag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !env.Current.IsProduction() {
			w.Header().Set("X-Robots-Tag", "noindex, nofollow")
		}
		next.ServeHTTP(w, r)
	})
}
