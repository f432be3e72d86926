// Package requesttime pins a single "now" per HTTP request so token issuance,
// expiry checks and audit timestamps within one request agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"inkwell/pkg/requestcontext"
)

// Middleware captures the current time (second precision, matching token
// timestamps) at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Truncate(time.Second)
		ctx := requestcontext.WithTime(r.Context(), now)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
