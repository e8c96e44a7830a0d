// Package requesttime captures one "now" per request so every derived value in
// a response (validity windows, expiry timestamps) agrees with the others.
package requesttime

import (
	"net/http"
	"time"

	"qrpass/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
