package testutil

import (
	"context"
	"net/http"
	"time"

	"qrpass/pkg/requestcontext"
)

// WithOperator marks the request as authenticated by the given operator,
// as the operator auth middleware would.
func WithOperator(req *http.Request, username string) *http.Request {
	return req.WithContext(requestcontext.WithOperator(req.Context(), username))
}

// WithBasicAuth sets operator credentials on the request.
func WithBasicAuth(req *http.Request, username, password string) *http.Request {
	req.SetBasicAuth(username, password)
	return req
}

// FixedTimeContext returns a context whose request time is pinned to now.
func FixedTimeContext(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}
