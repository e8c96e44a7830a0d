package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"qrpass/pkg/requestcontext"
)

// ClientMetadata extracts client IP address and User-Agent from the request
// and adds them to the context. Apply it early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the real client IP, honouring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first entry is the original client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}

// ClientDescription is a coarse, log-friendly view of a User-Agent.
type ClientDescription struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// DescribeClient parses a raw User-Agent header. Empty input yields a zero value.
func DescribeClient(raw string) ClientDescription {
	if raw == "" {
		return ClientDescription{}
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	browser := name
	if version != "" {
		browser = name + " " + version
	}
	return ClientDescription{
		Browser: browser,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}
