package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"qrpass/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	t.Run("first forwarded address wins", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", ClientIPFromRequest(r))
	})

	t.Run("real ip header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Real-IP", " 198.51.100.2 ")
		assert.Equal(t, "198.51.100.2", ClientIPFromRequest(r))
	})

	t.Run("remote addr without port", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "192.0.2.1:5555"
		assert.Equal(t, "192.0.2.1", ClientIPFromRequest(r))
	})
}

func TestClientMetadataMiddleware(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	r.Header.Set("User-Agent", "test-agent")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.1", gotIP)
	assert.Equal(t, "test-agent", gotUA)
}

func TestDescribeClient(t *testing.T) {
	assert.Equal(t, ClientDescription{}, DescribeClient(""))

	desc := DescribeClient("Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
	assert.True(t, desc.Mobile)
	assert.False(t, desc.Bot)
	assert.Contains(t, desc.Browser, "Safari")
}
