package verifyurl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeHost(t *testing.T) {
	t.Run("ascii host is unchanged", func(t *testing.T) {
		enc := EncodeHost("verify.example.org:8443")
		assert.False(t, enc.Fallback())
		assert.Equal(t, "verify.example.org:8443", enc.Host)
		assert.False(t, enc.Encoded)
	})

	t.Run("unicode host becomes punycode", func(t *testing.T) {
		enc := EncodeHost("пример.рф")
		assert.False(t, enc.Fallback())
		assert.Equal(t, "xn--e1afmkfd.xn--p1ai", enc.Host)
		assert.True(t, enc.Encoded)
	})

	t.Run("port survives encoding", func(t *testing.T) {
		enc := EncodeHost("пример.рф:8080")
		assert.Equal(t, "xn--e1afmkfd.xn--p1ai:8080", enc.Host)
	})

	t.Run("unencodable host falls back to the raw value", func(t *testing.T) {
		raw := "bad host☃!"
		enc := EncodeHost(raw)
		assert.True(t, enc.Fallback())
		assert.Equal(t, raw, enc.Host)
		assert.False(t, enc.Encoded)
	})
}

func TestBuild(t *testing.T) {
	t.Run("composes the verification url", func(t *testing.T) {
		got, enc := Build("verify.example.org", "1234567890123456", "0123456789abcdef0123456789abcdef", "ru")
		assert.False(t, enc.Fallback())
		assert.Equal(t, "https://verify.example.org/verify/1234567890123456?lang=ru&ck=0123456789abcdef0123456789abcdef", got)
	})

	t.Run("strips quotes from the query", func(t *testing.T) {
		got, _ := Build("verify.example.org", "1", "ab'cd", "'en'")
		assert.Equal(t, "https://verify.example.org/verify/1?lang=en&ck=abcd", got)
	})

	t.Run("fallback host is still usable", func(t *testing.T) {
		got, enc := Build("bad host☃!", "1", "n", "ru")
		assert.True(t, enc.Fallback())
		assert.True(t, strings.HasPrefix(got, "https://bad host☃!/verify/1?"))
	})
}

func TestRedirect(t *testing.T) {
	t.Run("forwards the query without quotes", func(t *testing.T) {
		got := Redirect("https://authority.example/", "42", "lang=ru&ck='x'")
		assert.Equal(t, "https://authority.example/verify/42?lang=ru&ck=x", got)
	})

	t.Run("encoded sequences are forwarded untouched", func(t *testing.T) {
		got := Redirect("https://authority.example", "42", "lang=ru&ck=%%2727x'")
		assert.Equal(t, "https://authority.example/verify/42?lang=ru&ck=%%2727x", got)
	})

	t.Run("no literal quote survives", func(t *testing.T) {
		for _, q := range []string{"''", "a'''b", "'%27'", "ck=x''y"} {
			assert.NotContains(t, StripQuotes(q), "'", q)
		}
	})

	t.Run("empty query adds no separator", func(t *testing.T) {
		assert.Equal(t, "https://authority.example/verify/42", Redirect("https://authority.example", "42", ""))
	})
}
