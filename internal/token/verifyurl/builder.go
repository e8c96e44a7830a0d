// Package verifyurl composes the externally reachable verification URL that is
// embedded in a token's QR code.
package verifyurl

import (
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// VerifyPath is the path prefix of verification URLs.
const VerifyPath = "/verify/"

// HostEncoding is the result of converting a host to its on-wire form.
// Exactly one branch holds: Err == nil and Host is the wire form, or
// Err != nil and Host is the original input.
type HostEncoding struct {
	Host string
	// Encoded is set when Host differs from the input because it was
	// converted to punycode.
	Encoded bool
	Err     error
}

// Fallback reports whether encoding failed and the raw host is used.
func (h HostEncoding) Fallback() bool {
	return h.Err != nil
}

// EncodeHost converts a non-ASCII host (port preserved) to punycode. ASCII
// hosts are returned unchanged.
func EncodeHost(host string) HostEncoding {
	if isASCII(host) {
		return HostEncoding{Host: host}
	}

	name, port, err := net.SplitHostPort(host)
	if err != nil {
		name, port = host, ""
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return HostEncoding{Host: host, Err: err}
	}
	if port != "" {
		ascii = net.JoinHostPort(ascii, port)
	}
	return HostEncoding{Host: ascii, Encoded: true}
}

// Build returns https://{host}/verify/{id}?lang={locale}&ck={nonce}. Single
// quotes are stripped from the query. The host encoding outcome is returned
// so callers can record a fallback.
func Build(host, id, nonce, locale string) (string, HostEncoding) {
	enc := EncodeHost(host)
	query := StripQuotes("lang=" + locale + "&ck=" + nonce)
	return "https://" + enc.Host + VerifyPath + url.PathEscape(id) + "?" + query, enc
}

// Redirect builds the canonical authority URL for an identifier, forwarding
// rawQuery with single quotes stripped. An empty query adds no '?'.
func Redirect(authorityBaseURL, id, rawQuery string) string {
	target := strings.TrimRight(authorityBaseURL, "/") + VerifyPath + url.PathEscape(id)
	if q := StripQuotes(rawQuery); q != "" {
		target += "?" + q
	}
	return target
}

// StripQuotes removes every literal single-quote character. Percent-encoded
// sequences are forwarded untouched.
func StripQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
