// Package generator produces token identifiers and URL check nonces.
//
// Identifiers are 16 uniformly random decimal digits. They are not checked
// against existing keys here; uniqueness is probabilistic (about 53 bits).
// Nonces are decoration only and are never validated.
package generator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// IdentifierLength is the number of digits in an identifier.
const IdentifierLength = 16

// NonceLength is the number of hex characters in a nonce.
const NonceLength = 32

// Generator produces identifiers and nonces.
type Generator interface {
	NewIdentifier() (string, error)
	NewNonce() string
}

// Random draws from crypto/rand.
type Random struct {
	reader io.Reader
}

// New returns a Random generator backed by crypto/rand.
func New() *Random {
	return &Random{reader: rand.Reader}
}

// NewIdentifier returns IdentifierLength uniformly distributed digits.
func (g *Random) NewIdentifier() (string, error) {
	return identifier(g.reader)
}

// NewNonce returns NonceLength lowercase hex characters.
func (g *Random) NewNonce() string {
	return NewNonce()
}

// NewIdentifier returns IdentifierLength digits from crypto/rand.
func NewIdentifier() (string, error) {
	return identifier(rand.Reader)
}

// NewNonce hex-encodes the 16 bytes of a random UUID.
func NewNonce() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// identifier maps random bytes onto digits, rejecting bytes >= 250 so every
// digit is equally likely.
func identifier(r io.Reader) (string, error) {
	out := make([]byte, 0, IdentifierLength)
	buf := make([]byte, IdentifierLength)
	for len(out) < IdentifierLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
			if len(out) == IdentifierLength {
				break
			}
		}
	}
	return string(out), nil
}
