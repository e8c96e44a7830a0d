package qr

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleURL = "https://example.org/verify/1234567890123456?lang=ru&ck=0123456789abcdef0123456789abcdef"

func TestEncodeProducesSquarePNG(t *testing.T) {
	out, err := NewEncoder().Encode(sampleURL, 4)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())
	assert.Zero(t, b.Dx()%4, "width must be a multiple of the scale")
}

func TestEncodeIsDeterministic(t *testing.T) {
	e := NewEncoder()
	a, err := e.Encode(sampleURL, 4)
	require.NoError(t, err)
	b, err := e.Encode(sampleURL, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeScaleControlsSize(t *testing.T) {
	e := NewEncoder()
	small, err := e.Encode(sampleURL, 2)
	require.NoError(t, err)
	large, err := e.Encode(sampleURL, 6)
	require.NoError(t, err)

	si, err := png.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	li, err := png.Decode(bytes.NewReader(large))
	require.NoError(t, err)
	assert.Equal(t, si.Bounds().Dx()*3, li.Bounds().Dx())
}

func TestEncodeLongURL(t *testing.T) {
	long := sampleURL + "&pad=" + strings.Repeat("x", 400)
	_, err := NewEncoder().Encode(long, 0)
	assert.NoError(t, err)
}
