package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct code matches", func(t *testing.T) {
		err := New(CodeValidation, "bad date")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("nested codes are visible through fmt wrapping", func(t *testing.T) {
		inner := New(CodeUnavailable, "redis down")
		outer := Wrap(fmt.Errorf("issue: %w", inner), CodeInternal, "issue failed")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, Is(outer, CodeUnavailable))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "token store unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "token store unavailable: connection refused", err.Error())
	assert.Equal(t, "token store unavailable", MessageOf(err))
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeUnavailable:  http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, ToHTTPStatus(code), "code %s", code)
	}
}
