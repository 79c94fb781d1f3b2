package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeNotFound:     http.StatusNotFound,
		ErrCodeUnauthorized: http.StatusUnauthorized,
		ErrCodeForbidden:    http.StatusForbidden,
		ErrCodeValidation:   http.StatusBadRequest,
		ErrCodeConflict:     http.StatusConflict,
		ErrCodeUpstream:     http.StatusBadGateway,
		ErrCodeInternal:     http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, string(code))
	}
}

func TestAs_UnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", ErrMatchNotFound)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
}

func TestMatchAlreadyDecided(t *testing.T) {
	err := MatchAlreadyDecided("accepted")
	assert.Equal(t, "match already accepted", err.Message)
	assert.True(t, IsConflict(err))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}

func TestWithStatus(t *testing.T) {
	err := WithStatus(ErrCodeUpstream, http.StatusTooManyRequests, "Max send attempts reached")
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
}
