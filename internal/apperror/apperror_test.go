package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	nf := New(NotFound, "project not found")
	wrapped := fmt.Errorf("update project: %w", nf)

	assert.Equal(t, NotFound, KindOf(nf))
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.Equal(t, Internal, KindOf(errors.New("connection reset")))
	assert.False(t, Is(nil, Internal))
}

func TestMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "project not found", Message(New(NotFound, "project not found")))
	assert.Equal(t, "Internal server error", Message(errors.New("pq: relation does not exist")))
	assert.Equal(t, "Internal server error", Message(Wrap(Internal, "insert failed", errors.New("boom"))))
}

func TestErrorString(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(Conflict, "subdomain already taken", cause)
	assert.Equal(t, "subdomain already taken: duplicate key", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Validation:     http.StatusBadRequest,
		Authentication: http.StatusUnauthorized,
		Authorization:  http.StatusForbidden,
		QuotaExceeded:  http.StatusForbidden,
		NotFound:       http.StatusNotFound,
		Conflict:       http.StatusConflict,
		RateLimited:    http.StatusTooManyRequests,
		Internal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind.String())
	}
}
