package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf_WalksWrapChain(t *testing.T) {
	base := NewBadGateway("weather provider unavailable", errors.New("503"))
	wrapped := errors.Wrap(base, "fetch current weather")

	assert.Equal(t, BadGateway, KindOf(wrapped))
	assert.Equal(t, "weather provider unavailable", Message(wrapped))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, "Internal server error", Message(errors.New("boom")))
}

func TestIsResourceMissing(t *testing.T) {
	assert.True(t, IsResourceMissing(errors.Wrap(NewResourceMissing("bucket weather-data", nil), "put")))
	assert.False(t, IsResourceMissing(NewNotFound("city not found")))
	assert.False(t, IsResourceMissing(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		NotFound:        http.StatusNotFound,
		BadRequest:      http.StatusBadRequest,
		BadGateway:      http.StatusBadGateway,
		Internal:        http.StatusInternalServerError,
		ResourceMissing: http.StatusInternalServerError,
	}
	for kind, status := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, status, HTTPStatus(kind))
		})
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	err := NewBadRequest("invalid API key", errors.New("status 401"))
	assert.Equal(t, "invalid API key: status 401", err.Error())
	assert.Equal(t, "city not found", NewNotFound("city not found").Error())
}
