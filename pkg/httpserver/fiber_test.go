package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-weather/pkg/apperr"
)

func decodeDetail(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Detail
}

func TestErrorHandler_MapsKinds(t *testing.T) {
	app := InitFiberServer("test", nil)
	app.Get("/not-found", func(c *fiber.Ctx) error {
		return apperr.NewNotFound("City 'Nowhereville' not found")
	})
	app.Get("/gateway", func(c *fiber.Ctx) error {
		return apperr.NewBadGateway("Weather service unavailable", nil)
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "city is required")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	cases := []struct {
		path   string
		status int
		detail string
	}{
		{"/not-found", http.StatusNotFound, "City 'Nowhereville' not found"},
		{"/gateway", http.StatusBadGateway, "Weather service unavailable"},
		{"/fiber", http.StatusUnprocessableEntity, "city is required"},
		{"/panic", http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.detail, decodeDetail(t, resp))
		})
	}
}

func TestProbes(t *testing.T) {
	ready := false
	app := InitFiberServer("test", func(*fiber.Ctx) bool { return ready })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/manage/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/manage/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	ready = true
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/manage/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
