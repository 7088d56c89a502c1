package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"city-weather/pkg/apperr"
)

type weatherQuery struct {
	City string `query:"city" validate:"required,min=2,max=100,cityname"`
}

// GetCityWeather godoc
// @Summary Get current weather for a city
// @Description Serves the latest snapshot from cache and storage, or fetches it from OpenWeatherMap
// @Tags Weather
// @Produce json
// @Param city query string true "City name (2-100 letters, spaces, hyphens, apostrophes, dots)" example(kyiv)
// @Success 200 {object} models.WeatherSnapshot "Current weather"
// @Failure 400 {object} httpserver.ErrorResponse "Bad request or provider rejected credentials"
// @Failure 404 {object} httpserver.ErrorResponse "City not found"
// @Failure 422 {object} httpserver.ErrorResponse "Invalid city name"
// @Failure 502 {object} httpserver.ErrorResponse "Weather provider unavailable"
// @Router /api/v1/weather [get]
//
//	curl -X GET "http://localhost:8080/api/v1/weather?city=kyiv"
func (r *routes) handleWeatherCall(c *fiber.Ctx) error {
	var q weatherQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid query parameters")
	}
	q.City = strings.TrimSpace(q.City)

	if err := r.validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, validationDetail(q, err))
	}

	snapshot, err := r.service.GetWeather(c.UserContext(), q.City)
	if err != nil {
		fields := map[string]any{"city": q.City, "kind": apperr.KindOf(err).String()}
		if apperr.HTTPStatus(apperr.KindOf(err)) >= fiber.StatusInternalServerError {
			r.l.Error(err, fields)
		} else {
			fields["error"] = err
			r.l.Info("weather request rejected", fields)
		}
		return err
	}

	return c.JSON(snapshot)
}
