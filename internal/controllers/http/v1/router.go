package http

import (
	"context"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"

	"city-weather/internal/metrics"
	"city-weather/internal/models"
	"city-weather/pkg/logger"
)

type WeatherService interface {
	GetWeather(ctx context.Context, city string) (models.WeatherSnapshot, error)
}

type routes struct {
	service  WeatherService
	validate *validator.Validate
	l        *logger.Logger
}

func NewRouter(
	app *fiber.App,
	weatherService WeatherService,
	m *metrics.Metrics,
	l *logger.Logger,
) {
	r := &routes{
		service:  weatherService,
		validate: newValidator(),
		l:        l,
	}

	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		swaggerData, err := os.ReadFile("docs/swagger.json")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to read Swagger documentation")
		}

		c.Set("Content-Type", "application/json")
		return c.Send(swaggerData)
	})

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	v1 := app.Group("/api/v1")
	v1.Get("/weather", r.handleWeatherCall)
}
