package repositories

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"city-weather/config"
	"city-weather/internal/models"
	"city-weather/pkg/logger"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WeatherProvider resolves cities to coordinates and coordinates to the
// current weather. Errors are *apperr.Error.
type WeatherProvider interface {
	Name() string
	Geocode(ctx context.Context, city string) (models.GeoCoordinate, error)
	CurrentWeather(ctx context.Context, coord models.GeoCoordinate) (models.CurrentWeatherPayload, error)
}

func InitWeatherProvider(cfg config.WeatherConfig, l *logger.Logger, httpClient HTTPClient) (WeatherProvider, error) {
	switch cfg.Provider {
	case "", OpenWeatherName:
		return NewOpenWeatherRepository(cfg, l, httpClient)
	default:
		return nil, errors.Errorf("unknown weather provider %q", cfg.Provider)
	}
}
