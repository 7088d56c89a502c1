package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"city-weather/config"
	"city-weather/internal/models"
	"city-weather/pkg/apperr"
	"city-weather/pkg/logger"
)

const (
	OpenWeatherName = "openweathermap"

	defaultProviderTimeout = 10 * time.Second
)

var errServerStatus = errors.New("provider server error")

type httpResult struct {
	status int
	body   []byte
}

type OpenWeatherRepository struct {
	BaseURL    string
	GeoURL     string
	APIKey     string
	Units      string
	Lang       string
	timeout    time.Duration
	httpClient HTTPClient
	cb         *gobreaker.CircuitBreaker
	l          *logger.Logger
}

func NewOpenWeatherRepository(cfg config.WeatherConfig, l *logger.Logger, httpClient HTTPClient) (*OpenWeatherRepository, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	r := &OpenWeatherRepository{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		GeoURL:     strings.TrimRight(cfg.GeoURL, "/"),
		APIKey:     cfg.APIKey,
		Units:      valueOr(cfg.Units, "metric"),
		Lang:       valueOr(cfg.Lang, "en"),
		timeout:    timeout,
		httpClient: httpClient,
		l:          l.With(map[string]any{"component": "provider", "provider": OpenWeatherName}),
	}

	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	r.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        OpenWeatherName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Duration(cfg.Breaker.OpenTimeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A caller that went away says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.l.Warning("circuit breaker state changed", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return r, nil
}

func (r *OpenWeatherRepository) Name() string {
	return OpenWeatherName
}

func (r *OpenWeatherRepository) Geocode(ctx context.Context, city string) (models.GeoCoordinate, error) {
	city = strings.TrimSpace(city)
	params := url.Values{}
	params.Set("q", city)
	params.Set("limit", "1")
	params.Set("appid", r.APIKey)

	r.l.Info("fetching coordinates", map[string]any{"city": city})

	res, err := r.do(ctx, r.GeoURL+"/direct", params)
	if err != nil {
		return models.GeoCoordinate{}, err
	}

	switch {
	case res.status == http.StatusNotFound:
		return models.GeoCoordinate{}, apperr.NewNotFound(fmt.Sprintf("City '%s' not found", city))
	case res.status != http.StatusOK:
		return models.GeoCoordinate{}, apperr.NewBadRequest(
			fmt.Sprintf("Failed to fetch city coordinates: %d", res.status), nil)
	}

	var found []models.GeocodeResult
	if err := json.Unmarshal(res.body, &found); err != nil {
		return models.GeoCoordinate{}, apperr.NewBadGateway("Invalid geocoding response", err)
	}
	if len(found) == 0 {
		r.l.Warning("no coordinates found", map[string]any{"city": city})
		return models.GeoCoordinate{}, apperr.NewNotFound(fmt.Sprintf("City '%s' not found", city))
	}

	coord := models.GeoCoordinate{Lat: found[0].Lat, Lon: found[0].Lon}
	if !coord.Valid() {
		return models.GeoCoordinate{}, apperr.NewBadGateway("Invalid geocoding response", nil)
	}
	return coord, nil
}

func (r *OpenWeatherRepository) CurrentWeather(ctx context.Context, coord models.GeoCoordinate) (models.CurrentWeatherPayload, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("appid", r.APIKey)
	params.Set("units", r.Units)
	params.Set("lang", r.Lang)

	r.l.Info("fetching current weather", map[string]any{"lat": coord.Lat, "lon": coord.Lon})

	res, err := r.do(ctx, r.BaseURL+"/weather", params)
	if err != nil {
		return models.CurrentWeatherPayload{}, err
	}

	switch {
	case res.status == http.StatusBadRequest:
		return models.CurrentWeatherPayload{}, apperr.NewBadRequest(
			fmt.Sprintf("Invalid coordinates: %v, %v", coord.Lat, coord.Lon), nil)
	case res.status != http.StatusOK:
		return models.CurrentWeatherPayload{}, apperr.NewBadRequest(
			fmt.Sprintf("Failed to fetch weather data: %d", res.status), nil)
	}

	var payload models.CurrentWeatherPayload
	if err := json.Unmarshal(res.body, &payload); err != nil {
		return models.CurrentWeatherPayload{}, apperr.NewBadGateway("Invalid weather response", err)
	}
	return payload, nil
}

// do runs one GET through the breaker. Transport failures, timeouts, 5xx and
// 401 come back as errors; other statuses are left to the caller.
func (r *OpenWeatherRepository) do(ctx context.Context, endpoint string, params url.Values) (httpResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return httpResult{}, apperr.NewInternal("build provider request", err)
	}

	out, err := r.cb.Execute(func() (interface{}, error) {
		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "read response body")
		}
		res := httpResult{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return res, errServerStatus
		}
		return res, nil
	})

	if err != nil {
		return httpResult{}, r.transportError(endpoint, out, err)
	}

	res := out.(httpResult)
	r.l.Debug("provider response", map[string]any{"endpoint": endpoint, "status": res.status})

	if res.status == http.StatusUnauthorized {
		r.l.Error(errors.New("provider rejected API key"), map[string]any{"endpoint": endpoint})
		return httpResult{}, apperr.NewBadRequest("Invalid API key", nil)
	}
	return res, nil
}

func (r *OpenWeatherRepository) transportError(endpoint string, out interface{}, err error) error {
	fields := map[string]any{"endpoint": endpoint}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		r.l.Warning("provider circuit open", fields)
		return apperr.NewBadGateway("Weather service unavailable", err)
	case errors.Is(err, errServerStatus):
		res, _ := out.(httpResult)
		fields["status"] = res.status
		r.l.Error(err, fields)
		return apperr.NewBadGateway(fmt.Sprintf("Weather service server error: %d", res.status), err)
	case errors.Is(err, context.Canceled):
		r.l.Debug("provider call cancelled by caller", fields)
		return apperr.NewBadGateway("Weather service request cancelled", err)
	case isTimeout(err):
		r.l.Warning("provider timeout", fields)
		return apperr.NewBadGateway("Weather service timeout", err)
	default:
		r.l.Error(err, fields)
		return apperr.NewBadGateway("Weather service unreachable", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
