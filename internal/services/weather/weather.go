package weather

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"city-weather/internal/metrics"
	"city-weather/internal/models"
	"city-weather/internal/storage/cache"
	"city-weather/internal/writeback"
	"city-weather/pkg/apperr"
	"city-weather/pkg/logger"
	"city-weather/pkg/lookup"
)

const (
	DefaultWeatherRefTTL = 300 * time.Second

	taskSnapshotPut = "snapshot_put"
	taskCacheSet    = "cache_set"
	taskEventAppend = "event_append"
)

type LookupCache interface {
	Get(ctx context.Context, key string) lookup.Result[string]
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
}

type SnapshotStore interface {
	Get(ctx context.Context, key string) lookup.Result[models.WeatherSnapshot]
	Put(ctx context.Context, key string, snapshot models.WeatherSnapshot) error
}

type EventLog interface {
	Append(ctx context.Context, rec models.EventRecord) error
}

type WeatherProvider interface {
	Geocode(ctx context.Context, city string) (models.GeoCoordinate, error)
	CurrentWeather(ctx context.Context, coord models.GeoCoordinate) (models.CurrentWeatherPayload, error)
}

type Submitter interface {
	Submit(name string, task writeback.Task) bool
}

// WeatherService serves current weather cache-aside: pointer cache, then
// snapshot store, then provider. Fresh provider data is written back through
// the Submitter and never awaited.
type WeatherService struct {
	cache         LookupCache
	store         SnapshotStore
	events        EventLog
	provider      WeatherProvider
	writeback     Submitter
	weatherRefTTL time.Duration
	l             *logger.Logger
	m             *metrics.Metrics
}

type Options struct {
	Cache         LookupCache
	Store         SnapshotStore
	Events        EventLog
	Provider      WeatherProvider
	Writeback     Submitter
	WeatherRefTTL time.Duration
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
}

func NewWeatherService(opts Options) *WeatherService {
	ttl := opts.WeatherRefTTL
	if ttl <= 0 {
		ttl = DefaultWeatherRefTTL
	}
	return &WeatherService{
		cache:         opts.Cache,
		store:         opts.Store,
		events:        opts.Events,
		provider:      opts.Provider,
		writeback:     opts.Writeback,
		weatherRefTTL: ttl,
		l:             opts.Logger.With(map[string]any{"component": "weather_service"}),
		m:             opts.Metrics,
	}
}

// GetWeather returns the latest obtainable snapshot for city. Only provider
// errors are returned; cache and store trouble falls through to the provider.
func (s *WeatherService) GetWeather(ctx context.Context, city string) (models.WeatherSnapshot, error) {
	city = models.NormalizeCity(city)
	if city == "" {
		return models.WeatherSnapshot{}, apperr.NewBadRequest("City name is required", nil)
	}

	if snapshot, ok := s.fromStorage(ctx, city); ok {
		return snapshot, nil
	}

	coord, err := s.GetGeo(ctx, city)
	if err != nil {
		return models.WeatherSnapshot{}, err
	}

	started := time.Now()
	payload, err := s.provider.CurrentWeather(ctx, coord)
	s.m.ProviderCall("current_weather", outcome(err), time.Since(started))
	if err != nil {
		return models.WeatherSnapshot{}, errors.Wrapf(err, "current weather for %s", city)
	}

	snapshot, err := payload.ToSnapshot()
	if err != nil {
		return models.WeatherSnapshot{}, apperr.NewBadRequest("Weather data is empty", err)
	}

	reference := models.DeriveReference(city, snapshot.Timestamp)
	s.scheduleWriteBack(city, reference, snapshot)

	s.l.Info("weather fetched from provider", map[string]any{"city": city, "reference": reference})
	return snapshot, nil
}

// fromStorage treats Miss and Failed alike at both steps; the difference only
// shows in logs and metrics.
func (s *WeatherService) fromStorage(ctx context.Context, city string) (models.WeatherSnapshot, bool) {
	ref := s.cache.Get(ctx, models.WeatherRefKey(city))
	s.m.CacheLookup("weatherRef", ref.State.String())
	if !ref.IsHit() {
		return models.WeatherSnapshot{}, false
	}

	res := s.store.Get(ctx, ref.Value)
	fields := map[string]any{"city": city, "reference": ref.Value}
	switch res.State {
	case lookup.StateHit:
		s.m.SnapshotRead("hit")
		s.l.Debug("weather served from snapshot store", fields)
		return res.Value, true
	case lookup.StateMiss:
		s.m.SnapshotRead("miss")
		s.l.Debug("cached reference points at a missing snapshot", fields)
	case lookup.StateFailed:
		fields["error"] = res.Err
		if errors.Is(res.Err, lookup.ErrCorrupt) {
			s.m.SnapshotRead("corrupt")
			fields["reason"] = "corrupt"
		} else {
			s.m.SnapshotRead("failed")
			fields["reason"] = "unavailable"
		}
		s.l.Warning("snapshot read failed, refetching", fields)
	}
	return models.WeatherSnapshot{}, false
}

// GetGeo resolves city through the geo cache. Coordinates are cached without
// expiry; a failed cache write does not fail the call.
func (s *WeatherService) GetGeo(ctx context.Context, city string) (models.GeoCoordinate, error) {
	city = models.NormalizeCity(city)
	key := models.GeoKey(city)

	res := cache.GetJSON[models.GeoCoordinate](ctx, s.cache, key)
	switch {
	case res.IsHit() && res.Value.Valid():
		s.m.CacheLookup("geo", res.State.String())
		return res.Value, nil
	case res.IsHit(), errors.Is(res.Err, lookup.ErrCorrupt):
		s.m.CacheLookup("geo", "corrupt")
		s.l.Warning("cached coordinate is corrupt, refetching", map[string]any{"city": city, "reason": "corrupt"})
	default:
		s.m.CacheLookup("geo", res.State.String())
	}

	started := time.Now()
	coord, err := s.provider.Geocode(ctx, city)
	s.m.ProviderCall("geocode", outcome(err), time.Since(started))
	if err != nil {
		return models.GeoCoordinate{}, errors.Wrapf(err, "geocode %s", city)
	}

	if !s.cache.Set(ctx, key, coord, 0) {
		s.l.Warning("coordinate not cached", map[string]any{"city": city})
	}
	return coord, nil
}

func (s *WeatherService) scheduleWriteBack(city, reference string, snapshot models.WeatherSnapshot) {
	tasks := []struct {
		name string
		run  writeback.Task
	}{
		{taskSnapshotPut, func(ctx context.Context) error {
			return s.store.Put(ctx, reference, snapshot)
		}},
		{taskCacheSet, func(ctx context.Context) error {
			if !s.cache.Set(ctx, models.WeatherRefKey(city), reference, s.weatherRefTTL) {
				return errors.Errorf("cache set %s failed", models.WeatherRefKey(city))
			}
			return nil
		}},
		{taskEventAppend, func(ctx context.Context) error {
			return s.events.Append(ctx, models.EventRecord{
				CityName:  city,
				Timestamp: snapshot.Timestamp,
				FilePath:  reference,
			})
		}},
	}

	for _, t := range tasks {
		if !s.writeback.Submit(t.name, t.run) {
			s.l.Warning("write-back task not scheduled", map[string]any{"task": t.name, "city": city})
		}
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}
