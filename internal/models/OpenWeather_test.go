package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kyivPayload = `{
  "coord": {"lon": 30.5234, "lat": 50.4501},
  "weather": [
    {"id": 804, "main": "Clouds", "description": "overcast clouds", "icon": "04d"},
    {"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}
  ],
  "base": "stations",
  "main": {"temp": 12.4, "feels_like": 11.2, "temp_min": 11.0, "temp_max": 13.9, "pressure": 1012, "humidity": 71},
  "visibility": 10000,
  "wind": {"speed": 3.6, "deg": 240},
  "clouds": {"all": 100},
  "dt": 1700000000,
  "sys": {"country": "UA", "sunrise": 1699940000, "sunset": 1699975000},
  "timezone": 7200,
  "id": 703448,
  "name": "Kyiv",
  "cod": 200
}`

func TestCurrentWeatherPayload_ToSnapshot(t *testing.T) {
	var p CurrentWeatherPayload
	require.NoError(t, json.Unmarshal([]byte(kyivPayload), &p))

	s, err := p.ToSnapshot()
	require.NoError(t, err)

	assert.Equal(t, "Kyiv", s.Location)
	assert.Equal(t, Coordinates{Lon: 30.5234, Lat: 50.4501}, s.Coordinates)
	assert.Equal(t, Condition{Main: "Clouds", Description: "overcast clouds"}, s.Weather)
	assert.Equal(t, Temperature{Temp: 12.4, FeelsLike: 11.2, TempMin: 11.0, TempMax: 13.9, Humidity: 71}, s.Temperature)
	assert.Equal(t, 3.6, s.Wind.Speed)
	assert.Equal(t, 240, s.Wind.Deg)
	assert.Nil(t, s.Wind.Gust)
	assert.Equal(t, 10000, s.Visibility)
	assert.Equal(t, int64(1700000000), s.Timestamp)
}

func TestCurrentWeatherPayload_ToSnapshotEmptyConditions(t *testing.T) {
	var p CurrentWeatherPayload
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Kyiv","weather":[],"dt":1}`), &p))

	_, err := p.ToSnapshot()
	assert.ErrorIs(t, err, ErrEmptyConditions)
}

func TestWeatherSnapshot_JSONShape(t *testing.T) {
	gust := 7.1
	s := WeatherSnapshot{Location: "Kyiv", Wind: Wind{Speed: 1, Deg: 2, Gust: &gust}, Timestamp: 5}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var shape map[string]any
	require.NoError(t, json.Unmarshal(raw, &shape))
	for _, key := range []string{"location", "coordinates", "weather", "temperature", "wind", "visibility", "timestamp"} {
		assert.Contains(t, shape, key)
	}
	assert.Equal(t, 7.1, shape["wind"].(map[string]any)["gust"])
	assert.Contains(t, shape["temperature"], "feels_like")
}
