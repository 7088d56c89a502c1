package models

import "errors"

var ErrEmptyConditions = errors.New("weather data is empty")

// GeocodeResult is one entry of the OpenWeatherMap direct geocoding response.
type GeocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// CurrentWeatherPayload is the OpenWeatherMap /weather response, reduced to
// the fields the snapshot needs.
type CurrentWeatherPayload struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64  `json:"speed"`
		Deg   int      `json:"deg"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
	Cod  int    `json:"cod"`
}

// ToSnapshot takes the first weather condition of the payload.
func (p CurrentWeatherPayload) ToSnapshot() (WeatherSnapshot, error) {
	if len(p.Weather) == 0 {
		return WeatherSnapshot{}, ErrEmptyConditions
	}
	first := p.Weather[0]

	return WeatherSnapshot{
		Location:    p.Name,
		Coordinates: Coordinates{Lon: p.Coord.Lon, Lat: p.Coord.Lat},
		Weather:     Condition{Main: first.Main, Description: first.Description},
		Temperature: Temperature{
			Temp:      p.Main.Temp,
			FeelsLike: p.Main.FeelsLike,
			TempMin:   p.Main.TempMin,
			TempMax:   p.Main.TempMax,
			Humidity:  p.Main.Humidity,
		},
		Wind: Wind{
			Speed: p.Wind.Speed,
			Deg:   p.Wind.Deg,
			Gust:  p.Wind.Gust,
		},
		Visibility: p.Visibility,
		Timestamp:  p.Dt,
	}, nil
}
