package models

type Coordinates struct {
	Lon float64 `json:"lon" example:"30.5234"`
	Lat float64 `json:"lat" example:"50.4501"`
}

type Condition struct {
	Main        string `json:"main" example:"Clouds"`
	Description string `json:"description" example:"overcast clouds"`
}

type Temperature struct {
	Temp      float64 `json:"temp" example:"12.4"`
	FeelsLike float64 `json:"feels_like" example:"11.2"`
	TempMin   float64 `json:"temp_min" example:"11.0"`
	TempMax   float64 `json:"temp_max" example:"13.9"`
	Humidity  int     `json:"humidity" example:"71"`
}

type Wind struct {
	Speed float64  `json:"speed" example:"3.6"`
	Deg   int      `json:"deg" example:"240"`
	Gust  *float64 `json:"gust" example:"7.1"`
}

// WeatherSnapshot is the stored and served view of the current weather.
// Timestamp is the provider's observation time in unix seconds.
type WeatherSnapshot struct {
	Location    string      `json:"location" example:"Kyiv"`
	Coordinates Coordinates `json:"coordinates"`
	Weather     Condition   `json:"weather"`
	Temperature Temperature `json:"temperature"`
	Wind        Wind        `json:"wind"`
	Visibility  int         `json:"visibility" example:"10000"`
	Timestamp   int64       `json:"timestamp" example:"1700000000"`
}
