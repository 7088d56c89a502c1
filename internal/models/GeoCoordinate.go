package models

import "math"

type GeoCoordinate struct {
	Lat float64 `json:"lat" example:"50.4501"`
	Lon float64 `json:"lon" example:"30.5234"`
}

// Valid reports whether both components are finite and within range.
func (g GeoCoordinate) Valid() bool {
	for _, v := range []float64{g.Lat, g.Lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}
