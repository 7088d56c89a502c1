package models

// EventRecord is one audit row per provider fetch, identified by
// (CityName, Timestamp).
type EventRecord struct {
	CityName  string `json:"city_name"`
	Timestamp int64  `json:"timestamp"`
	FilePath  string `json:"file_path"`
}
