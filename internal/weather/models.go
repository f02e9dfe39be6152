package weather

import (
	"time"
)

// Summary is the short condition description reported by the provider.
type Summary struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Temperature holds the air and perceived temperature in provider units (Kelvin by default).
type Temperature struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
}

// Wind holds wind speed in meters per second.
type Wind struct {
	Speed float64 `json:"speed"`
}

// Sun holds sunrise and sunset as unix seconds.
type Sun struct {
	Sunrise int64 `json:"sunrise"`
	Sunset  int64 `json:"sunset"`
}

// Payload is the current weather for one location as returned by the provider.
// The cache treats it as an immutable value.
type Payload struct {
	Weather     Summary     `json:"weather"`
	Temperature Temperature `json:"temperature"`
	Visibility  int         `json:"visibility"`
	Wind        Wind        `json:"wind"`
	Datetime    int64       `json:"datetime"` // unix seconds of the observation
	Sys         Sun         `json:"sys"`
	Timezone    int         `json:"timezone"` // shift from UTC in seconds
	Name        string      `json:"name"`
}

// Entry is a cached payload for a normalized location key.
type Entry struct {
	Location  string    `json:"location"`
	Payload   Payload   `json:"payload"`
	FetchedAt time.Time `json:"fetchedAt"`
}
