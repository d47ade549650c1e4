// Package enrich supplies the music and weather content used by chat commands.
package enrich

import (
	"context"
	"errors"
)

// ErrUpstream marks a failed or rejected call to the remote content API.
var ErrUpstream = errors.New("enrichment upstream error")

// Track is a randomly picked song.
type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverURL string `json:"cover_url"`
	MediaURL string `json:"media_url"`
}

// Day is one row of a multi-day forecast.
type Day struct {
	Date        string `json:"date"`
	Condition   string `json:"condition"`
	Temperature string `json:"temperature"`
	Wind        string `json:"wind"`
	AirQuality  string `json:"air_quality"`
}

// Forecast is an ordered list of days for one city.
type Forecast struct {
	City string `json:"city"`
	Days []Day  `json:"days"`
}

// Provider is the capability set behind the @音乐一下 and @天气 commands.
type Provider interface {
	RandomTrack(ctx context.Context) (Track, error)
	Forecast(ctx context.Context, city string) (Forecast, error)
}
