package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	musicUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	weatherUserAgent = "xiaoxiaoapi/1.0.0"
)

// XXAPIClient talks to the xxapi.cn random-music and weather endpoints.
type XXAPIClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewXXAPIClient builds a client. A zero timeout means no client-side limit.
func NewXXAPIClient(baseURL, apiKey string, timeout time.Duration) *XXAPIClient {
	return &XXAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type xxEnvelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *T     `json:"data"`
}

type xxTrack struct {
	Name   string `json:"name"`
	Singer string `json:"singer"`
	Image  string `json:"image"`
	URL    string `json:"url"`
}

type xxWeather struct {
	City string `json:"city"`
	Data []struct {
		Date        string `json:"date"`
		Weather     string `json:"weather"`
		Temperature string `json:"temperature"`
		Wind        string `json:"wind"`
		AirQuality  string `json:"air_quality"`
	} `json:"data"`
}

// RandomTrack fetches a random song.
func (c *XXAPIClient) RandomTrack(ctx context.Context) (Track, error) {
	header := http.Header{}
	header.Set("api-key", c.apiKey)
	header.Set("User-Agent", musicUserAgent)

	var resp xxEnvelope[xxTrack]
	if err := c.get(ctx, "/api/randomkuwo", nil, header, &resp); err != nil {
		return Track{}, fmt.Errorf("random track: %w", err)
	}
	if resp.Code != http.StatusOK || resp.Data == nil {
		return Track{}, fmt.Errorf("random track: %w: code=%d msg=%s", ErrUpstream, resp.Code, resp.Msg)
	}
	return Track{
		Title:    resp.Data.Name,
		Artist:   resp.Data.Singer,
		CoverURL: resp.Data.Image,
		MediaURL: resp.Data.URL,
	}, nil
}

// Forecast fetches the multi-day forecast for city.
func (c *XXAPIClient) Forecast(ctx context.Context, city string) (Forecast, error) {
	query := url.Values{}
	query.Set("city", city)
	query.Set("key", c.apiKey)
	header := http.Header{}
	header.Set("User-Agent", weatherUserAgent)

	var resp xxEnvelope[xxWeather]
	if err := c.get(ctx, "/api/weather", query, header, &resp); err != nil {
		return Forecast{}, fmt.Errorf("forecast %s: %w", city, err)
	}
	if resp.Code != http.StatusOK || resp.Data == nil {
		return Forecast{}, fmt.Errorf("forecast %s: %w: code=%d msg=%s", city, ErrUpstream, resp.Code, resp.Msg)
	}

	out := Forecast{City: resp.Data.City, Days: make([]Day, 0, len(resp.Data.Data))}
	if out.City == "" {
		out.City = city
	}
	for _, d := range resp.Data.Data {
		out.Days = append(out.Days, Day{
			Date:        d.Date,
			Condition:   d.Weather,
			Temperature: d.Temperature,
			Wind:        d.Wind,
			AirQuality:  d.AirQuality,
		})
	}
	return out, nil
}

func (c *XXAPIClient) get(ctx context.Context, path string, query url.Values, header http.Header, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header = header

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http status %d", ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}
