package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/location"
)

const maxResponseSize = 1 << 20 // 1 MB

// Observation is one answer from the weather service.
type Observation struct {
	Measurement float64 `json:"measurement"`
	Unit        string  `json:"unit"`
	Info        string  `json:"info"`
}

// SunEvent selects sunrise or sunset.
type SunEvent string

const (
	Sunrise SunEvent = "sunrise"
	Sunset  SunEvent = "sunset"
)

// Client queries the weather service.
type Client struct {
	baseURL     string
	groupNumber int
	httpClient  *http.Client
}

// NewClient creates a client from the weather configuration.
func NewClient(cfg config.WeatherConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		groupNumber: cfg.GroupNumber,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

// InstantaneousTemperature returns the temperature at gps for an hour of
// the current day.
func (c *Client) InstantaneousTemperature(ctx context.Context, gps location.GPS, hour int) (Observation, error) {
	if hour < 0 || hour > 23 {
		return Observation{}, fmt.Errorf("%w: got %d", ErrInvalidHour, hour)
	}
	params := c.params(gps)
	params.Set("hour", strconv.Itoa(hour))
	return c.get(ctx, "/InstantaneousTemperature", params)
}

// InstantaneousWindSpeedAndDirection returns the wind at gps for an hour.
func (c *Client) InstantaneousWindSpeedAndDirection(ctx context.Context, gps location.GPS, hour int) (Observation, error) {
	if hour < 0 || hour > 23 {
		return Observation{}, fmt.Errorf("%w: got %d", ErrInvalidHour, hour)
	}
	params := c.params(gps)
	params.Set("hour", strconv.Itoa(hour))
	return c.get(ctx, "/InstantaneousWindSpeedAndDirection", params)
}

// SunriseOrSunset returns the hour of a sun event at gps.
func (c *Client) SunriseOrSunset(ctx context.Context, gps location.GPS, event SunEvent) (Observation, error) {
	if event != Sunrise && event != Sunset {
		return Observation{}, fmt.Errorf("%w: got %q", ErrInvalidOption, event)
	}
	params := c.params(gps)
	params.Set("option", string(event))
	return c.get(ctx, "/SunriseOrSunsetTime", params)
}

func (c *Client) params(gps location.GPS) url.Values {
	params := url.Values{}
	params.Set("groupNumber", strconv.Itoa(c.groupNumber))
	params.Set("latitude", strconv.FormatFloat(gps.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(gps.Longitude, 'f', -1, 64))
	return params
}

// get executes a request and decodes the observation.
func (c *Client) get(ctx context.Context, path string, params url.Values) (Observation, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Observation{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Observation{}, fmt.Errorf("%w: reading response: %w", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Observation{}, fmt.Errorf("%w: %s: HTTP %d", ErrUnavailable, path, resp.StatusCode)
	}

	var obs Observation
	if err := json.Unmarshal(body, &obs); err != nil {
		return Observation{}, fmt.Errorf("%w: decoding %s: %w", ErrUnavailable, path, err)
	}
	return obs, nil
}
