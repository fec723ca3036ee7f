// Package handheld plays the paired phone: it fetches the day's weather
// from OpenWeatherMap and pushes it to the face over the sync channel.
package handheld

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

var (
	ErrNoAPIKey      = errors.New("openweather api key is not configured")
	ErrCircuitOpen   = errors.New("circuit breaker open")
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errEmptyResponse = errors.New("no weather conditions in response")
)

// Conditions is the subset of an OpenWeatherMap reading the face shows.
type Conditions struct {
	High      float64
	Low       float64
	WeatherID int
}

type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	circuit    *gobreaker.CircuitBreaker
}

func NewClient(httpClient *http.Client, apiKey string, baseURL string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
		circuit:    cb,
	}
}

// Current fetches today's conditions for city ("London,GB") in metric units.
func (c *Client) Current(ctx context.Context, city string) (*Conditions, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")
	values.Set("q", city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			return nil, errServerError
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		var payload struct {
			Main struct {
				TempMin float64 `json:"temp_min"`
				TempMax float64 `json:"temp_max"`
			} `json:"main"`
			Weather []struct {
				ID int `json:"id"`
			} `json:"weather"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to decode openweather response: %w", err)
		}
		if len(payload.Weather) == 0 {
			return nil, errEmptyResponse
		}
		return &Conditions{
			High:      payload.Main.TempMax,
			Low:       payload.Main.TempMin,
			WeatherID: payload.Weather[0].ID,
		}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	conditions, ok := result.(*Conditions)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return conditions, nil
}
