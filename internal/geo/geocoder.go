package geo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Geocoder resolves free-form addresses to coordinates via a
// Nominatim-compatible search endpoint. Discovery uses it when a location
// filter arrives with an address but no coordinates.
type Geocoder struct {
	client  *resty.Client
	enabled bool
}

// GeocoderConfig holds configuration for the geocoding client.
type GeocoderConfig struct {
	Enabled   bool
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Point is a resolved coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// NewGeocoder creates a new geocoding client.
func NewGeocoder(cfg *GeocoderConfig) *Geocoder {
	if cfg == nil || !cfg.Enabled {
		return &Geocoder{enabled: false}
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("User-Agent", cfg.UserAgent)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Geocoder{client: client, enabled: true}
}

// IsEnabled reports whether geocoding is configured.
func (g *Geocoder) IsEnabled() bool {
	return g.enabled
}

// nominatimResult is one entry of a Nominatim search response.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve geocodes an address to a coordinate pair, taking the first match.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - address: free-form address or place name.
//
// Returns:
//   - *Point: resolved coordinates.
//   - error: non-nil if geocoding is disabled, the request fails, or no
//     match is found.
func (g *Geocoder) Resolve(ctx context.Context, address string) (*Point, error) {
	if !g.enabled {
		return nil, fmt.Errorf("geocoder is disabled")
	}
	if address == "" {
		return nil, fmt.Errorf("address is empty")
	}

	var results []nominatimResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      address,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocoding request failed with status %d", resp.StatusCode())
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocoding match for %q", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in geocoding response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in geocoding response: %w", err)
	}

	return &Point{Latitude: lat, Longitude: lon}, nil
}
