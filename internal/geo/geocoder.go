// Package geo resolves free-form addresses to coordinates via the Google
// Geocoding API.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Error is a geocoding failure. It is its own type so callers can show an
// address-specific message instead of a generic transport error.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return "geocoding failed: " + e.Msg
}

// Location is a resolved address.
type Location struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address"`
}

// Geocoder calls the Google Geocoding API.
type Geocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeocoder creates a geocoder with the given API key.
func NewGeocoder(apiKey string) *Geocoder {
	return &Geocoder{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type apiResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-form address to coordinates and Google's
// normalized form of the address. All failure modes return *Error: missing
// key (checked before any network call), non-200 HTTP, non-OK API status,
// and an empty result set.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	if g.apiKey == "" {
		return nil, &Error{Msg: "maps api key is not configured"}
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Msg: fmt.Sprintf("geocoding api returned HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if out.Status != "OK" {
		msg := out.ErrorMessage
		if msg == "" {
			msg = out.Status
		}
		return nil, &Error{Msg: msg}
	}
	if len(out.Results) == 0 {
		return nil, &Error{Msg: "no results for address"}
	}

	best := out.Results[0]
	formatted := best.FormattedAddress
	if formatted == "" {
		formatted = address
	}

	return &Location{
		Lat:              best.Geometry.Location.Lat,
		Lon:              best.Geometry.Location.Lng,
		FormattedAddress: formatted,
	}, nil
}

// IsGeocodingError reports whether err is (or wraps) a geocoding *Error.
func IsGeocodingError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
