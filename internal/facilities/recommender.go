// Package facilities recommends nearby care facilities for a triage decision
// via the Google Places Nearby Search API.
package facilities

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/careroute/internal/triage"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// Defaults for the nearby search.
const (
	DefaultRadiusMeters = 5000
	DefaultMaxResults   = 3
)

// Facility is a candidate care location.
type Facility struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
}

// Recommendation is a facility plus distance from the user and a maps deep
// link, one per result shown to the user.
type Recommendation struct {
	Facility   Facility `json:"facility"`
	DistanceKm float64  `json:"distance_km"`
	MapsURL    string   `json:"maps_url"`
}

// Recommender calls the Places API. Upstream failures degrade to an empty
// result list rather than an error: a triage decision is never blocked on
// facility lookup.
type Recommender struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// NewRecommender creates a recommender with the given API key.
func NewRecommender(apiKey string, logger log.Logger) *Recommender {
	if logger == nil {
		logger = log.Nop()
	}
	return &Recommender{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// urgencyQuery maps an urgency level to Places search parameters. Unknown
// levels fall back to pharmacies, same as HOME.
func urgencyQuery(u triage.Urgency) (placeType, keyword string) {
	switch u {
	case triage.UrgencyER:
		return "hospital", "emergency room"
	case triage.UrgencyUrgent:
		return "hospital", "urgent care"
	case triage.UrgencyClinic:
		return "doctor", "clinic"
	default:
		return "pharmacy", "pharmacy"
	}
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		// Some Places responses carry formatted_address instead of vicinity.
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Recommend returns up to maxResults facilities within radiusM meters of the
// user, matched to the decision's urgency and sorted ascending by distance.
// Any upstream failure (transport, non-200, non-OK status) returns an empty
// list.
func (r *Recommender) Recommend(ctx context.Context, decision *triage.Decision, lat, lon float64, radiusM, maxResults int) []Recommendation {
	if r.apiKey == "" {
		r.logger.Warn(ctx, "facility lookup skipped, maps api key not configured")
		return []Recommendation{}
	}
	if radiusM <= 0 {
		radiusM = DefaultRadiusMeters
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	placeType, keyword := urgencyQuery(decision.Urgency)

	q := url.Values{}
	q.Set("key", r.apiKey)
	q.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	q.Set("radius", strconv.Itoa(radiusM))
	q.Set("type", placeType)
	if keyword != "" {
		q.Set("keyword", keyword)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		r.logger.Error(ctx, err, "facility lookup request build failed")
		return []Recommendation{}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error(ctx, err, "facility lookup request failed")
		return []Recommendation{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn(ctx, "facility lookup returned non-200", "status_code", resp.StatusCode)
		return []Recommendation{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.Error(ctx, err, "facility lookup read failed")
		return []Recommendation{}
	}

	var out placesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		r.logger.Error(ctx, err, "facility lookup unmarshal failed")
		return []Recommendation{}
	}
	if out.Status != "OK" {
		r.logger.Warn(ctx, "facility lookup returned non-OK status", "api_status", out.Status)
		return []Recommendation{}
	}

	results := out.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	recs := make([]Recommendation, 0, len(results))
	for _, place := range results {
		name := place.Name
		if name == "" {
			name = "Unknown place"
		}
		address := place.Vicinity
		if address == "" {
			address = place.FormattedAddress
		}
		plat := place.Geometry.Location.Lat
		plon := place.Geometry.Location.Lng

		recs = append(recs, Recommendation{
			Facility: Facility{
				Name:    name,
				Type:    string(decision.Urgency),
				Lat:     plat,
				Lon:     plon,
				Address: address,
				// Nearby Search does not include phone numbers.
				Phone: "",
			},
			DistanceKm: haversineKm(lat, lon, plat, plon),
			MapsURL:    fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", plat, plon),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].DistanceKm < recs[j].DistanceKm
	})
	return recs
}

// haversineKm computes the great-circle distance between two coordinates in
// kilometers.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
