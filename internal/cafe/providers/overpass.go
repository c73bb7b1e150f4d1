package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/cafe-discovery/internal/cafe"
	"github.com/sony/gobreaker"
)

// OverpassProvider implements the cafe.VenueSource interface for the
// Overpass API (OpenStreetMap data).
type OverpassProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOverpassProvider(client *http.Client, baseURL string) *OverpassProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "overpass",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if baseURL == "" {
		baseURL = "https://overpass-api.de/api/interpreter"
	}

	return &OverpassProvider{
		name:    "overpass",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *OverpassProvider) Name() string {
	return p.name
}

// FetchNearby queries cafe nodes, ways, and relations around the center.
// Ways and relations carry their coordinates in the center member.
func (p *OverpassProvider) FetchNearby(ctx context.Context, center cafe.Coordinates, radiusMeters float64) ([]cafe.RawVenue, error) {
	query := fmt.Sprintf(`
		[out:json];
		(
		  node["amenity"="cafe"](around:%.0f,%f,%f);
		  way["amenity"="cafe"](around:%.0f,%f,%f);
		  relation["amenity"="cafe"](around:%.0f,%f,%f);
		);
		out center meta;
	`,
		radiusMeters, center.Lat, center.Lng,
		radiusMeters, center.Lat, center.Lng,
		radiusMeters, center.Lat, center.Lng,
	)

	buildRequest := func() (*http.Request, error) {
		form := url.Values{}
		form.Set("data", query)

		req, err := http.NewRequest(http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Elements []struct {
			ID     int64    `json:"id"`
			Lat    *float64 `json:"lat"`
			Lon    *float64 `json:"lon"`
			Center *struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"center"`
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	venues := make([]cafe.RawVenue, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		raw := cafe.RawVenue{
			ID:   fmt.Sprintf("osm-%d", el.ID),
			Lat:  el.Lat,
			Lon:  el.Lon,
			Tags: el.Tags,
		}
		if el.Center != nil {
			lat, lon := el.Center.Lat, el.Center.Lon
			raw.CenterLat = &lat
			raw.CenterLon = &lon
		}
		venues = append(venues, raw)
	}

	return venues, nil
}
