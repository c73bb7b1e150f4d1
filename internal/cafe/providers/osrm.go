package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/i474232898/cafe-discovery/internal/cafe"
	"github.com/i474232898/cafe-discovery/internal/route"
	"github.com/sony/gobreaker"
)

var errNoRoute = errors.New("no route found")

// OSRMRouter implements the route.Router interface against a public OSRM
// server. The public server only exposes the driving profile, so the
// requested mode never changes the query; it only changes the recomputed
// travel time.
type OSRMRouter struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOSRMRouter(client *http.Client, baseURL string) *OSRMRouter {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "osrm",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if baseURL == "" {
		baseURL = "https://router.project-osrm.org/route/v1"
	}

	return &OSRMRouter{
		name:    "osrm",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (r *OSRMRouter) Name() string {
	return r.name
}

func (r *OSRMRouter) Route(ctx context.Context, origin, destination cafe.Coordinates, mode route.Mode) (route.Plan, error) {
	buildRequest := func() (*http.Request, error) {
		// OSRM wants lon,lat pairs.
		u := fmt.Sprintf("%s/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
			r.baseURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat)
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, r.httpCfg, r.circuit, buildRequest)
	if err != nil {
		return route.Plan{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return route.Plan{}, err
	}

	if payload.Code != "Ok" || len(payload.Routes) == 0 {
		return route.Plan{}, errNoRoute
	}

	best := payload.Routes[0]

	geometry := make([]cafe.Coordinates, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		geometry = append(geometry, cafe.Coordinates{Lat: pair[1], Lng: pair[0]})
	}

	duration := route.TravelTime(best.Distance, mode)

	return route.Plan{
		Origin:         origin,
		Destination:    destination,
		Mode:           mode,
		DistanceMeters: best.Distance,
		Duration:       duration,
		DurationText:   route.FormatDuration(duration),
		Geometry:       geometry,
	}, nil
}
