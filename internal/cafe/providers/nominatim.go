package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/cafe-discovery/internal/cafe"
	"github.com/sony/gobreaker"
)

// NominatimGeocoder implements the cafe.ReverseGeocoder interface for the
// Nominatim reverse geocoding API.
//
// Nominatim's usage policy caps clients at one request per second and
// requires an identifying User-Agent; the rate gate is enforced by the
// resolver, the User-Agent here.
type NominatimGeocoder struct {
	name      string
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org/reverse"
	}
	if userAgent == "" {
		userAgent = "CafeFinder/1.0"
	}

	return &NominatimGeocoder{
		name:      "nominatim",
		baseURL:   baseURL,
		userAgent: userAgent,
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

func (g *NominatimGeocoder) Name() string {
	return g.name
}

// Reverse resolves a coordinate into address components. A lookup that
// succeeds but finds nothing yields a zero ResolvedAddress, not an error.
func (g *NominatimGeocoder) Reverse(ctx context.Context, coord cafe.Coordinates) (cafe.ResolvedAddress, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "json")
		values.Set("lat", fmt.Sprintf("%f", coord.Lat))
		values.Set("lon", fmt.Sprintf("%f", coord.Lng))
		values.Set("zoom", "18")
		values.Set("addressdetails", "1")

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return cafe.ResolvedAddress{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			HouseNumber   string `json:"house_number"`
			Road          string `json:"road"`
			Street        string `json:"street"`
			Neighbourhood string `json:"neighbourhood"`
			Suburb        string `json:"suburb"`
			City          string `json:"city"`
			Town          string `json:"town"`
			Village       string `json:"village"`
			Postcode      string `json:"postcode"`
			State         string `json:"state"`
		} `json:"address"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return cafe.ResolvedAddress{}, err
	}

	road := payload.Address.Road
	if road == "" {
		road = payload.Address.Street
	}

	city := payload.Address.City
	if city == "" {
		city = payload.Address.Town
	}
	if city == "" {
		city = payload.Address.Village
	}

	return cafe.ResolvedAddress{
		HouseNumber:   payload.Address.HouseNumber,
		Road:          road,
		Neighbourhood: payload.Address.Neighbourhood,
		Suburb:        payload.Address.Suburb,
		City:          city,
		Postcode:      payload.Address.Postcode,
		State:         payload.Address.State,
		DisplayName:   payload.DisplayName,
	}, nil
}
