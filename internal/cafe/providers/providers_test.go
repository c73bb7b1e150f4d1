package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/cafe-discovery/internal/cafe"
	"github.com/i474232898/cafe-discovery/internal/route"
)

func testClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

func TestOverpassFetchNearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("data") == "" {
			t.Fatal("expected an overpass query in the data form field")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"elements": [
				{"id": 101, "lat": 52.52, "lon": 13.405, "tags": {"name": "Node Cafe"}},
				{"id": 102, "center": {"lat": 52.53, "lon": 13.41}, "tags": {"name": "Way Cafe"}},
				{"id": 103}
			]
		}`))
	}))
	defer srv.Close()

	p := NewOverpassProvider(testClient(), srv.URL)

	venues, err := p.FetchNearby(context.Background(), cafe.Coordinates{Lat: 52.52, Lng: 13.4}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(venues) != 3 {
		t.Fatalf("expected 3 raw venues, got %d", len(venues))
	}
	if venues[0].ID != "osm-101" || venues[0].Lat == nil || *venues[0].Lat != 52.52 {
		t.Fatalf("unexpected node venue: %+v", venues[0])
	}
	if venues[1].CenterLat == nil || *venues[1].CenterLat != 52.53 {
		t.Fatalf("expected center coordinates on way venue: %+v", venues[1])
	}
	if venues[2].Lat != nil || venues[2].CenterLat != nil {
		t.Fatal("tagless element should carry no coordinates")
	}
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Fatalf("expected identifying user agent, got %q", ua)
		}
		if r.URL.Query().Get("addressdetails") != "1" {
			t.Fatal("expected addressdetails=1")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"display_name": "Some Cafe, Berlin, Germany",
			"address": {
				"house_number": "12",
				"road": "Hauptstrasse",
				"suburb": "Mitte",
				"town": "Berlin",
				"postcode": "10115",
				"state": "Berlin"
			}
		}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testClient(), srv.URL, "test-agent")

	addr, err := g.Reverse(context.Background(), cafe.Coordinates{Lat: 52.52, Lng: 13.405})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "12, Hauptstrasse, Mitte, Berlin, 10115, Berlin"
	if got := addr.Format(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if addr.City != "Berlin" {
		t.Fatalf("town should map to city, got %q", addr.City)
	}
}

func TestNominatimNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testClient(), srv.URL, "test-agent")

	addr, err := g.Reverse(context.Background(), cafe.Coordinates{Lat: 0, Lng: 0})
	if err != nil {
		t.Fatalf("a lookup miss is not an error: %v", err)
	}
	if addr.Format() != "" {
		t.Fatalf("expected empty formatted address, got %q", addr.Format())
	}
}

func TestOSRMRouteRecomputesDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 5000,
				"geometry": {"coordinates": [[13.405, 52.52], [13.41, 52.53]]}
			}]
		}`))
	}))
	defer srv.Close()

	r := NewOSRMRouter(testClient(), srv.URL)

	plan, err := r.Route(context.Background(),
		cafe.Coordinates{Lat: 52.52, Lng: 13.405},
		cafe.Coordinates{Lat: 52.53, Lng: 13.41},
		route.ModeWalk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.DistanceMeters != 5000 {
		t.Fatalf("unexpected distance: %f", plan.DistanceMeters)
	}

	// 5 km at walking speed is an hour, regardless of what the provider
	// would have reported for its driving profile.
	if plan.Duration != time.Hour {
		t.Fatalf("expected 1h walking duration, got %v", plan.Duration)
	}
	if plan.DurationText != "1 h 0 min" {
		t.Fatalf("unexpected duration text: %q", plan.DurationText)
	}

	if len(plan.Geometry) != 2 || plan.Geometry[0].Lat != 52.52 {
		t.Fatalf("unexpected geometry: %+v", plan.Geometry)
	}
}

func TestOSRMNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	}))
	defer srv.Close()

	r := NewOSRMRouter(testClient(), srv.URL)

	if _, err := r.Route(context.Background(), cafe.Coordinates{}, cafe.Coordinates{}, route.ModeCar); err == nil {
		t.Fatal("expected an error when no route exists")
	}
}
