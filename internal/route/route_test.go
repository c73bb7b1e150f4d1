package route

import (
	"strings"
	"testing"
	"time"

	"github.com/i474232898/cafe-discovery/internal/cafe"
)

func TestTravelTimeBySpeed(t *testing.T) {
	cases := []struct {
		meters float64
		mode   Mode
		want   time.Duration
	}{
		{1000, ModeWalk, 12 * time.Minute},  // 5 km/h
		{15000, ModeBike, 1 * time.Hour},    // 15 km/h
		{50000, ModeCar, 1 * time.Hour},     // 50 km/h
		{2500, ModeWalk, 30 * time.Minute},  // half an hour at walking speed
		{0, ModeCar, 0},
	}

	for _, c := range cases {
		got := TravelTime(c.meters, c.mode)
		if diff := got - c.want; diff < -time.Second || diff > time.Second {
			t.Fatalf("TravelTime(%f, %s): expected %v, got %v", c.meters, c.mode, c.want, got)
		}
	}
}

func TestTravelTimeUnknownModeDefaultsToCar(t *testing.T) {
	if TravelTime(50000, Mode("hovercraft")) != TravelTime(50000, ModeCar) {
		t.Fatal("unknown mode should fall back to driving speed")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30 s"},
		{4 * time.Minute, "4 min"},
		{4*time.Minute + 30*time.Second, "4 min 30 s"},
		{65 * time.Minute, "1 h 5 min"},
		{2 * time.Hour, "2 h 0 min"},
	}

	for _, c := range cases {
		if got := FormatDuration(c.d); got != c.want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", c.d, c.want, got)
		}
	}
}

func TestBuildNavigationLinks(t *testing.T) {
	links := BuildNavigationLinks(cafe.Coordinates{Lat: 52.52, Lng: 13.405})

	if !strings.Contains(links.OSM, "openstreetmap.org") {
		t.Fatalf("unexpected OSM link: %s", links.OSM)
	}
	if !strings.Contains(links.Google, "destination=52.52") {
		t.Fatalf("google link missing destination: %s", links.Google)
	}
	if !strings.HasPrefix(links.Apple, "https://maps.apple.com/") {
		t.Fatalf("unexpected apple link: %s", links.Apple)
	}
}
