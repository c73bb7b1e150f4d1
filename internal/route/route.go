// Package route models travel between the user and a cafe. Travel time is
// always recomputed from distance with a fixed speed per mode: the public
// routing provider only serves a driving profile, so its reported duration
// is wrong for anything but a car.
package route

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/cafe-discovery/internal/cafe"
)

// Mode is a transportation mode.
type Mode string

const (
	ModeWalk Mode = "walk"
	ModeBike Mode = "bike"
	ModeCar  Mode = "car"
)

// SpeedKmh returns the assumed average speed for the mode.
func (m Mode) SpeedKmh() float64 {
	switch m {
	case ModeWalk:
		return 5
	case ModeBike:
		return 15
	default:
		return 50
	}
}

// TravelTime estimates how long the distance takes at the mode's speed.
func TravelTime(distanceMeters float64, mode Mode) time.Duration {
	hoursNeeded := (distanceMeters / 1000) / mode.SpeedKmh()
	return time.Duration(hoursNeeded * float64(time.Hour))
}

// Plan is a computed route between two points.
type Plan struct {
	Origin         cafe.Coordinates   `json:"origin"`
	Destination    cafe.Coordinates   `json:"destination"`
	Mode           Mode               `json:"mode"`
	DistanceMeters float64            `json:"distanceMeters"`
	Duration       time.Duration      `json:"-"`
	DurationText   string             `json:"duration"`
	Geometry       []cafe.Coordinates `json:"geometry,omitempty"`
}

// Router abstracts the external routing provider.
type Router interface {
	Name() string
	Route(ctx context.Context, origin, destination cafe.Coordinates, mode Mode) (Plan, error)
}

// FormatDuration renders a duration for display, e.g. "1 h 5 min",
// "4 min 30 s", "30 s".
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hoursPart := total / 3600
	minutesPart := (total % 3600) / 60
	secondsPart := total % 60

	switch {
	case hoursPart > 0:
		return fmt.Sprintf("%d h %d min", hoursPart, minutesPart)
	case minutesPart > 0:
		if secondsPart > 0 {
			return fmt.Sprintf("%d min %d s", minutesPart, secondsPart)
		}
		return fmt.Sprintf("%d min", minutesPart)
	default:
		return fmt.Sprintf("%d s", secondsPart)
	}
}

// NavigationLinks holds deep links into common map applications for a
// destination point.
type NavigationLinks struct {
	OSM    string `json:"osm"`
	Google string `json:"google"`
	Apple  string `json:"apple"`
}

// BuildNavigationLinks returns navigation deep links to the destination.
func BuildNavigationLinks(dest cafe.Coordinates) NavigationLinks {
	return NavigationLinks{
		OSM:    fmt.Sprintf("https://www.openstreetmap.org/directions?to=%f,%f", dest.Lat, dest.Lng),
		Google: fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%f,%f", dest.Lat, dest.Lng),
		Apple:  fmt.Sprintf("https://maps.apple.com/?daddr=%f,%f", dest.Lat, dest.Lng),
	}
}
