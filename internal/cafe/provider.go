package cafe

import (
	"context"
	"strings"
)

// VenueSource abstracts the upstream provider of raw venue records
// (e.g. the Overpass API).
type VenueSource interface {
	Name() string
	FetchNearby(ctx context.Context, center Coordinates, radiusMeters float64) ([]RawVenue, error)
}

// ReverseGeocoder turns a coordinate into address data
// (e.g. the Nominatim API).
type ReverseGeocoder interface {
	Name() string
	Reverse(ctx context.Context, coord Coordinates) (ResolvedAddress, error)
}

// ResolvedAddress is the structured result of a reverse geocoding lookup.
// All fields are optional; DisplayName is the provider's free-text fallback.
type ResolvedAddress struct {
	HouseNumber   string
	Road          string
	Neighbourhood string
	Suburb        string
	City          string
	Postcode      string
	State         string
	DisplayName   string
}

// Format concatenates the present components in display order, falling back
// to the free-text display name. Returns "" when nothing is usable.
func (a ResolvedAddress) Format() string {
	components := []string{
		a.HouseNumber,
		a.Road,
		a.Neighbourhood,
		a.Suburb,
		a.City,
		a.Postcode,
		a.State,
	}

	parts := make([]string, 0, len(components))
	for _, c := range components {
		if c != "" {
			parts = append(parts, c)
		}
	}

	if len(parts) > 0 {
		return joinParts(parts)
	}
	return a.DisplayName
}

func joinParts(parts []string) string {
	return strings.Join(parts, ", ")
}
