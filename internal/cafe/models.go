package cafe

import (
	"errors"
	"fmt"
	"time"
)

// ErrVenueSource indicates the upstream venue provider could not be reached;
// it is fatal to the discovery call that triggered it.
var ErrVenueSource = errors.New("venue source unavailable")

// PlaceholderName is used when a raw record carries no name.
const PlaceholderName = "Unnamed Cafe"

// OpenStatus is the tri-state open/closed evaluation of a cafe's hours.
type OpenStatus string

const (
	OpenStatusUnknown OpenStatus = "unknown"
	OpenStatusOpen    OpenStatus = "open"
	OpenStatusClosed  OpenStatus = "closed"
)

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AddressParts is the partial structured address carried by a raw record.
// It is the display fallback whenever the full address string is missing.
type AddressParts struct {
	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

// Empty reports whether no component is present.
func (p AddressParts) Empty() bool {
	return p.Street == "" && p.City == "" && p.Postcode == ""
}

// Cafe is a discoverable point of interest. It is built once per raw record
// per query; only Address may be filled in later by the resolver before the
// pipeline's filter/sort stage.
type Cafe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Coordinates  Coordinates  `json:"coordinates"`
	Address      string       `json:"address,omitempty"`
	AddressParts AddressParts `json:"addressParts"`
	Rating       *float64     `json:"rating,omitempty"`
	OpenNow      OpenStatus   `json:"openNow"`
	Tags         []string     `json:"tags,omitempty"`

	// DistanceMeters is set only when the query carried a reference
	// location; it is recomputed per query, never persisted.
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
}

// HasPartialAddress reports whether the record carries street or city
// fragments, which gives it priority during batch address resolution.
func (c *Cafe) HasPartialAddress() bool {
	return c.AddressParts.Street != "" || c.AddressParts.City != ""
}

// DisplayAddress returns the best human-readable address available:
// the authoritative address, else joined partial components, else a
// fixed unavailable marker.
func (c *Cafe) DisplayAddress() string {
	if c.Address != "" {
		return c.Address
	}
	if !c.AddressParts.Empty() {
		parts := make([]string, 0, 3)
		for _, p := range []string{c.AddressParts.Street, c.AddressParts.City, c.AddressParts.Postcode} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return joinParts(parts)
	}
	return "Address unavailable"
}

// RawVenue is an untyped provider record before normalization.
// Coordinates may come from lat/lon directly or from a geometric center.
type RawVenue struct {
	ID        string
	Lat       *float64
	Lon       *float64
	CenterLat *float64
	CenterLon *float64
	Tags      map[string]string
}

// Query describes one discovery invocation. It is supplied fresh per call
// and never persisted.
type Query struct {
	// Reference is the user's location; when nil, radius filtering and
	// distance sorting are skipped.
	Reference    *Coordinates
	RadiusMeters float64
	Search       string

	// At is the instant open/closed status is evaluated against.
	At time.Time
}

// LocationError classifies why a reference location could not be obtained
// from the geolocation provider. The pipeline itself only ever sees an
// absent reference; these reasons are surfaced to API clients as-is.
type LocationError string

const (
	LocationPermissionDenied LocationError = "permission denied"
	LocationUnavailable      LocationError = "unavailable"
	LocationTimeout          LocationError = "timeout"
	LocationUnknown          LocationError = "unknown"
)

func (e LocationError) Error() string {
	return fmt.Sprintf("geolocation failed: %s", string(e))
}
