package cafe

import (
	"strings"
	"time"

	"github.com/i474232898/cafe-discovery/internal/hours"
)

// tagRule maps raw amenity flags to one display tag. Rules are evaluated in
// order, so tag priority is fixed by the table itself.
type tagRule struct {
	label string
	any   []flagMatch
}

type flagMatch struct {
	key   string
	value string
}

var tagRules = []tagRule{
	{label: "WiFi", any: []flagMatch{{"wifi", "yes"}, {"internet_access", "wlan"}}},
	{label: "Takeaway", any: []flagMatch{{"takeaway", "yes"}}},
	{label: "Outdoor Seating", any: []flagMatch{{"outdoor_seating", "yes"}}},
	{label: "Wheelchair Accessible", any: []flagMatch{{"wheelchair", "yes"}}},
	{label: "Smoking Allowed", any: []flagMatch{{"smoking", "yes"}}},
}

// Normalize maps a raw provider record into a Cafe. It returns nil when the
// record has no resolvable coordinates. Open status is evaluated against the
// given instant.
func Normalize(raw RawVenue, at time.Time) *Cafe {
	coords, ok := resolveCoordinates(raw)
	if !ok {
		return nil
	}

	name := raw.Tags["name"]
	if name == "" {
		name = PlaceholderName
	}

	c := &Cafe{
		ID:          raw.ID,
		Name:        name,
		Coordinates: coords,
		Address:     buildAddress(raw.Tags),
		AddressParts: AddressParts{
			Street:   raw.Tags["addr:street"],
			City:     raw.Tags["addr:city"],
			Postcode: raw.Tags["addr:postcode"],
		},
		OpenNow: evaluateOpenStatus(raw.Tags["opening_hours"], at),
		Tags:    deriveTags(raw.Tags),
	}

	return c
}

func resolveCoordinates(raw RawVenue) (Coordinates, bool) {
	lat, lon := raw.Lat, raw.Lon
	if lat == nil || lon == nil {
		lat, lon = raw.CenterLat, raw.CenterLon
	}
	if lat == nil || lon == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *lat, Lng: *lon}, true
}

// buildAddress prefers the full addr:full tag; otherwise it assembles what
// the record carries. Returns "" when nothing is available, leaving the
// resolver to fill the address in later.
func buildAddress(tags map[string]string) string {
	if full := tags["addr:full"]; full != "" {
		return full
	}

	parts := make([]string, 0, 3)
	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func deriveTags(tags map[string]string) []string {
	var derived []string
	for _, rule := range tagRules {
		for _, m := range rule.any {
			if tags[m.key] == m.value {
				derived = append(derived, rule.label)
				break
			}
		}
	}
	return derived
}

func evaluateOpenStatus(expr string, at time.Time) OpenStatus {
	if expr == "" {
		return OpenStatusUnknown
	}

	sched, err := hours.Parse(expr)
	if err != nil {
		return OpenStatusUnknown
	}

	if sched.IsOpen(at) {
		return OpenStatusOpen
	}
	return OpenStatusClosed
}
