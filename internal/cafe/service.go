package cafe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/i474232898/cafe-discovery/internal/geo"
)

// DiscoverySnapshot is one cached discovery result for a search area,
// captured before any query-specific filtering or sorting.
type DiscoverySnapshot struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Cafes     []Cafe    `json:"cafes"`
}

// SnapshotStore is the contract the in-memory snapshot cache must satisfy.
type SnapshotStore interface {
	SaveSnapshot(key string, snap DiscoverySnapshot)
	GetLatest(key string) (DiscoverySnapshot, error)
}

// Service orchestrates the discovery pipeline: venue fetch, normalization,
// address enrichment, distance annotation, filtering, and ranking.
type Service struct {
	source   VenueSource
	resolver *Resolver
	cache    SnapshotStore
	maxAge   time.Duration
}

// NewService creates a Service. cache may be nil to disable snapshot reuse;
// maxAge bounds how stale a reused snapshot may be.
func NewService(source VenueSource, resolver *Resolver, cache SnapshotStore, maxAge time.Duration) *Service {
	return &Service{
		source:   source,
		resolver: resolver,
		cache:    cache,
		maxAge:   maxAge,
	}
}

// DiscoverNearby fetches raw venues around center and runs the discovery
// pipeline over them. A venue-source failure is fatal and reported as
// ErrVenueSource; a fresh enough cached snapshot short-circuits the fetch
// and enrichment stages entirely.
func (s *Service) DiscoverNearby(ctx context.Context, center Coordinates, q Query) ([]Cafe, error) {
	key := snapshotKey(center, q.RadiusMeters)

	if s.cache != nil && s.maxAge > 0 {
		if snap, err := s.cache.GetLatest(key); err == nil && time.Since(snap.FetchedAt) <= s.maxAge {
			return rank(snap.Cafes, q), nil
		}
	}

	raw, err := s.source.FetchNearby(ctx, center, q.RadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVenueSource, err)
	}

	base := s.assemble(ctx, raw, q.At)

	if s.cache != nil {
		s.cache.SaveSnapshot(key, DiscoverySnapshot{
			FetchedAt: time.Now().UTC(),
			Cafes:     base,
		})
	}

	return rank(base, q), nil
}

// Discover runs the pipeline over already-fetched raw records. Normalization
// and enrichment complete before filtering begins; a canceled context stops
// address enrichment between lookups and the partially enriched venues are
// still ranked and returned.
func (s *Service) Discover(ctx context.Context, raw []RawVenue, q Query) []Cafe {
	return rank(s.assemble(ctx, raw, q.At), q)
}

// assemble normalizes raw records (dropping unusable ones) and enriches the
// survivors with resolved addresses.
func (s *Service) assemble(ctx context.Context, raw []RawVenue, at time.Time) []Cafe {
	venues := make([]*Cafe, 0, len(raw))
	for _, r := range raw {
		if c := Normalize(r, at); c != nil {
			venues = append(venues, c)
		}
	}

	if s.resolver != nil {
		s.resolver.ResolveBatch(ctx, venues, min(len(venues), MaxResolvePerBatch))
	}

	base := make([]Cafe, len(venues))
	for i, c := range venues {
		base[i] = *c
	}
	return base
}

// rank applies the query-dependent pipeline stages: distance annotation,
// radius filter, free-text filter, and stable distance sort. Without a
// reference location the distance-dependent stages are skipped and input
// order is preserved.
func rank(base []Cafe, q Query) []Cafe {
	result := make([]Cafe, 0, len(base))

	for _, c := range base {
		c.DistanceMeters = nil
		if q.Reference != nil {
			d := geo.Distance(q.Reference.Lat, q.Reference.Lng, c.Coordinates.Lat, c.Coordinates.Lng)
			c.DistanceMeters = &d
			if d > q.RadiusMeters {
				continue
			}
		}
		result = append(result, c)
	}

	if needle := strings.ToLower(strings.TrimSpace(q.Search)); needle != "" {
		filtered := result[:0]
		for _, c := range result {
			if strings.Contains(strings.ToLower(c.Name), needle) ||
				(c.Address != "" && strings.Contains(strings.ToLower(c.Address), needle)) {
				filtered = append(filtered, c)
			}
		}
		result = filtered
	}

	if q.Reference != nil {
		sort.SliceStable(result, func(i, j int) bool {
			return *result[i].DistanceMeters < *result[j].DistanceMeters
		})
	}

	return result
}

// snapshotKey buckets nearby searches onto a shared cache entry. Four
// decimal places is roughly 11 m of latitude, well under any usable radius.
func snapshotKey(center Coordinates, radiusMeters float64) string {
	return fmt.Sprintf("%.4f:%.4f:%.0f", center.Lat, center.Lng, radiusMeters)
}
