package cafe

import (
	"context"
	"log"
	"sort"

	"golang.org/x/time/rate"
)

// MaxResolvePerBatch caps how many addresses one discovery call may look up.
const MaxResolvePerBatch = 30

// Resolver fills in missing cafe addresses through a reverse geocoder.
//
// The geocoder's usage policy allows one call per second, so lookups run
// strictly sequentially behind a token-bucket gate. The gate must be shared
// process-wide: concurrent discovery calls all drain the same bucket.
type Resolver struct {
	geocoder ReverseGeocoder
	gate     *rate.Limiter
}

// NewResolver creates a Resolver around the given geocoder and shared rate
// gate. Pass the same limiter to every resolver talking to the same provider.
func NewResolver(geocoder ReverseGeocoder, gate *rate.Limiter) *Resolver {
	return &Resolver{geocoder: geocoder, gate: gate}
}

// ResolveBatch resolves addresses for cafes that lack one, mutating the
// eligible entries in place. Cafes with partial structured address data are
// resolved first; ties keep input order. At most maxCount lookups are issued.
//
// Per-cafe failures are logged and skipped; a canceled context stops the
// batch between calls, leaving already-enriched entries intact.
func (r *Resolver) ResolveBatch(ctx context.Context, cafes []*Cafe, maxCount int) {
	if r.geocoder == nil || maxCount <= 0 {
		return
	}

	eligible := make([]*Cafe, 0, len(cafes))
	for _, c := range cafes {
		if c.Address == "" {
			eligible = append(eligible, c)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].HasPartialAddress() && !eligible[j].HasPartialAddress()
	})

	if len(eligible) > maxCount {
		eligible = eligible[:maxCount]
	}

	for _, c := range eligible {
		if err := r.gate.Wait(ctx); err != nil {
			log.Printf("resolver: batch stopped: %v", err)
			return
		}

		addr, err := r.geocoder.Reverse(ctx, c.Coordinates)
		if err != nil {
			log.Printf("resolver: lookup failed for %s: %v", c.ID, err)
			continue
		}

		if formatted := addr.Format(); formatted != "" {
			c.Address = formatted
		}
	}
}
