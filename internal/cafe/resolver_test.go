package cafe

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// fakeGeocoder records lookups and answers from a canned table.
type fakeGeocoder struct {
	calls   []Coordinates
	results map[Coordinates]ResolvedAddress
	errs    map[Coordinates]error
}

func (f *fakeGeocoder) Name() string { return "fake" }

func (f *fakeGeocoder) Reverse(_ context.Context, coord Coordinates) (ResolvedAddress, error) {
	f.calls = append(f.calls, coord)
	if err, ok := f.errs[coord]; ok {
		return ResolvedAddress{}, err
	}
	return f.results[coord], nil
}

func unlimited() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestResolveBatchSkipsAddressedCafes(t *testing.T) {
	geocoder := &fakeGeocoder{
		results: map[Coordinates]ResolvedAddress{
			{Lat: 2, Lng: 2}: {Road: "Found Road", City: "Town"},
		},
	}
	resolver := NewResolver(geocoder, unlimited())

	cafes := []*Cafe{
		{ID: "a", Address: "Already Known 1", Coordinates: Coordinates{Lat: 1, Lng: 1}},
		{ID: "b", Coordinates: Coordinates{Lat: 2, Lng: 2}},
	}

	resolver.ResolveBatch(context.Background(), cafes, 30)

	if len(geocoder.calls) != 1 {
		t.Fatalf("expected 1 lookup, got %d", len(geocoder.calls))
	}
	if cafes[0].Address != "Already Known 1" {
		t.Fatal("existing address must not be touched")
	}
	if cafes[1].Address != "Found Road, Town" {
		t.Fatalf("unexpected resolved address: %q", cafes[1].Address)
	}
}

func TestResolveBatchPrioritizesPartialAddresses(t *testing.T) {
	geocoder := &fakeGeocoder{}
	resolver := NewResolver(geocoder, unlimited())

	cafes := []*Cafe{
		{ID: "plain-1", Coordinates: Coordinates{Lat: 1, Lng: 0}},
		{ID: "partial-1", Coordinates: Coordinates{Lat: 2, Lng: 0}, AddressParts: AddressParts{Street: "Some St"}},
		{ID: "plain-2", Coordinates: Coordinates{Lat: 3, Lng: 0}},
		{ID: "partial-2", Coordinates: Coordinates{Lat: 4, Lng: 0}, AddressParts: AddressParts{City: "Town"}},
	}

	resolver.ResolveBatch(context.Background(), cafes, 30)

	want := []Coordinates{
		{Lat: 2, Lng: 0},
		{Lat: 4, Lng: 0},
		{Lat: 1, Lng: 0},
		{Lat: 3, Lng: 0},
	}
	if len(geocoder.calls) != len(want) {
		t.Fatalf("expected %d lookups, got %d", len(want), len(geocoder.calls))
	}
	for i, coord := range want {
		if geocoder.calls[i] != coord {
			t.Fatalf("lookup %d: expected %+v, got %+v", i, coord, geocoder.calls[i])
		}
	}
}

func TestResolveBatchCapsLookups(t *testing.T) {
	geocoder := &fakeGeocoder{}
	resolver := NewResolver(geocoder, unlimited())

	cafes := make([]*Cafe, 0, 40)
	for i := 0; i < 40; i++ {
		cafes = append(cafes, &Cafe{
			ID:          fmt.Sprintf("c-%d", i),
			Coordinates: Coordinates{Lat: float64(i), Lng: 0},
		})
	}

	resolver.ResolveBatch(context.Background(), cafes, min(len(cafes), MaxResolvePerBatch))

	if len(geocoder.calls) != 30 {
		t.Fatalf("expected at most 30 lookups, got %d", len(geocoder.calls))
	}
}

func TestResolveBatchSurvivesLookupFailures(t *testing.T) {
	bad := Coordinates{Lat: 1, Lng: 1}
	good := Coordinates{Lat: 2, Lng: 2}

	geocoder := &fakeGeocoder{
		errs: map[Coordinates]error{bad: errors.New("boom")},
		results: map[Coordinates]ResolvedAddress{
			good: {DisplayName: "Display Name Fallback"},
		},
	}
	resolver := NewResolver(geocoder, unlimited())

	cafes := []*Cafe{
		{ID: "bad", Coordinates: bad},
		{ID: "good", Coordinates: good},
	}

	resolver.ResolveBatch(context.Background(), cafes, 30)

	if cafes[0].Address != "" {
		t.Fatalf("failed lookup must leave address unset, got %q", cafes[0].Address)
	}
	if cafes[1].Address != "Display Name Fallback" {
		t.Fatalf("expected display name fallback, got %q", cafes[1].Address)
	}
}

func TestResolveBatchHonorsRateGate(t *testing.T) {
	geocoder := &fakeGeocoder{}
	gate := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)
	resolver := NewResolver(geocoder, gate)

	cafes := []*Cafe{
		{ID: "a", Coordinates: Coordinates{Lat: 1, Lng: 0}},
		{ID: "b", Coordinates: Coordinates{Lat: 2, Lng: 0}},
		{ID: "c", Coordinates: Coordinates{Lat: 3, Lng: 0}},
	}

	start := time.Now()
	resolver.ResolveBatch(context.Background(), cafes, 30)
	elapsed := time.Since(start)

	// First call consumes the ready token; the two that follow each wait.
	if elapsed < 100*time.Millisecond {
		t.Fatalf("batch finished too fast for the gate: %v", elapsed)
	}
	if len(geocoder.calls) != 3 {
		t.Fatalf("expected 3 lookups, got %d", len(geocoder.calls))
	}
}

func TestResolveBatchStopsOnCancel(t *testing.T) {
	geocoder := &fakeGeocoder{}
	gate := rate.NewLimiter(rate.Every(time.Hour), 1)
	resolver := NewResolver(geocoder, gate)

	cafes := []*Cafe{
		{ID: "a", Coordinates: Coordinates{Lat: 1, Lng: 0}},
		{ID: "b", Coordinates: Coordinates{Lat: 2, Lng: 0}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	resolver.ResolveBatch(ctx, cafes, 30)

	// The first lookup gets the ready token; the second waits an hour and
	// must be abandoned when the context expires.
	if len(geocoder.calls) != 1 {
		t.Fatalf("expected batch to stop after first lookup, got %d", len(geocoder.calls))
	}
}
