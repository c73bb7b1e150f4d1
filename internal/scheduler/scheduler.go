package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/cafe-discovery/internal/cafe"
)

// Scheduler periodically re-runs discovery for watched locations so their
// snapshots stay warm in the cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *cafe.Service
	locations []cafe.Coordinates
	radius    float64
	interval  time.Duration
}

// New creates a new Scheduler.
func New(locations []cafe.Coordinates, radius float64, interval time.Duration, service *cafe.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		locations: locations,
		radius:    radius,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// Refreshes run sequentially: every discovery shares the geocoder rate gate,
// so fanning out would only make them queue on it.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no watch locations configured; nothing to schedule")
		return nil
	}

	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = 300
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(func() {
		log.Println("scheduler: running cafe refresh job")

		for _, loc := range s.locations {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

			q := cafe.Query{
				Reference:    &loc,
				RadiusMeters: s.radius,
				At:           time.Now(),
			}
			if _, err := s.service.DiscoverNearby(ctx, loc, q); err != nil {
				log.Printf("scheduler: refresh failed for %.4f:%.4f: %v", loc.Lat, loc.Lng, err)
			}

			cancel()
		}

		log.Println("scheduler: completed cafe refresh job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
