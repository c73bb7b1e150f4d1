package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cafe-discovery/internal/cafe"
	"github.com/i474232898/cafe-discovery/internal/route"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *cafe.Service, router route.Router, defaultRadius float64) {
	v1 := app.Group("/api/v1")

	v1.Get("/cafes/nearby", func(c *fiber.Ctx) error {
		var req nearbyQuery
		if err := req.bind(c, defaultRadius); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		center := cafe.Coordinates{Lat: req.Lat, Lng: req.Lon}

		q := cafe.Query{
			RadiusMeters: req.Radius,
			Search:       req.Search,
			At:           req.At,
		}
		// A client that panned the map manually searches an area without
		// ranking it against its own position.
		if req.Reference {
			q.Reference = &center
		}

		cafes, err := service.DiscoverNearby(c.Context(), center, q)
		if err != nil {
			if errors.Is(err, cafe.ErrVenueSource) {
				return fiber.NewError(fiber.StatusBadGateway, "venue source unavailable")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to discover cafes")
		}

		return c.JSON(fiber.Map{
			"count": len(cafes),
			"cafes": cafes,
		})
	})

	v1.Get("/cafes/route", func(c *fiber.Ctx) error {
		var req routeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if router == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "routing is not configured")
		}

		origin := cafe.Coordinates{Lat: req.FromLat, Lng: req.FromLon}
		dest := cafe.Coordinates{Lat: req.ToLat, Lng: req.ToLon}

		plan, err := router.Route(c.Context(), origin, dest, route.Mode(req.Mode))
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "routing provider unavailable")
		}

		return c.JSON(fiber.Map{
			"route":      plan,
			"navigation": route.BuildNavigationLinks(dest),
		})
	})
}

// nearbyQuery holds query parameters for the discovery endpoint.
type nearbyQuery struct {
	Lat    float64 `validate:"gte=-90,lte=90"`
	Lon    float64 `validate:"gte=-180,lte=180"`
	Radius float64 `validate:"gt=0"`
	Search string
	// Reference marks lat/lon as the user's own position, enabling
	// distance annotation, radius filtering, and distance sort.
	Reference bool
	At        time.Time `validate:"required"`
}

func (q *nearbyQuery) bind(c *fiber.Ctx, defaultRadius float64) error {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return errors.New("invalid lon")
	}
	q.Lat = lat
	q.Lon = lon

	q.Radius = defaultRadius
	if radiusStr := c.Query("radius"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			return errors.New("invalid radius")
		}
		q.Radius = radius
	}

	q.Search = c.Query("q")

	q.Reference = true
	if refStr := c.Query("reference"); refStr != "" {
		ref, err := strconv.ParseBool(refStr)
		if err != nil {
			return errors.New("invalid reference flag")
		}
		q.Reference = ref
	}

	q.At = time.Now()
	if atStr := c.Query("at"); atStr != "" {
		at, err := parseTime(atStr)
		if err != nil {
			return err
		}
		q.At = at
	}

	return nil
}

// routeQuery holds query parameters for the route endpoint.
type routeQuery struct {
	FromLat float64 `validate:"gte=-90,lte=90"`
	FromLon float64 `validate:"gte=-180,lte=180"`
	ToLat   float64 `validate:"gte=-90,lte=90"`
	ToLon   float64 `validate:"gte=-180,lte=180"`
	Mode    string  `validate:"required,oneof=walk bike car"`
}

func (q *routeQuery) bind(c *fiber.Ctx) error {
	parse := func(name string) (float64, error) {
		s := c.Query(name)
		if s == "" {
			return 0, errors.New(name + " query parameter is required")
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.New("invalid " + name)
		}
		return v, nil
	}

	var err error
	if q.FromLat, err = parse("fromLat"); err != nil {
		return err
	}
	if q.FromLon, err = parse("fromLon"); err != nil {
		return err
	}
	if q.ToLat, err = parse("toLat"); err != nil {
		return err
	}
	if q.ToLon, err = parse("toLon"); err != nil {
		return err
	}

	q.Mode = c.Query("mode", string(route.ModeCar))
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
