package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
)

// ErrGeocodingUnavailable marks a destination that could not be resolved to
// coordinates by any means. Callers degrade gracefully: the visit is still
// created, with estimates left empty for later backfill.
var ErrGeocodingUnavailable = errors.New("destination could not be geocoded")

// earthRadiusKm great-circle radius.
const earthRadiusKm = 6371.0

// Coordinates decimal-degree position.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Estimate distance/time/fuel/cost figures for one leg.
// Rounding is fixed (distance/cost 2dp, fuel/time 1dp) so stored and
// displayed values stay stable across recomputation.
type Estimate struct {
	DistanceKm    float64
	TravelTimeMin float64
	FuelLiters    float64
	Cost          float64
}

// GeoService estimates travel legs between the company base and clients.
type GeoService interface {
	// EstimateBetween is pure: no I/O, symmetric in its arguments.
	EstimateBetween(origin, destination Coordinates) Estimate
	// ResolveCoordinates returns the contact's position, geocoding by
	// postal code then by address when no coordinates are stored.
	ResolveCoordinates(ctx context.Context, contact *model.Contact) (Coordinates, error)
	// EstimateToContact estimates the base → contact leg.
	EstimateToContact(ctx context.Context, contact *model.Contact) (*Estimate, error)
	// Base returns the configured departure point.
	Base() Coordinates
}

type geoService struct {
	cfg      *config.PlanningConfig
	geocoder GeocodingClient
	logger   *zap.Logger
}

// NewGeoService creates a GeoService.
func NewGeoService(cfg *config.PlanningConfig, geocoder GeocodingClient, logger *zap.Logger) GeoService {
	return &geoService{cfg: cfg, geocoder: geocoder, logger: logger}
}

func (s *geoService) Base() Coordinates {
	return Coordinates{Lat: s.cfg.BaseLatitude, Lon: s.cfg.BaseLongitude}
}

func (s *geoService) EstimateBetween(origin, destination Coordinates) Estimate {
	distance := haversineKm(origin, destination)
	travelTime := distance / s.cfg.AverageSpeedKmh * 60 * s.cfg.TrafficFactor
	fuel := distance / s.cfg.VehicleEfficiency
	cost := fuel * s.cfg.FuelPricePerLiter

	return Estimate{
		DistanceKm:    round2(distance),
		TravelTimeMin: round1(travelTime),
		FuelLiters:    round1(fuel),
		Cost:          round2(cost),
	}
}

func (s *geoService) ResolveCoordinates(ctx context.Context, contact *model.Contact) (Coordinates, error) {
	if contact.HasCoordinates() {
		return Coordinates{Lat: *contact.Latitude, Lon: *contact.Longitude}, nil
	}

	if contact.PostalCode != nil && *contact.PostalCode != "" {
		coords, err := s.geocoder.GeocodePostalCode(ctx, *contact.PostalCode)
		if err == nil {
			return coords, nil
		}
		s.logger.Debug("postal code geocoding failed, falling back to address",
			zap.String("contact_id", contact.ContactID), zap.Error(err))
	}

	address, city, state := deref(contact.Address), deref(contact.City), deref(contact.State)
	if address == "" && city == "" {
		return Coordinates{}, ErrGeocodingUnavailable
	}

	coords, err := s.geocoder.GeocodeAddress(ctx, address, city, state)
	if err != nil {
		s.logger.Warn("address geocoding failed",
			zap.String("contact_id", contact.ContactID), zap.Error(err))
		return Coordinates{}, ErrGeocodingUnavailable
	}

	return coords, nil
}

func (s *geoService) EstimateToContact(ctx context.Context, contact *model.Contact) (*Estimate, error) {
	coords, err := s.ResolveCoordinates(ctx, contact)
	if err != nil {
		return nil, err
	}
	est := s.EstimateBetween(s.Base(), coords)
	return &est, nil
}

// haversineKm great-circle distance between two decimal-degree positions.
func haversineKm(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
