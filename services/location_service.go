package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-order/logger"
	"food-order/models"
	"food-order/repositories"
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error)
}

const (
	locationFreshness = 15 * time.Minute
	geocodeCacheTTL   = 60 * time.Minute
)

// LocationService keeps the last reported device position and the chosen
// delivery address. It never polls; clients push a fresh position when the
// stored one has gone stale.
type LocationService struct {
	store    repositories.KeyValueStore
	geocoder Geocoder
	log      *logger.Logger
	now      func() time.Time
}

// NewLocationService builds the service. geocoder may be nil when no API
// key is configured; address lookups then fail with a dependency error.
func NewLocationService(store repositories.KeyValueStore, geocoder Geocoder, log *logger.Logger) *LocationService {
	if log == nil {
		log = logger.Nop()
	}
	return &LocationService{store: store, geocoder: geocoder, log: log, now: time.Now}
}

func (s *LocationService) UpdateLocation(ctx context.Context, coord models.Coordinate) (*models.UserLocation, error) {
	if coord.Latitude < -90 || coord.Latitude > 90 || coord.Longitude < -180 || coord.Longitude > 180 {
		return nil, models.ValidationError("coordinate out of range")
	}

	location := models.UserLocation{
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		Timestamp: s.now().UTC(),
	}
	if err := repositories.SetJSON(ctx, s.store, repositories.KeyUserLocation, location, 0); err != nil {
		return nil, models.PersistenceError(err, "failed to save location")
	}
	return &location, nil
}

// LastKnownLocation returns the stored position if it is younger than
// fifteen minutes.
func (s *LocationService) LastKnownLocation(ctx context.Context) (*models.UserLocation, error) {
	var location models.UserLocation
	err := repositories.GetJSON(ctx, s.store, repositories.KeyUserLocation, &location)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return nil, models.NotFoundError("no location reported yet")
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load location")
	}

	if s.now().Sub(location.Timestamp) > locationFreshness {
		return nil, models.NotFoundError("location is stale, please refresh")
	}
	return &location, nil
}

func (s *LocationService) CurrentAddress(ctx context.Context) (string, error) {
	location, err := s.LastKnownLocation(ctx)
	if err != nil {
		return "", err
	}
	if s.geocoder == nil {
		return "", models.NewAppError(models.CodeDependency, "geocoding is not configured")
	}
	return s.geocoder.ReverseGeocode(ctx, location.Coordinate())
}

func (s *LocationService) SaveDeliveryAddress(ctx context.Context, address string) (*models.DeliveryAddress, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, models.ValidationError("address is required")
	}

	result, err := s.geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	formatted := result.FormattedAddress
	if formatted == "" {
		formatted = address
	}
	delivery := models.DeliveryAddress{
		FormattedAddress: formatted,
		Latitude:         result.Latitude,
		Longitude:        result.Longitude,
		Timestamp:        s.now().UTC(),
	}
	if err := repositories.SetJSON(ctx, s.store, repositories.KeyDeliveryAddress, delivery, 0); err != nil {
		return nil, models.PersistenceError(err, "failed to save delivery address")
	}
	return &delivery, nil
}

func (s *LocationService) DeliveryAddress(ctx context.Context) (*models.DeliveryAddress, error) {
	var delivery models.DeliveryAddress
	err := repositories.GetJSON(ctx, s.store, repositories.KeyDeliveryAddress, &delivery)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return nil, models.NotFoundError("no delivery address saved")
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load delivery address")
	}
	return &delivery, nil
}

func geocodeCacheKey(address string) string {
	return repositories.KeyGeocodedAddresses + ":" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (s *LocationService) geocode(ctx context.Context, address string) (*models.GeocodeResult, error) {
	key := geocodeCacheKey(address)

	var cached models.GeocodeResult
	err := repositories.GetJSON(ctx, s.store, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, repositories.ErrKeyNotFound) {
		s.log.Warn(ctx, "geocode cache read failed", err)
	}

	if s.geocoder == nil {
		return nil, models.NewAppError(models.CodeDependency, "geocoding is not configured")
	}
	result, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := repositories.SetJSON(ctx, s.store, key, result, geocodeCacheTTL); err != nil {
		s.log.Warn(ctx, "geocode cache write failed", err)
	}
	return result, nil
}
