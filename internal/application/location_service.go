package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/geo"
)

// DefaultLocationTimeout bounds the readiness wait plus the position query.
const DefaultLocationTimeout = 10 * time.Second

// LocationService answers "where is the user" once the provider is ready.
type LocationService struct {
	geolocator Geolocator
	readiness  Readiness
	options    PositionOptions
	logger     *zap.Logger
}

// NewLocationService creates a LocationService. Low accuracy is preferred for speed.
func NewLocationService(geolocator Geolocator, readiness Readiness, timeout time.Duration, logger *zap.Logger) *LocationService {
	if timeout <= 0 {
		timeout = DefaultLocationTimeout
	}
	return &LocationService{
		geolocator: geolocator,
		readiness:  readiness,
		options: PositionOptions{
			Timeout:      timeout,
			HighAccuracy: false,
		},
		logger: logger,
	}
}

// GetCurrentLocation waits for the provider to become ready and returns the
// current coordinate. Every failure, including the timeout, is returned as a
// location error.
func (s *LocationService) GetCurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	if err := s.readiness.Ready(ctx); err != nil {
		s.logger.Warn("geolocation provider not ready", zap.Error(err))
		return geo.Coordinate{}, domain.NewLocationError(err)
	}

	pos, err := s.geolocator.CurrentPosition(ctx, s.options)
	if err != nil {
		s.logger.Warn("failed to get current position", zap.Error(err))
		return geo.Coordinate{}, domain.NewLocationError(err)
	}

	return geo.Coordinate{
		Latitude:  pos.Coords.Latitude,
		Longitude: pos.Coords.Longitude,
	}, nil
}
