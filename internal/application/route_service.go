package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/route"
)

// PredictionSource fetches the route/stop predictions near a coordinate.
type PredictionSource interface {
	Predictions(ctx context.Context, loc geo.Coordinate) ([]route.Route, error)
}

// RouteService fetches predictions for the user's location and resolves
// single routes from the most recent fetch.
type RouteService struct {
	location    *LocationService
	predictions PredictionSource
	files       *ReadFileService
	maps        *MapService
	cache       *route.Cache
	logger      *zap.Logger
}

// NewRouteService creates a RouteService that owns cache.
func NewRouteService(
	location *LocationService,
	predictions PredictionSource,
	files *ReadFileService,
	maps *MapService,
	cache *route.Cache,
	logger *zap.Logger,
) *RouteService {
	return &RouteService{
		location:    location,
		predictions: predictions,
		files:       files,
		maps:        maps,
		cache:       cache,
		logger:      logger,
	}
}

// GetRoutes fetches predictions for the current location and makes them the
// cached route list.
func (s *RouteService) GetRoutes(ctx context.Context) ([]route.Route, error) {
	loc, err := s.location.GetCurrentLocation(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetRoutesNear(ctx, loc)
}

// GetRoutesNear fetches predictions for loc and makes them the cached route
// list. On failure the previous list stays in place.
func (s *RouteService) GetRoutesNear(ctx context.Context, loc geo.Coordinate) ([]route.Route, error) {
	if err := loc.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	routes, err := s.predictions.Predictions(ctx, loc)
	if err != nil {
		s.logger.Error("failed to fetch predictions",
			zap.Float64("lat", loc.Latitude),
			zap.Float64("lon", loc.Longitude),
			zap.Error(err),
		)
		return nil, domain.NewUpstreamError("failed to fetch predictions", err)
	}

	s.cache.Replace(routes, time.Now().UTC())
	s.logger.Info("routes fetched",
		zap.Float64("lat", loc.Latitude),
		zap.Float64("lon", loc.Longitude),
		zap.Int("count", len(routes)),
	)
	return routes, nil
}

// GetRoute returns the first cached route whose composite id equals id.
func (s *RouteService) GetRoute(_ context.Context, id string) (*route.Route, error) {
	r, ok := s.cache.Find(id)
	if !ok {
		return nil, domain.NewNotFoundError("Route", id)
	}
	return &r, nil
}

// GetStationLocation looks up r's stop in the stop table and shows it on the map.
func (s *RouteService) GetStationLocation(ctx context.Context, mapID uuid.UUID, r route.Route) (*MarkerDTO, error) {
	table, err := s.files.LoadStopTable(ctx)
	if err != nil {
		return nil, err
	}

	loc, ok := table.Lookup(r.Stop.ID)
	if !ok {
		s.logger.Warn("stop missing from stop table", zap.String("stop_id", r.Stop.ID))
		return nil, domain.NewNotFoundError("Stop", r.Stop.ID)
	}

	m, err := s.maps.DisplayStation(ctx, mapID, r.Stop.ID, loc, "")
	if err != nil {
		return nil, fmt.Errorf("failed to display station %s: %w", r.Stop.ID, err)
	}
	return m, nil
}
