package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/vehicle"
)

// VehicleSource lists the vehicles currently reported for the agency.
type VehicleSource interface {
	Vehicles(ctx context.Context) ([]vehicle.Vehicle, error)
}

// VehiclesService fetches live vehicle positions.
type VehiclesService struct {
	source VehicleSource
	logger *zap.Logger
}

func NewVehiclesService(source VehicleSource, logger *zap.Logger) *VehiclesService {
	return &VehiclesService{source: source, logger: logger}
}

// GetVehicles returns the full vehicle list. Nothing is retried.
func (s *VehiclesService) GetVehicles(ctx context.Context) ([]vehicle.Vehicle, error) {
	vehicles, err := s.source.Vehicles(ctx)
	if err != nil {
		s.logger.Error("failed to fetch vehicles", zap.Error(err))
		return nil, domain.NewUpstreamError("failed to fetch vehicles", err)
	}
	s.logger.Debug("vehicles fetched", zap.Int("count", len(vehicles)))
	return vehicles, nil
}
