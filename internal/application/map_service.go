package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/mapview"
	markerDomain "github.com/mybus-app/service-transit/internal/domain/marker"
	"github.com/mybus-app/service-transit/internal/domain/route"
	"github.com/mybus-app/service-transit/internal/domain/vehicle"
)

// MapDTO is the API response representation of a map view.
type MapDTO struct {
	ID        uuid.UUID      `json:"id"`
	Center    geo.Coordinate `json:"center"`
	Zoom      int            `json:"zoom"`
	CreatedAt time.Time      `json:"created_at"`
}

// MarkerDTO is the API response representation of a marker.
type MarkerDTO struct {
	ID        uuid.UUID      `json:"id"`
	MapID     uuid.UUID      `json:"map_id"`
	Kind      string         `json:"kind"`
	Key       string         `json:"key"`
	RouteID   string         `json:"route_id,omitempty"`
	Position  geo.Coordinate `json:"position"`
	Icon      string         `json:"icon,omitempty"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// MapService creates maps and keeps the registry of what each map displays.
type MapService struct {
	maps        mapview.MapRepository
	markers     markerDomain.MarkerRepository
	vehicles    *VehiclesService
	publisher   markerDomain.Publisher
	defaultZoom int
	logger      *zap.Logger
}

// NewMapService creates a MapService. publisher may be nil.
func NewMapService(
	maps mapview.MapRepository,
	markers markerDomain.MarkerRepository,
	vehicles *VehiclesService,
	publisher markerDomain.Publisher,
	defaultZoom int,
	logger *zap.Logger,
) *MapService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if defaultZoom == 0 {
		defaultZoom = mapview.DefaultZoom
	}
	return &MapService{
		maps:        maps,
		markers:     markers,
		vehicles:    vehicles,
		publisher:   publisher,
		defaultZoom: defaultZoom,
		logger:      logger,
	}
}

// CreateMap creates a map centered on center at the default zoom.
func (s *MapService) CreateMap(ctx context.Context, center geo.Coordinate) (*MapDTO, error) {
	m, err := mapview.NewMapView(center, s.defaultZoom)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.maps.Save(ctx, m); err != nil {
		s.logger.Error("failed to create map", zap.Error(err))
		return nil, fmt.Errorf("failed to create map: %w", err)
	}

	s.logger.Info("map created",
		zap.String("map_id", m.ID().String()),
		zap.Float64("lat", center.Latitude),
		zap.Float64("lon", center.Longitude),
	)
	result := toMapDTO(m)
	return &result, nil
}

// GetMap returns a map by ID.
func (s *MapService) GetMap(ctx context.Context, mapID uuid.UUID) (*MapDTO, error) {
	m, err := s.maps.FindByID(ctx, mapID)
	if err != nil {
		return nil, err
	}
	result := toMapDTO(m)
	return &result, nil
}

// CreateMarker places an unkeyed marker. Each call adds a new marker.
func (s *MapService) CreateMarker(ctx context.Context, mapID uuid.UUID, loc geo.Coordinate, icon string) (*MarkerDTO, error) {
	if _, err := s.maps.FindByID(ctx, mapID); err != nil {
		return nil, err
	}
	m, err := markerDomain.NewMarker(mapID, markerDomain.KindCustom, "", loc, icon, "")
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.markers.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save marker: %w", err)
	}
	s.publisher.PublishMarkerEvent(ctx, markerDomain.NewEvent(markerDomain.EventPlaced, m))

	result := toMarkerDTO(m)
	return &result, nil
}

// DisplayUser shows the user at loc. Repeat calls move the same marker.
func (s *MapService) DisplayUser(ctx context.Context, mapID uuid.UUID, loc geo.Coordinate, icon string) (*MarkerDTO, error) {
	if _, err := s.maps.FindByID(ctx, mapID); err != nil {
		return nil, err
	}
	m, err := s.upsert(ctx, mapID, markerDomain.KindUser, markerDomain.UserKey, loc, icon, "")
	if err != nil {
		return nil, err
	}
	result := toMarkerDTO(m)
	return &result, nil
}

// DisplayStation shows a stop at loc, keyed by stop id.
func (s *MapService) DisplayStation(ctx context.Context, mapID uuid.UUID, stopID string, loc geo.Coordinate, icon string) (*MarkerDTO, error) {
	if _, err := s.maps.FindByID(ctx, mapID); err != nil {
		return nil, err
	}
	m, err := s.upsert(ctx, mapID, markerDomain.KindStation, markerDomain.StationKey(stopID), loc, icon, "")
	if err != nil {
		return nil, err
	}
	result := toMarkerDTO(m)
	return &result, nil
}

// DisplayVehicle shows one vehicle, keyed by vehicle id.
func (s *MapService) DisplayVehicle(ctx context.Context, mapID uuid.UUID, v vehicle.Vehicle, icon string) (*MarkerDTO, error) {
	if _, err := s.maps.FindByID(ctx, mapID); err != nil {
		return nil, err
	}
	m, err := s.upsert(ctx, mapID, markerDomain.KindVehicle, markerDomain.VehicleKey(v.ID), v.Position(), icon, v.RouteID)
	if err != nil {
		return nil, err
	}
	result := toMarkerDTO(m)
	return &result, nil
}

// DisplayVehicles fetches the vehicle list and shows every vehicle serving
// r's route. Existing markers are moved in place. A marker tagged with the
// route whose vehicle now serves another route is retagged; one whose vehicle
// is no longer reported at all is removed.
func (s *MapService) DisplayVehicles(ctx context.Context, mapID uuid.UUID, r route.Route, icon string) ([]MarkerDTO, error) {
	if _, err := s.maps.FindByID(ctx, mapID); err != nil {
		return nil, err
	}

	all, err := s.vehicles.GetVehicles(ctx)
	if err != nil {
		return nil, err
	}
	routeID := r.Route.ID
	onRoute := vehicle.FilterByRoute(all, routeID)

	reported := make(map[string]vehicle.Vehicle, len(all))
	for _, v := range all {
		key := markerDomain.VehicleKey(v.ID)
		if _, ok := reported[key]; !ok {
			reported[key] = v
		}
	}

	seen := make(map[string]struct{}, len(onRoute))
	result := make([]MarkerDTO, 0, len(onRoute))
	for _, v := range onRoute {
		key := markerDomain.VehicleKey(v.ID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		m, err := s.upsert(ctx, mapID, markerDomain.KindVehicle, key, v.Position(), icon, routeID)
		if err != nil {
			return nil, err
		}
		result = append(result, toMarkerDTO(m))
	}

	existing, err := s.markers.ListByKind(ctx, mapID, markerDomain.KindVehicle, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicle markers: %w", err)
	}
	removed := 0
	for _, m := range existing {
		if _, ok := seen[m.Key()]; ok {
			continue
		}
		if v, ok := reported[m.Key()]; ok {
			// The vehicle now serves another route: retag it instead of removing it.
			if _, err := s.upsert(ctx, mapID, markerDomain.KindVehicle, m.Key(), v.Position(), m.Icon(), v.RouteID); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.markers.Delete(ctx, m.ID()); err != nil {
			return nil, fmt.Errorf("failed to remove stale vehicle marker: %w", err)
		}
		s.publisher.PublishMarkerEvent(ctx, markerDomain.NewEvent(markerDomain.EventRemoved, m))
		removed++
	}

	s.logger.Debug("vehicles displayed",
		zap.String("map_id", mapID.String()),
		zap.String("route_id", routeID),
		zap.Int("shown", len(result)),
		zap.Int("removed", removed),
	)
	return result, nil
}

// ListMarkers returns every marker on a map.
func (s *MapService) ListMarkers(ctx context.Context, mapID uuid.UUID) ([]MarkerDTO, error) {
	if _, err := s.maps.FindByID(ctx, mapID); err != nil {
		return nil, err
	}
	markers, err := s.markers.ListByMap(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	dtos := make([]MarkerDTO, len(markers))
	for i, m := range markers {
		dtos[i] = toMarkerDTO(m)
	}
	return dtos, nil
}

// RemoveMarker removes a marker from a map.
func (s *MapService) RemoveMarker(ctx context.Context, mapID, markerID uuid.UUID) error {
	m, err := s.markers.FindByID(ctx, markerID)
	if err != nil {
		return err
	}
	if m.MapID() != mapID {
		return domain.NewNotFoundError("Marker", markerID.String())
	}
	if err := s.markers.Delete(ctx, markerID); err != nil {
		return fmt.Errorf("failed to remove marker: %w", err)
	}
	s.publisher.PublishMarkerEvent(ctx, markerDomain.NewEvent(markerDomain.EventRemoved, m))
	s.logger.Info("marker removed",
		zap.String("map_id", mapID.String()),
		zap.String("marker_id", markerID.String()),
	)
	return nil
}

// upsert places a marker under key, or moves the one already registered there.
func (s *MapService) upsert(
	ctx context.Context,
	mapID uuid.UUID,
	kind markerDomain.Kind,
	key string,
	loc geo.Coordinate,
	icon, routeID string,
) (*markerDomain.Marker, error) {
	existing, err := s.markers.FindByKey(ctx, mapID, key)
	if err != nil && !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up marker: %w", err)
	}

	if existing != nil {
		changed, err := existing.MoveTo(loc, icon, routeID)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		if !changed {
			return existing, nil
		}
		if err := s.markers.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.publisher.PublishMarkerEvent(ctx, markerDomain.NewEvent(markerDomain.EventMoved, existing))
		return existing, nil
	}

	m, err := markerDomain.NewMarker(mapID, kind, key, loc, icon, routeID)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.markers.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save marker: %w", err)
	}
	s.publisher.PublishMarkerEvent(ctx, markerDomain.NewEvent(markerDomain.EventPlaced, m))
	return m, nil
}

// --- Helpers ---

type noopPublisher struct{}

func (noopPublisher) PublishMarkerEvent(context.Context, markerDomain.Event) {}

func toMapDTO(m *mapview.MapView) MapDTO {
	return MapDTO{
		ID:        m.ID(),
		Center:    m.Center(),
		Zoom:      m.Zoom(),
		CreatedAt: m.CreatedAt(),
	}
}

func toMarkerDTO(m *markerDomain.Marker) MarkerDTO {
	return MarkerDTO{
		ID:        m.ID(),
		MapID:     m.MapID(),
		Kind:      string(m.Kind()),
		Key:       m.Key(),
		RouteID:   m.RouteID(),
		Position:  m.Position(),
		Icon:      m.Icon(),
		Version:   m.Version(),
		CreatedAt: m.CreatedAt(),
		UpdatedAt: m.UpdatedAt(),
	}
}
