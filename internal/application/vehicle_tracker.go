package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain/route"
)

// DefaultTrackingInterval is the refresh period for tracked routes.
const DefaultTrackingInterval = 15 * time.Second

type trackKey struct {
	mapID   uuid.UUID
	routeID string
}

type trackedRoute struct {
	route route.Route
	icon  string
}

// TrackedRouteDTO describes one (map, route) pair being refreshed.
type TrackedRouteDTO struct {
	MapID   uuid.UUID `json:"map_id"`
	RouteID string    `json:"route_id"`
	Icon    string    `json:"icon,omitempty"`
}

// VehicleTracker periodically refreshes the vehicle markers of tracked routes.
type VehicleTracker struct {
	maps     *MapService
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	tracked map[trackKey]trackedRoute
}

func NewVehicleTracker(maps *MapService, interval time.Duration, logger *zap.Logger) *VehicleTracker {
	if interval <= 0 {
		interval = DefaultTrackingInterval
	}
	return &VehicleTracker{
		maps:     maps,
		interval: interval,
		logger:   logger,
		tracked:  make(map[trackKey]trackedRoute),
	}
}

// Track starts refreshing r's vehicles on mapID and does a first refresh now.
func (t *VehicleTracker) Track(ctx context.Context, mapID uuid.UUID, r route.Route, icon string) ([]MarkerDTO, error) {
	markers, err := t.maps.DisplayVehicles(ctx, mapID, r, icon)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.tracked[trackKey{mapID: mapID, routeID: r.Route.ID}] = trackedRoute{route: r, icon: icon}
	t.mu.Unlock()

	t.logger.Info("route tracking started",
		zap.String("map_id", mapID.String()),
		zap.String("route_id", r.Route.ID),
	)
	return markers, nil
}

// Untrack stops refreshing a route. It reports whether the route was tracked.
func (t *VehicleTracker) Untrack(mapID uuid.UUID, routeID string) bool {
	key := trackKey{mapID: mapID, routeID: routeID}
	t.mu.Lock()
	_, ok := t.tracked[key]
	delete(t.tracked, key)
	t.mu.Unlock()
	return ok
}

// Tracked lists the pairs currently tracked on mapID.
func (t *VehicleTracker) Tracked(mapID uuid.UUID) []TrackedRouteDTO {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TrackedRouteDTO, 0)
	for k, v := range t.tracked {
		if k.mapID == mapID {
			out = append(out, TrackedRouteDTO{MapID: k.mapID, RouteID: k.routeID, Icon: v.icon})
		}
	}
	return out
}

// Run refreshes every tracked route each interval until ctx is cancelled.
func (t *VehicleTracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick refreshes every tracked route once.
func (t *VehicleTracker) Tick(ctx context.Context) {
	t.mu.Lock()
	work := make(map[trackKey]trackedRoute, len(t.tracked))
	for k, v := range t.tracked {
		work[k] = v
	}
	t.mu.Unlock()

	for k, v := range work {
		cctx, cancel := context.WithTimeout(ctx, t.interval)
		markers, err := t.maps.DisplayVehicles(cctx, k.mapID, v.route, v.icon)
		cancel()
		if err != nil {
			t.logger.Warn("vehicle refresh failed",
				zap.String("map_id", k.mapID.String()),
				zap.String("route_id", k.routeID),
				zap.Error(err),
			)
			continue
		}
		t.logger.Debug("vehicles refreshed",
			zap.String("map_id", k.mapID.String()),
			zap.String("route_id", k.routeID),
			zap.Int("count", len(markers)),
		)
	}
}
