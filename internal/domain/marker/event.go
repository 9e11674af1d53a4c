package marker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mybus-app/service-transit/internal/domain/geo"
)

// Event types emitted when the registry changes.
const (
	EventPlaced  = "map.marker.placed"
	EventMoved   = "map.marker.moved"
	EventRemoved = "map.marker.removed"
)

// Event describes one change to a map's markers.
type Event struct {
	Type       string         `json:"type"`
	MarkerID   uuid.UUID      `json:"marker_id"`
	MapID      uuid.UUID      `json:"map_id"`
	Kind       Kind           `json:"kind"`
	Key        string         `json:"key"`
	RouteID    string         `json:"route_id,omitempty"`
	Position   geo.Coordinate `json:"position"`
	Icon       string         `json:"icon,omitempty"`
	Version    int64          `json:"version"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent snapshots m into an event of the given type.
func NewEvent(eventType string, m *Marker) Event {
	return Event{
		Type:       eventType,
		MarkerID:   m.ID(),
		MapID:      m.MapID(),
		Kind:       m.Kind(),
		Key:        m.Key(),
		RouteID:    m.RouteID(),
		Position:   m.Position(),
		Icon:       m.Icon(),
		Version:    m.Version(),
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher receives marker events. Implementations must not block for long;
// publish failures are the publisher's to log.
type Publisher interface {
	PublishMarkerEvent(ctx context.Context, evt Event)
}
