package marker

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mybus-app/service-transit/internal/domain/geo"
)

// Kind classifies what a marker represents.
type Kind string

const (
	KindUser    Kind = "user"
	KindStation Kind = "station"
	KindVehicle Kind = "vehicle"
	KindCustom  Kind = "custom"
)

// UserKey is the registry key of the single user marker on a map.
const UserKey = "user"

// StationKey returns the registry key for a stop marker.
func StationKey(stopID string) string { return "stop:" + stopID }

// VehicleKey returns the registry key for a vehicle marker.
func VehicleKey(vehicleID string) string { return "vehicle:" + vehicleID }

// Marker is a map annotation. Within one map the key is unique, so placing a
// marker under an existing key moves it instead of adding a second one.
type Marker struct {
	id        uuid.UUID
	mapID     uuid.UUID
	kind      Kind
	key       string
	position  geo.Coordinate
	icon      string
	routeID   string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewMarker creates a marker. An empty key makes the marker addressable only by id.
func NewMarker(mapID uuid.UUID, kind Kind, key string, position geo.Coordinate, icon, routeID string) (*Marker, error) {
	if mapID == uuid.Nil {
		return nil, fmt.Errorf("map ID is required")
	}
	if err := position.Validate(); err != nil {
		return nil, fmt.Errorf("invalid marker position: %w", err)
	}
	switch kind {
	case KindUser, KindStation, KindVehicle, KindCustom:
	default:
		return nil, fmt.Errorf("invalid marker kind: %s", kind)
	}

	id := uuid.New()
	if key == "" {
		key = id.String()
	}
	now := time.Now().UTC()
	return &Marker{
		id:        id,
		mapID:     mapID,
		kind:      kind,
		key:       key,
		position:  position,
		icon:      icon,
		routeID:   routeID,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Marker from persistence data (no validation).
func Reconstruct(
	id, mapID uuid.UUID,
	kind Kind,
	key string,
	position geo.Coordinate,
	icon, routeID string,
	version int64,
	createdAt, updatedAt time.Time,
) *Marker {
	return &Marker{
		id:        id,
		mapID:     mapID,
		kind:      kind,
		key:       key,
		position:  position,
		icon:      icon,
		routeID:   routeID,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (m *Marker) ID() uuid.UUID            { return m.id }
func (m *Marker) MapID() uuid.UUID         { return m.mapID }
func (m *Marker) Kind() Kind               { return m.kind }
func (m *Marker) Key() string              { return m.key }
func (m *Marker) Position() geo.Coordinate { return m.position }
func (m *Marker) Icon() string             { return m.icon }
func (m *Marker) RouteID() string          { return m.routeID }
func (m *Marker) Version() int64           { return m.version }
func (m *Marker) CreatedAt() time.Time     { return m.createdAt }
func (m *Marker) UpdatedAt() time.Time     { return m.updatedAt }

// MoveTo updates position, icon and the route the marker is tagged with. It
// reports whether anything changed; the version only advances on a change.
func (m *Marker) MoveTo(position geo.Coordinate, icon, routeID string) (bool, error) {
	if err := position.Validate(); err != nil {
		return false, fmt.Errorf("invalid marker position: %w", err)
	}
	if position == m.position && icon == m.icon && routeID == m.routeID {
		return false, nil
	}
	m.position = position
	m.icon = icon
	m.routeID = routeID
	m.version++
	m.updatedAt = time.Now().UTC()
	return true, nil
}
