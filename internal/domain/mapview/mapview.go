package mapview

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mybus-app/service-transit/internal/domain/geo"
)

// DefaultZoom is the zoom level new maps open at.
const DefaultZoom = 17

// MapView is a map the app is displaying, centered on a coordinate.
type MapView struct {
	id        uuid.UUID
	center    geo.Coordinate
	zoom      int
	createdAt time.Time
}

// NewMapView creates a map centered on center. A zero zoom selects DefaultZoom.
func NewMapView(center geo.Coordinate, zoom int) (*MapView, error) {
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map center: %w", err)
	}
	if zoom == 0 {
		zoom = DefaultZoom
	}
	if zoom < 0 || zoom > 22 {
		return nil, fmt.Errorf("zoom must be between 1 and 22, got %d", zoom)
	}
	return &MapView{
		id:        uuid.New(),
		center:    center,
		zoom:      zoom,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a MapView from persistence data (no validation).
func Reconstruct(id uuid.UUID, center geo.Coordinate, zoom int, createdAt time.Time) *MapView {
	return &MapView{id: id, center: center, zoom: zoom, createdAt: createdAt}
}

func (m *MapView) ID() uuid.UUID          { return m.id }
func (m *MapView) Center() geo.Coordinate { return m.center }
func (m *MapView) Zoom() int              { return m.zoom }
func (m *MapView) CreatedAt() time.Time   { return m.createdAt }
