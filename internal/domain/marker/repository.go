package marker

import (
	"context"

	"github.com/google/uuid"
)

// MarkerRepository is the registry of markers currently displayed on maps.
type MarkerRepository interface {
	// FindByID retrieves a marker by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Marker, error)

	// FindByKey retrieves the marker registered under key on a map.
	FindByKey(ctx context.Context, mapID uuid.UUID, key string) (*Marker, error)

	// ListByMap returns every marker on a map, oldest first.
	ListByMap(ctx context.Context, mapID uuid.UUID) ([]*Marker, error)

	// ListByKind returns markers of one kind on a map, optionally limited to a route.
	ListByKind(ctx context.Context, mapID uuid.UUID, kind Kind, routeID string) ([]*Marker, error)

	// Save persists a new marker.
	Save(ctx context.Context, m *Marker) error

	// Update persists a moved marker with optimistic locking.
	Update(ctx context.Context, m *Marker) error

	// Delete removes a marker.
	Delete(ctx context.Context, id uuid.UUID) error
}
