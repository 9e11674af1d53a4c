package mapview

import (
	"context"

	"github.com/google/uuid"
)

// MapRepository defines persistence operations for map views.
type MapRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MapView, error)
	Save(ctx context.Context, m *MapView) error
}
