package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/mapview"
)

// MapModel is the GORM model for the map_views table.
type MapModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CenterLatitude  float64   `gorm:"type:double precision;not null"`
	CenterLongitude float64   `gorm:"type:double precision;not null"`
	Zoom            int       `gorm:"type:int;not null;default:17"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (MapModel) TableName() string { return "map_views" }

// GormMapRepository implements MapRepository using GORM.
type GormMapRepository struct {
	db *gorm.DB
}

func NewGormMapRepository(db *gorm.DB) *GormMapRepository {
	return &GormMapRepository{db: db}
}

func (r *GormMapRepository) FindByID(ctx context.Context, id uuid.UUID) (*mapview.MapView, error) {
	var model MapModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Map", id.String())
		}
		return nil, err
	}
	return mapview.Reconstruct(
		model.ID,
		geo.Coordinate{Latitude: model.CenterLatitude, Longitude: model.CenterLongitude},
		model.Zoom,
		model.CreatedAt,
	), nil
}

func (r *GormMapRepository) Save(ctx context.Context, m *mapview.MapView) error {
	return r.db.WithContext(ctx).Create(&MapModel{
		ID:              m.ID(),
		CenterLatitude:  m.Center().Latitude,
		CenterLongitude: m.Center().Longitude,
		Zoom:            m.Zoom(),
		CreatedAt:       m.CreatedAt(),
	}).Error
}
