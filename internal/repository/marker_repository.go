package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	markerDomain "github.com/mybus-app/service-transit/internal/domain/marker"
)

// MarkerModel is the GORM model for the map_markers table.
type MarkerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MapID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_marker_map_key;index"`
	Kind      string    `gorm:"type:varchar(20);not null"`
	Key       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_marker_map_key"`
	Latitude  float64   `gorm:"type:double precision;not null"`
	Longitude float64   `gorm:"type:double precision;not null"`
	Icon      string    `gorm:"type:text"`
	RouteID   string    `gorm:"type:varchar(50);index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (MarkerModel) TableName() string { return "map_markers" }

// GormMarkerRepository implements MarkerRepository using GORM.
type GormMarkerRepository struct {
	db *gorm.DB
}

func NewGormMarkerRepository(db *gorm.DB) *GormMarkerRepository {
	return &GormMarkerRepository{db: db}
}

func (r *GormMarkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*markerDomain.Marker, error) {
	var model MarkerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Marker", id.String())
		}
		return nil, err
	}
	return toMarkerDomain(&model), nil
}

func (r *GormMarkerRepository) FindByKey(ctx context.Context, mapID uuid.UUID, key string) (*markerDomain.Marker, error) {
	var model MarkerModel
	if err := r.db.WithContext(ctx).Where("map_id = ? AND key = ?", mapID, key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Marker", key)
		}
		return nil, err
	}
	return toMarkerDomain(&model), nil
}

func (r *GormMarkerRepository) ListByMap(ctx context.Context, mapID uuid.UUID) ([]*markerDomain.Marker, error) {
	var models []MarkerModel
	if err := r.db.WithContext(ctx).
		Where("map_id = ?", mapID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toMarkerDomains(models), nil
}

func (r *GormMarkerRepository) ListByKind(ctx context.Context, mapID uuid.UUID, kind markerDomain.Kind, routeID string) ([]*markerDomain.Marker, error) {
	q := r.db.WithContext(ctx).Where("map_id = ? AND kind = ?", mapID, string(kind))
	if routeID != "" {
		q = q.Where("route_id = ?", routeID)
	}
	var models []MarkerModel
	if err := q.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toMarkerDomains(models), nil
}

// Save inserts a new marker. A second marker under the same map and key is a
// conflict; the DB must be opened with TranslateError for gorm to report it.
func (r *GormMarkerRepository) Save(ctx context.Context, m *markerDomain.Marker) error {
	if err := r.db.WithContext(ctx).Create(toMarkerModel(m)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("marker key already registered on map")
		}
		return fmt.Errorf("failed to save marker: %w", err)
	}
	return nil
}

func (r *GormMarkerRepository) Update(ctx context.Context, m *markerDomain.Marker) error {
	model := toMarkerModel(m)
	previousVersion := m.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&MarkerModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"latitude":   model.Latitude,
			"longitude":  model.Longitude,
			"icon":       model.Icon,
			"route_id":   model.RouteID,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update marker: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("marker was modified by another request")
	}
	return nil
}

func (r *GormMarkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&MarkerModel{}).Error
}

// --- Conversions ---

func toMarkerModel(m *markerDomain.Marker) *MarkerModel {
	return &MarkerModel{
		ID:        m.ID(),
		MapID:     m.MapID(),
		Kind:      string(m.Kind()),
		Key:       m.Key(),
		Latitude:  m.Position().Latitude,
		Longitude: m.Position().Longitude,
		Icon:      m.Icon(),
		RouteID:   m.RouteID(),
		Version:   m.Version(),
		CreatedAt: m.CreatedAt(),
		UpdatedAt: m.UpdatedAt(),
	}
}

func toMarkerDomain(m *MarkerModel) *markerDomain.Marker {
	return markerDomain.Reconstruct(
		m.ID, m.MapID,
		markerDomain.Kind(m.Kind),
		m.Key,
		geo.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude},
		m.Icon, m.RouteID,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toMarkerDomains(models []MarkerModel) []*markerDomain.Marker {
	out := make([]*markerDomain.Marker, len(models))
	for i := range models {
		out[i] = toMarkerDomain(&models[i])
	}
	return out
}
