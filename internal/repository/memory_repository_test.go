package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/mapview"
	markerDomain "github.com/mybus-app/service-transit/internal/domain/marker"
)

func newVehicleMarker(t *testing.T, mapID uuid.UUID, id, routeID string) *markerDomain.Marker {
	t.Helper()
	m, err := markerDomain.NewMarker(mapID, markerDomain.KindVehicle, markerDomain.VehicleKey(id),
		geo.Coordinate{Latitude: 10, Longitude: 20}, "", routeID)
	require.NoError(t, err)
	return m
}

func TestMemoryMapRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMapRepository()

	m, err := mapview.NewMapView(geo.Coordinate{Latitude: 1, Longitude: 2}, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, mapview.DefaultZoom, got.Zoom())

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestMemoryMarkerRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMarkerRepository()
	mapID := uuid.New()

	m := newVehicleMarker(t, mapID, "1", "N")
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.FindByKey(ctx, mapID, "vehicle:1")
	require.NoError(t, err)
	assert.Equal(t, m.ID(), got.ID())

	_, err = repo.FindByKey(ctx, uuid.New(), "vehicle:1")
	assert.True(t, domain.IsNotFound(err), "keys are scoped per map")

	err = repo.Save(ctx, newVehicleMarker(t, mapID, "1", "N"))
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))
}

func TestMemoryMarkerRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMarkerRepository()
	m := newVehicleMarker(t, uuid.New(), "1", "N")
	require.NoError(t, repo.Save(ctx, m))

	_, err := m.MoveTo(geo.Coordinate{Latitude: 50, Longitude: 50}, "", "N")
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Latitude: 10, Longitude: 20}, stored.Position())
}

func TestMemoryMarkerRepository_OptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMarkerRepository()
	m := newVehicleMarker(t, uuid.New(), "1", "N")
	require.NoError(t, repo.Save(ctx, m))

	a, err := repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, m.ID())
	require.NoError(t, err)

	_, err = a.MoveTo(geo.Coordinate{Latitude: 11, Longitude: 21}, "", "N")
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, a))

	_, err = b.MoveTo(geo.Coordinate{Latitude: 12, Longitude: 22}, "", "N")
	require.NoError(t, err)
	err = repo.Update(ctx, b)
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))
}

func TestMemoryMarkerRepository_ListByKind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMarkerRepository()
	mapID := uuid.New()

	require.NoError(t, repo.Save(ctx, newVehicleMarker(t, mapID, "1", "N")))
	require.NoError(t, repo.Save(ctx, newVehicleMarker(t, mapID, "2", "N")))
	require.NoError(t, repo.Save(ctx, newVehicleMarker(t, mapID, "3", "38")))
	user, err := markerDomain.NewMarker(mapID, markerDomain.KindUser, markerDomain.UserKey, geo.Coordinate{}, "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	onN, err := repo.ListByKind(ctx, mapID, markerDomain.KindVehicle, "N")
	require.NoError(t, err)
	assert.Len(t, onN, 2)

	allVehicles, err := repo.ListByKind(ctx, mapID, markerDomain.KindVehicle, "")
	require.NoError(t, err)
	assert.Len(t, allVehicles, 3)

	all, err := repo.ListByMap(ctx, mapID)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, repo.Delete(ctx, user.ID()))
	all, err = repo.ListByMap(ctx, mapID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
