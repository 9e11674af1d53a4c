//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/marker"
	"github.com/mybus-app/service-transit/internal/domain/route"
	"github.com/mybus-app/service-transit/internal/domain/vehicle"
	transitEvents "github.com/mybus-app/service-transit/internal/events"
	"github.com/mybus-app/service-transit/internal/repository"
)

// TestDeviceLocation_ReadiesGeolocator verifies that a location report published
// to device.location makes the service ready and becomes the current location.
func TestDeviceLocation_ReadiesGeolocator(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupTransitStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, transitEvents.TopicDeviceLocation,
		"mobile-app", transitEvents.DeviceLocationReported,
		transitEvents.DeviceLocationReportedEvent{
			DeviceID:   "phone-1",
			Latitude:   37.7749,
			Longitude:  -122.4194,
			Accuracy:   15,
			ReportedAt: time.Now().UTC(),
		})

	loc, err := stack.Location.GetCurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Latitude: 37.7749, Longitude: -122.4194}, loc)
}

// TestDisplayVehicles_PersistsAndPublishes verifies that repeated vehicle
// refreshes move markers in place in PostgreSQL, remove stale ones, and emit
// marker events on map.markers.
func TestDisplayVehicles_PersistsAndPublishes(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupTransitStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx := context.Background()
	m, err := stack.Maps.CreateMap(ctx, geo.Coordinate{Latitude: 37.78, Longitude: -122.416})
	require.NoError(t, err)

	r := route.Route{
		Stop:  route.StopRef{ID: "5191"},
		Route: route.RouteRef{ID: "N", Title: "N-Judah"},
	}

	stack.Vehicles.vehicles = []vehicle.Vehicle{
		{ID: "1520", RouteID: "N", Lat: 37.7654, Lon: -122.4501},
		{ID: "1521", RouteID: "N", Lat: 37.7660, Lon: -122.4400},
		{ID: "5611", RouteID: "38", Lat: 37.7811, Lon: -122.4103},
	}
	_, err = stack.Maps.DisplayVehicles(ctx, m.ID, r, "bus.png")
	require.NoError(t, err)

	stack.Vehicles.vehicles = []vehicle.Vehicle{
		{ID: "1520", RouteID: "N", Lat: 37.7670, Lon: -122.4480},
	}
	markers, err := stack.Maps.DisplayVehicles(ctx, m.ID, r, "bus.png")
	require.NoError(t, err)
	require.Len(t, markers, 1)

	var rows []repository.MarkerModel
	require.NoError(t, infra.DB.Where("map_id = ?", m.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, marker.VehicleKey("1520"), rows[0].Key)
	assert.InDelta(t, 37.7670, rows[0].Latitude, 1e-9)
	assert.Equal(t, int64(2), rows[0].Version)

	placed := consumeEvents(t, infra.KafkaBrokers, transitEvents.TopicMapMarkers, marker.EventPlaced, m.ID, 2, 15*time.Second)
	assert.Len(t, placed, 2)

	removed := consumeEvents(t, infra.KafkaBrokers, transitEvents.TopicMapMarkers, marker.EventRemoved, m.ID, 1, 15*time.Second)
	var evt marker.Event
	require.NoError(t, removed[0].ParseData(&evt))
	assert.Equal(t, marker.VehicleKey("1521"), evt.Key)
}

// TestMarkerRepository_ZeroValuesAndDuplicateKey verifies that updates persist
// an empty icon and a 0,0 position, and that a second marker under an existing
// map and key is reported as a conflict.
func TestMarkerRepository_ZeroValuesAndDuplicateKey(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupTransitStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx := context.Background()
	m, err := stack.Maps.CreateMap(ctx, geo.Coordinate{Latitude: 37.78, Longitude: -122.416})
	require.NoError(t, err)

	repo := repository.NewGormMarkerRepository(infra.DB)
	key := marker.VehicleKey("1520")

	mk, err := marker.NewMarker(m.ID, marker.KindVehicle, key,
		geo.Coordinate{Latitude: 37.7654, Longitude: -122.4501}, "bus.png", "N")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, mk))

	changed, err := mk.MoveTo(geo.Coordinate{}, "", "J")
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, repo.Update(ctx, mk))

	stored, err := repo.FindByKey(ctx, m.ID, key)
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{}, stored.Position())
	assert.Empty(t, stored.Icon())
	assert.Equal(t, "J", stored.RouteID())
	assert.Equal(t, int64(2), stored.Version())

	dup, err := marker.NewMarker(m.ID, marker.KindVehicle, key,
		geo.Coordinate{Latitude: 1, Longitude: 1}, "bus.png", "N")
	require.NoError(t, err)
	err = repo.Save(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))
}
