package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybus-app/service-transit/internal/domain/geo"
)

const predictionsJSON = `[
  {"agency":{"id":"sf-muni","title":"San Francisco Muni"},
   "route":{"id":"N","title":"N-Judah"},
   "stop":{"id":"5191","title":"Carl St & Cole St","distance":82.5},
   "messages":[],
   "values":[{"epochTime":1700000000000,"seconds":240,"minutes":4,"branch":"N","isDeparture":false,"affectedByLayover":false,"isScheduleBased":false,"vehicle":{"id":"1520"},"direction":{"id":"N____I_F00","title":"Inbound to Caltrain"}}]}
]`

const vehiclesJSON = `[
  {"id":"1520","routeId":"N","directionId":"N____I_F00","predictable":true,"secsSinceReport":12,"kph":24,"heading":90,"lat":37.7654,"lon":-122.4501},
  {"id":"5611","routeId":"38","predictable":true,"secsSinceReport":3,"kph":0,"heading":270,"lat":37.7811,"lon":-122.4103}
]`

func TestRestBusClient_Predictions(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(predictionsJSON))
	}))
	defer srv.Close()

	c := NewRestBusClient(srv.URL+"/", "sf-muni", 5*time.Second)
	routes, err := c.Predictions(context.Background(), geo.Coordinate{Latitude: 37.78, Longitude: -122.416})
	require.NoError(t, err)

	assert.Equal(t, "/locations/37.78,-122.416/predictions", gotPath)
	require.Len(t, routes, 1)
	assert.Equal(t, "5191N", routes[0].CompositeID())
	assert.Equal(t, "N-Judah", routes[0].Route.Title)
	require.Len(t, routes[0].Values, 1)
	assert.Equal(t, 4, routes[0].Values[0].Minutes)
	assert.Equal(t, "1520", routes[0].Values[0].Vehicle.ID)
}

func TestRestBusClient_Vehicles(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(vehiclesJSON))
	}))
	defer srv.Close()

	c := NewRestBusClient(srv.URL, "sf-muni", 5*time.Second)
	vehicles, err := c.Vehicles(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/agencies/sf-muni/vehicles", gotPath)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "N", vehicles[0].RouteID)
	assert.InDelta(t, 37.7654, vehicles[0].Lat, 1e-9)
}

func TestRestBusClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewRestBusClient(srv.URL, "sf-muni", 5*time.Second)
	_, err := c.Vehicles(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
}

func TestRestBusClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	c := NewRestBusClient(srv.URL, "sf-muni", 5*time.Second)
	_, err := c.Predictions(context.Background(), geo.Coordinate{})
	assert.Error(t, err)
}

func TestRestBusClient_VehiclesWithNumericIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"routeId":"1","lat":10,"lon":20},{"id":2,"routeId":"2","lat":30,"lon":40}]`))
	}))
	defer srv.Close()

	c := NewRestBusClient(srv.URL, "sf-muni", 5*time.Second)
	vehicles, err := c.Vehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, vehicles, 2)

	assert.Equal(t, "1", vehicles[0].ID)
	assert.Equal(t, "1", vehicles[0].RouteID)
	assert.Equal(t, "2", vehicles[1].ID)
	assert.InDelta(t, 40.0, vehicles[1].Lon, 1e-9)
}
