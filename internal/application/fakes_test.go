package application

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/marker"
	"github.com/mybus-app/service-transit/internal/domain/route"
	"github.com/mybus-app/service-transit/internal/domain/vehicle"
	"github.com/mybus-app/service-transit/internal/repository"
)

var errUpstreamDown = errors.New("upstream down")

type fakePredictions struct {
	routes []route.Route
	err    error
	calls  []geo.Coordinate
}

func (f *fakePredictions) Predictions(_ context.Context, loc geo.Coordinate) ([]route.Route, error) {
	f.calls = append(f.calls, loc)
	if f.err != nil {
		return nil, f.err
	}
	return f.routes, nil
}

type fakeVehicles struct {
	mu       sync.Mutex
	vehicles []vehicle.Vehicle
	err      error
}

func (f *fakeVehicles) set(vs ...vehicle.Vehicle) {
	f.mu.Lock()
	f.vehicles = vs
	f.mu.Unlock()
}

func (f *fakeVehicles) Vehicles(context.Context) ([]vehicle.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vehicles, nil
}

type fakeFetcher struct {
	data  map[string][]byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.data[location]
	if !ok {
		return nil, errors.New("no such file: " + location)
	}
	return data, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []marker.Event
}

func (p *recordingPublisher) PublishMarkerEvent(_ context.Context, evt marker.Event) {
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// testStack wires the services over in-memory repositories and fake upstreams.
type testStack struct {
	predictions *fakePredictions
	vehicles    *fakeVehicles
	fetcher     *fakeFetcher
	publisher   *recordingPublisher
	location    *LocationService
	maps        *MapService
	routes      *RouteService
	cache       *route.Cache
}

func newTestStack(here geo.Coordinate) *testStack {
	log := zap.NewNop()
	s := &testStack{
		predictions: &fakePredictions{},
		vehicles:    &fakeVehicles{},
		fetcher:     &fakeFetcher{data: map[string][]byte{}},
		publisher:   &recordingPublisher{},
		cache:       route.NewCache(),
	}
	static := NewStaticGeolocator(here)
	s.location = NewLocationService(static, static, 0, log)
	files := NewReadFileService(s.fetcher, "stops.json", 0, log)
	s.maps = NewMapService(
		repository.NewMemoryMapRepository(),
		repository.NewMemoryMarkerRepository(),
		NewVehiclesService(s.vehicles, log),
		s.publisher,
		0,
		log,
	)
	s.routes = NewRouteService(s.location, s.predictions, files, s.maps, s.cache, log)
	return s
}

func testRoute(stopID, routeID string) route.Route {
	return route.Route{
		Stop:  route.StopRef{ID: stopID, Title: "Stop " + stopID},
		Route: route.RouteRef{ID: routeID, Title: "Route " + routeID},
	}
}
