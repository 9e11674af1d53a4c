package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mybus-app/service-transit/internal/domain/geo"
)

// ErrNoFix is returned by a geolocator that has never received a position.
var ErrNoFix = errors.New("no position fix available")

// ErrInsufficientAccuracy is returned when high accuracy is requested and the
// latest fix is too coarse.
var ErrInsufficientAccuracy = errors.New("position fix is not accurate enough")

// highAccuracyMeters is the largest accuracy radius accepted in high-accuracy mode.
const highAccuracyMeters = 50.0

// Position is a fix as reported by the geolocation provider.
type Position struct {
	Coords    geo.Coordinate
	Accuracy  float64
	Timestamp time.Time
}

// PositionOptions are the query options passed to the provider.
type PositionOptions struct {
	Timeout      time.Duration
	HighAccuracy bool
}

// Geolocator answers current-position queries.
type Geolocator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}

// Readiness gates calls into the provider until the host signals it is initialized.
type Readiness interface {
	Ready(ctx context.Context) error
}

// StaticGeolocator always reports the same coordinate. It is ready immediately.
type StaticGeolocator struct {
	coord geo.Coordinate
}

func NewStaticGeolocator(coord geo.Coordinate) *StaticGeolocator {
	return &StaticGeolocator{coord: coord}
}

func (g *StaticGeolocator) CurrentPosition(ctx context.Context, _ PositionOptions) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position{Coords: g.coord, Timestamp: time.Now().UTC()}, nil
}

func (g *StaticGeolocator) Ready(context.Context) error { return nil }

// DeviceGeolocator holds the latest fix reported by the device. It becomes
// ready when the first fix arrives.
type DeviceGeolocator struct {
	mu     sync.RWMutex
	latest *Position
	ready  chan struct{}
	once   sync.Once
}

func NewDeviceGeolocator() *DeviceGeolocator {
	return &DeviceGeolocator{ready: make(chan struct{})}
}

// Report stores pos as the latest fix. Older fixes than the current one are ignored.
func (g *DeviceGeolocator) Report(pos Position) {
	g.mu.Lock()
	if g.latest == nil || !pos.Timestamp.Before(g.latest.Timestamp) {
		p := pos
		g.latest = &p
	}
	g.mu.Unlock()
	g.once.Do(func() { close(g.ready) })
}

// Ready blocks until the first fix has been reported or ctx is done.
func (g *DeviceGeolocator) Ready(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *DeviceGeolocator) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.latest == nil {
		return Position{}, ErrNoFix
	}
	if opts.HighAccuracy && (g.latest.Accuracy <= 0 || g.latest.Accuracy > highAccuracyMeters) {
		return Position{}, ErrInsufficientAccuracy
	}
	return *g.latest, nil
}
