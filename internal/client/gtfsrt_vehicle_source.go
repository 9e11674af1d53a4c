package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/mybus-app/service-transit/internal/domain/vehicle"
)

// GtfsRtVehicleSource reads vehicles from a GTFS-Realtime VehiclePositions feed.
type GtfsRtVehicleSource struct {
	url        string
	httpClient *http.Client
}

func NewGtfsRtVehicleSource(url string, timeout time.Duration) *GtfsRtVehicleSource {
	return &GtfsRtVehicleSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Vehicles fetches and decodes the feed. Entities without a vehicle id or a
// position are skipped.
func (s *GtfsRtVehicleSource) Vehicles(ctx context.Context) ([]vehicle.Vehicle, error) {
	body, err := get(ctx, s.httpClient, s.url)
	if err != nil {
		return nil, err
	}

	var feed gtfs.FeedMessage
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode gtfs-rt feed from %s: %w", s.url, err)
	}

	var now uint64
	if feed.GetHeader() != nil {
		now = feed.GetHeader().GetTimestamp()
	}

	vehicles := make([]vehicle.Vehicle, 0, len(feed.GetEntity()))
	for _, ent := range feed.GetEntity() {
		vp := ent.GetVehicle()
		if vp == nil || vp.GetPosition() == nil {
			continue
		}
		id := vp.GetVehicle().GetId()
		if id == "" {
			continue
		}
		pos := vp.GetPosition()
		v := vehicle.Vehicle{
			ID:          id,
			RouteID:     vp.GetTrip().GetRouteId(),
			Predictable: vp.GetTrip() != nil,
			Lat:         float64(pos.GetLatitude()),
			Lon:         float64(pos.GetLongitude()),
			Heading:     float64(pos.GetBearing()),
			Kph:         float64(pos.GetSpeed()) * 3.6,
		}
		if vp.GetTrip() != nil && vp.GetTrip().DirectionId != nil {
			v.DirectionID = fmt.Sprintf("%d", vp.GetTrip().GetDirectionId())
		}
		if ts := vp.GetTimestamp(); ts > 0 && now >= ts {
			v.SecsSinceReport = int(now - ts)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}
