package vehicle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mybus-app/service-transit/internal/domain/geo"
)

// Vehicle is a live vehicle position as reported by the vehicles endpoint.
type Vehicle struct {
	ID               string  `json:"id"`
	RouteID          string  `json:"routeId"`
	DirectionID      string  `json:"directionId,omitempty"`
	Predictable      bool    `json:"predictable"`
	SecsSinceReport  int     `json:"secsSinceReport"`
	Kph              float64 `json:"kph"`
	Heading          float64 `json:"heading"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	LeadingVehicleID string  `json:"leadingVehicleId,omitempty"`
}

// UnmarshalJSON accepts vehicle ids sent either as strings or as JSON numbers.
func (v *Vehicle) UnmarshalJSON(data []byte) error {
	type plain Vehicle
	aux := struct {
		*plain
		ID               json.RawMessage `json:"id"`
		LeadingVehicleID json.RawMessage `json:"leadingVehicleId"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := idString(aux.ID)
	if err != nil {
		return fmt.Errorf("vehicle id: %w", err)
	}
	leading, err := idString(aux.LeadingVehicleID)
	if err != nil {
		return fmt.Errorf("leading vehicle id: %w", err)
	}
	v.ID = id
	v.LeadingVehicleID = leading
	return nil
}

func idString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Position returns the vehicle's coordinate.
func (v Vehicle) Position() geo.Coordinate {
	return geo.Coordinate{Latitude: v.Lat, Longitude: v.Lon}
}

// FilterByRoute returns the vehicles serving routeID, preserving order.
func FilterByRoute(vehicles []Vehicle, routeID string) []Vehicle {
	out := make([]Vehicle, 0)
	for _, v := range vehicles {
		if v.RouteID == routeID {
			out = append(out, v)
		}
	}
	return out
}
