package stop

import "github.com/mybus-app/service-transit/internal/domain/geo"

// Location is a stop position as stored in the static stop table.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate converts the table entry to a geo.Coordinate.
func (l Location) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: l.Lat, Longitude: l.Lon}
}

// Table maps stop ids to their positions.
type Table map[string]Location

// Lookup returns the position of stopID.
func (t Table) Lookup(stopID string) (geo.Coordinate, bool) {
	loc, ok := t[stopID]
	if !ok {
		return geo.Coordinate{}, false
	}
	return loc.Coordinate(), true
}
