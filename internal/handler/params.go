package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mybus-app/service-transit/internal/domain/geo"
)

// coordinateRequest is the JSON body of endpoints that take a position.
type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Icon      string   `json:"icon"`
}

func (r coordinateRequest) coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// iconRequest is the optional JSON body of vehicle endpoints.
type iconRequest struct {
	Icon string `json:"icon"`
}

// queryCoordinate parses ?lat=&lon=. ok is false when neither is present.
func queryCoordinate(c *gin.Context) (coord geo.Coordinate, ok bool, err error) {
	latStr, hasLat := c.GetQuery("lat")
	lonStr, hasLon := c.GetQuery("lon")
	if !hasLat && !hasLon {
		return geo.Coordinate{}, false, nil
	}
	if !hasLat || !hasLon {
		return geo.Coordinate{}, false, fmt.Errorf("lat and lon must be given together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("invalid lat: %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("invalid lon: %q", lonStr)
	}
	coord = geo.Coordinate{Latitude: lat, Longitude: lon}
	if err := coord.Validate(); err != nil {
		return geo.Coordinate{}, false, err
	}
	return coord, true, nil
}

func mapIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}
