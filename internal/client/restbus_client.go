package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/route"
	"github.com/mybus-app/service-transit/internal/domain/vehicle"
)

// RestBusClient talks to a restbus-style predictions API.
type RestBusClient struct {
	baseURL    string
	agency     string
	httpClient *http.Client
}

// NewRestBusClient creates a client for baseURL. agency selects the vehicles feed.
func NewRestBusClient(baseURL, agency string, timeout time.Duration) *RestBusClient {
	return &RestBusClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		agency:     agency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predictions returns the route/stop predictions near loc.
func (c *RestBusClient) Predictions(ctx context.Context, loc geo.Coordinate) ([]route.Route, error) {
	url := fmt.Sprintf("%s/locations/%s,%s/predictions",
		c.baseURL, formatDegrees(loc.Latitude), formatDegrees(loc.Longitude))

	routes := make([]route.Route, 0)
	if err := getJSON(ctx, c.httpClient, url, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Vehicles returns every vehicle the agency currently reports.
func (c *RestBusClient) Vehicles(ctx context.Context) ([]vehicle.Vehicle, error) {
	url := fmt.Sprintf("%s/agencies/%s/vehicles", c.baseURL, c.agency)

	vehicles := make([]vehicle.Vehicle, 0)
	if err := getJSON(ctx, c.httpClient, url, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func formatDegrees(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
