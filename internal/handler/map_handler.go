package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mybus-app/service-transit/internal/application"
	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/platform/response"
)

// MapHandler handles HTTP requests for maps and their markers.
type MapHandler struct {
	maps     *application.MapService
	routes   *application.RouteService
	location *application.LocationService
	tracker  *application.VehicleTracker
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(
	maps *application.MapService,
	routes *application.RouteService,
	location *application.LocationService,
	tracker *application.VehicleTracker,
) *MapHandler {
	return &MapHandler{maps: maps, routes: routes, location: location, tracker: tracker}
}

// RegisterRoutes registers all map routes.
func (h *MapHandler) RegisterRoutes(r *gin.RouterGroup) {
	maps := r.Group("/api/v1/maps")
	{
		maps.POST("", h.CreateMap)
		maps.GET("/:id", h.GetMap)
		maps.GET("/:id/markers", h.ListMarkers)
		maps.POST("/:id/markers", h.CreateMarker)
		maps.DELETE("/:id/markers/:markerId", h.RemoveMarker)
		maps.POST("/:id/user", h.DisplayUser)
		maps.POST("/:id/routes/:routeId/station", h.DisplayStation)
		maps.POST("/:id/routes/:routeId/vehicles", h.DisplayVehicles)
		maps.GET("/:id/tracking", h.ListTracked)
		maps.POST("/:id/routes/:routeId/track", h.TrackRoute)
		maps.DELETE("/:id/routes/:routeId/track", h.UntrackRoute)
	}
}

// CreateMap handles POST /api/v1/maps. Without a body the map is centered on
// the current location.
func (h *MapHandler) CreateMap(c *gin.Context) {
	var req coordinateRequest
	err := c.ShouldBindJSON(&req)
	switch {
	case err == nil:
		result, err := h.maps.CreateMap(c.Request.Context(), req.coordinate())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, result)
		return
	case !errors.Is(err, io.EOF):
		response.BadRequest(c, err.Error())
		return
	}

	center, err := h.location.GetCurrentLocation(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.maps.CreateMap(c.Request.Context(), center)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetMap handles GET /api/v1/maps/:id.
func (h *MapHandler) GetMap(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	result, err := h.maps.GetMap(c.Request.Context(), mapID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMarkers handles GET /api/v1/maps/:id/markers.
func (h *MapHandler) ListMarkers(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	result, err := h.maps.ListMarkers(c.Request.Context(), mapID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateMarker handles POST /api/v1/maps/:id/markers.
func (h *MapHandler) CreateMarker(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.maps.CreateMarker(c.Request.Context(), mapID, req.coordinate(), req.Icon)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// RemoveMarker handles DELETE /api/v1/maps/:id/markers/:markerId.
func (h *MapHandler) RemoveMarker(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	markerID, err := uuid.Parse(c.Param("markerId"))
	if err != nil {
		response.BadRequest(c, "invalid marker ID")
		return
	}
	if err := h.maps.RemoveMarker(c.Request.Context(), mapID, markerID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "marker removed"})
}

// DisplayUser handles POST /api/v1/maps/:id/user.
func (h *MapHandler) DisplayUser(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.maps.DisplayUser(c.Request.Context(), mapID, req.coordinate(), req.Icon)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DisplayStation handles POST /api/v1/maps/:id/routes/:routeId/station.
func (h *MapHandler) DisplayStation(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	rt, err := h.routes.GetRoute(c.Request.Context(), c.Param("routeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.routes.GetStationLocation(c.Request.Context(), mapID, *rt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DisplayVehicles handles POST /api/v1/maps/:id/routes/:routeId/vehicles.
func (h *MapHandler) DisplayVehicles(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	icon, ok := bindIcon(c)
	if !ok {
		return
	}
	rt, err := h.routes.GetRoute(c.Request.Context(), c.Param("routeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.maps.DisplayVehicles(c.Request.Context(), mapID, *rt, icon)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListTracked handles GET /api/v1/maps/:id/tracking.
func (h *MapHandler) ListTracked(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	response.Success(c, h.tracker.Tracked(mapID))
}

// TrackRoute handles POST /api/v1/maps/:id/routes/:routeId/track.
func (h *MapHandler) TrackRoute(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	icon, ok := bindIcon(c)
	if !ok {
		return
	}
	rt, err := h.routes.GetRoute(c.Request.Context(), c.Param("routeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.tracker.Track(c.Request.Context(), mapID, *rt, icon)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UntrackRoute handles DELETE /api/v1/maps/:id/routes/:routeId/track. The
// path carries the composite id; tracking is keyed by the route half of it.
func (h *MapHandler) UntrackRoute(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	rt, err := h.routes.GetRoute(c.Request.Context(), c.Param("routeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.tracker.Untrack(mapID, rt.Route.ID) {
		response.Error(c, domain.NewNotFoundError("TrackedRoute", c.Param("routeId")))
		return
	}
	c.Status(http.StatusNoContent)
}

// bindIcon reads an optional {"icon": ...} body.
func bindIcon(c *gin.Context) (string, bool) {
	var req iconRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return "", false
	}
	return req.Icon, true
}
