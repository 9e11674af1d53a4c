package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mybus-app/service-transit/internal/application"
	"github.com/mybus-app/service-transit/internal/domain/route"
	"github.com/mybus-app/service-transit/internal/platform/response"
)

// RouteHandler handles HTTP requests for predictions and vehicles.
type RouteHandler struct {
	routes   *application.RouteService
	vehicles *application.VehiclesService
}

func NewRouteHandler(routes *application.RouteService, vehicles *application.VehiclesService) *RouteHandler {
	return &RouteHandler{routes: routes, vehicles: vehicles}
}

// RegisterRoutes registers route and vehicle routes.
func (h *RouteHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/routes", h.ListRoutes)
	r.GET("/api/v1/routes/:id", h.GetRoute)
	r.GET("/api/v1/vehicles", h.ListVehicles)
}

// ListRoutes handles GET /api/v1/routes. Without lat/lon the current location is used.
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	coord, ok, err := queryCoordinate(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var routes []route.Route
	if ok {
		routes, err = h.routes.GetRoutesNear(c.Request.Context(), coord)
	} else {
		routes, err = h.routes.GetRoutes(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, routes)
}

// GetRoute handles GET /api/v1/routes/:id, where id is stop id + route id.
func (h *RouteHandler) GetRoute(c *gin.Context) {
	result, err := h.routes.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListVehicles handles GET /api/v1/vehicles.
func (h *RouteHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicles.GetVehicles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, vehicles)
}
