package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mybus-app/service-transit/internal/application"
	"github.com/mybus-app/service-transit/internal/platform/response"
)

// LocationHandler exposes the current location of the user.
type LocationHandler struct {
	service *application.LocationService
}

func NewLocationHandler(service *application.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// RegisterRoutes registers the location route.
func (h *LocationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/location", h.GetLocation)
}

// GetLocation handles GET /api/v1/location.
func (h *LocationHandler) GetLocation(c *gin.Context) {
	loc, err := h.service.GetCurrentLocation(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, loc)
}
