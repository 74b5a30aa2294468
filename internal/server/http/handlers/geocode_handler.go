package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GeocodeHandler resolves map pins to addresses for checkout.
type GeocodeHandler struct {
	facade GeocodeFacade
}

// NewGeocodeHandler creates GeocodeHandler instance.
func NewGeocodeHandler(facade GeocodeFacade) *GeocodeHandler {
	return &GeocodeHandler{facade: facade}
}

// Reverse handles GET /api/geocode/reverse?lat=&lng=.
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		badRequest(c, "lat must be a number")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		badRequest(c, "lng must be a number")
		return
	}

	addr, err := h.facade.ReverseGeocode(c.Request.Context(), lat, lng)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromAddress(addr))
}
