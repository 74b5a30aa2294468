package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/server/http/dto"
)

// SettingsHandler serves restaurant invoice and delivery settings.
type SettingsHandler struct {
	facade SettingsFacade
}

// NewSettingsHandler creates SettingsHandler instance.
func NewSettingsHandler(facade SettingsFacade) *SettingsHandler {
	return &SettingsHandler{facade: facade}
}

// Invoice handles GET /api/restaurants/:rid/settings/invoice.
func (h *SettingsHandler) Invoice(c *gin.Context) {
	s, err := h.facade.Settings(c.Request.Context(), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceDTO(s.Invoice))
}

// Delivery handles GET /api/restaurants/:rid/settings/delivery.
func (h *SettingsHandler) Delivery(c *gin.Context) {
	s, err := h.facade.Settings(c.Request.Context(), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryDTO(s.Delivery))
}

// SaveInvoice handles PUT /api/restaurants/:rid/settings/invoice.
func (h *SettingsHandler) SaveInvoice(c *gin.Context) {
	var req dto.InvoiceSettings
	if !bindJSON(c, &req) {
		return
	}

	saved, err := h.facade.SaveInvoiceSettings(c.Request.Context(), CurrentActor(c), fromInvoiceDTO(c.Param("rid"), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceDTO(*saved))
}

// SaveDelivery handles PUT /api/restaurants/:rid/settings/delivery.
func (h *SettingsHandler) SaveDelivery(c *gin.Context) {
	var req dto.DeliverySettings
	if !bindJSON(c, &req) {
		return
	}

	saved, err := h.facade.SaveDeliverySettings(c.Request.Context(), CurrentActor(c), fromDeliveryDTO(c.Param("rid"), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryDTO(*saved))
}
