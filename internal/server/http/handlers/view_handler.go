package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/server/http/dto"
)

// ViewHandler serves the role-scoped read models.
type ViewHandler struct {
	facade ViewFacade
}

// NewViewHandler creates ViewHandler instance.
func NewViewHandler(facade ViewFacade) *ViewHandler {
	return &ViewHandler{facade: facade}
}

// AdminBoard handles GET /api/restaurants/:rid/board.
func (h *ViewHandler) AdminBoard(c *gin.Context) {
	board, err := h.facade.AdminBoard(c.Request.Context(), CurrentActor(c), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminBoardResponse(board))
}

// History handles GET /api/restaurants/:rid/history.
func (h *ViewHandler) History(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	orders, err := h.facade.OrderHistory(c.Request.Context(), CurrentActor(c), c.Param("rid"), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// DriverBoard handles GET /api/restaurants/:rid/driver/board.
func (h *ViewHandler) DriverBoard(c *gin.Context) {
	board, err := h.facade.DriverBoard(c.Request.Context(), CurrentActor(c), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverBoardResponse(board))
}

// CustomerHistory handles GET /api/restaurants/:rid/my/orders.
func (h *ViewHandler) CustomerHistory(c *gin.Context) {
	history, err := h.facade.CustomerHistory(c.Request.Context(), CurrentActor(c), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerHistoryResponse(history))
}

// Dashboard handles GET /api/restaurants/:rid/metrics.
func (h *ViewHandler) Dashboard(c *gin.Context) {
	d, err := h.facade.Dashboard(c.Request.Context(), CurrentActor(c), c.Param("rid"), c.DefaultQuery("range", "today"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDashboardResponse(d))
}

// PopularItems handles GET /api/restaurants/:rid/popular-items.
func (h *ViewHandler) PopularItems(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	items, err := h.facade.PopularItems(c.Request.Context(), CurrentActor(c), c.Param("rid"), c.DefaultQuery("range", "today"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPopularItems(items))
}

// Drivers handles GET /api/restaurants/:rid/drivers.
func (h *ViewHandler) Drivers(c *gin.Context) {
	drivers, err := h.facade.Drivers(c.Request.Context(), CurrentActor(c), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.DriverResponse, len(drivers))
	for i, d := range drivers {
		resp[i] = dto.DriverResponse{ID: d.ID, Email: d.Email, DisplayName: d.DisplayName}
	}
	c.JSON(http.StatusOK, resp)
}

func parseFilter(c *gin.Context) (model.OrderFilter, bool) {
	var filter model.OrderFilter
	if raw := c.Query("status"); raw != "" {
		status := model.OrderStatus(raw)
		filter.Status = &status
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, p.name+" must be an RFC3339 timestamp")
			return filter, false
		}
		*p.dst = &t
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return filter, false
		}
		filter.Limit = n
	}
	return filter, true
}
