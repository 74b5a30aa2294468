package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/server/http/dto"
	"github.com/polkiloo/dispatch/internal/usecase"
)

// OrderHandler serves checkout and lifecycle endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler creates OrderHandler instance.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Quote handles POST /api/restaurants/:rid/quote.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	q, err := h.facade.Quote(c.Request.Context(), c.Param("rid"), usecase.QuoteInput{
		Type:    model.OrderType(req.OrderType),
		Address: toAddress(req.Address),
		Items:   toLines(req.Items),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(q))
}

// Place handles POST /api/restaurants/:rid/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), CurrentActor(c), c.Param("rid"), usecase.PlaceOrderInput{
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Address:       toAddress(req.Address),
		Type:          model.OrderType(req.OrderType),
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Items:         toLines(req.Items),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order, nil))
}

// Get handles GET /api/restaurants/:rid/orders/:oid.
func (h *OrderHandler) Get(c *gin.Context) {
	details, err := h.facade.Order(c.Request.Context(), CurrentActor(c), c.Param("rid"), c.Param("oid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDetailsResponse(details))
}

// Transition handles POST /api/restaurants/:rid/orders/:oid/transitions.
func (h *OrderHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if !bindJSON(c, &req) {
		return
	}

	details, err := h.facade.Transition(c.Request.Context(), CurrentActor(c), c.Param("rid"), c.Param("oid"), usecase.TransitionInput{
		Action:   req.Action,
		DriverID: req.DriverID,
		Version:  req.Version,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDetailsResponse(details))
}
