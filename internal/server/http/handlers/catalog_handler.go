package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/server/http/dto"
)

// CatalogHandler serves products and coupons.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler creates CatalogHandler instance.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Products handles GET /api/restaurants/:rid/products.
func (h *CatalogHandler) Products(c *gin.Context) {
	products, err := h.facade.Products(c.Request.Context(), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.Product, len(products))
	for i, p := range products {
		resp[i] = toProductDTO(p)
	}
	c.JSON(http.StatusOK, resp)
}

// CreateProduct handles POST /api/restaurants/:rid/products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.Product
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.facade.CreateProduct(c.Request.Context(), CurrentActor(c), fromProductDTO(c.Param("rid"), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductDTO(*p))
}

// UpdateProduct handles PUT /api/restaurants/:rid/products/:pid.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req dto.Product
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("pid")

	p, err := h.facade.UpdateProduct(c.Request.Context(), CurrentActor(c), fromProductDTO(c.Param("rid"), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductDTO(*p))
}

// Coupons handles GET /api/restaurants/:rid/coupons.
func (h *CatalogHandler) Coupons(c *gin.Context) {
	coupons, err := h.facade.Coupons(c.Request.Context(), CurrentActor(c), c.Param("rid"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.Coupon, len(coupons))
	for i, cp := range coupons {
		resp[i] = toCouponDTO(cp)
	}
	c.JSON(http.StatusOK, resp)
}

// CreateCoupon handles POST /api/restaurants/:rid/coupons.
func (h *CatalogHandler) CreateCoupon(c *gin.Context) {
	var req dto.Coupon
	if !bindJSON(c, &req) {
		return
	}

	cp, err := h.facade.CreateCoupon(c.Request.Context(), CurrentActor(c), fromCouponDTO(c.Param("rid"), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCouponDTO(*cp))
}

// UpdateCoupon handles PUT /api/restaurants/:rid/coupons/:code.
func (h *CatalogHandler) UpdateCoupon(c *gin.Context) {
	var req dto.Coupon
	if !bindJSON(c, &req) {
		return
	}
	req.Code = c.Param("code")

	cp, err := h.facade.UpdateCoupon(c.Request.Context(), CurrentActor(c), fromCouponDTO(c.Param("rid"), req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCouponDTO(*cp))
}

// DeleteCoupon handles DELETE /api/restaurants/:rid/coupons/:code.
func (h *CatalogHandler) DeleteCoupon(c *gin.Context) {
	if err := h.facade.DeleteCoupon(c.Request.Context(), CurrentActor(c), c.Param("rid"), c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewCoupon handles GET /api/restaurants/:rid/coupons/:code/preview.
func (h *CatalogHandler) PreviewCoupon(c *gin.Context) {
	subtotal, err := strconv.ParseFloat(c.Query("subtotal"), 64)
	if err != nil {
		badRequest(c, "subtotal must be a number")
		return
	}

	p, err := h.facade.PreviewCoupon(c.Request.Context(), c.Param("rid"), c.Param("code"), model.AmountFromFloat(subtotal))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CouponPreviewResponse{
		Code:     p.Code,
		Subtotal: p.Subtotal.Float(),
		Discount: p.Discount.Float(),
		Total:    (p.Subtotal - p.Discount).Float(),
	})
}
