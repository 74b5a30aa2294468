package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/server/http/dto"
)

// StaffHandler lets a super admin manage roles.
type StaffHandler struct {
	facade StaffFacade
}

// NewStaffHandler creates StaffHandler instance.
func NewStaffHandler(facade StaffFacade) *StaffHandler {
	return &StaffHandler{facade: facade}
}

// UpdateRole handles PUT /api/admin/users/:uid/role.
func (h *StaffHandler) UpdateRole(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		badRequest(c, "user id must be an integer")
		return
	}
	var req dto.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.facade.UpdateRole(c.Request.Context(), CurrentActor(c), userID, model.Role(req.Role), req.RestaurantID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
