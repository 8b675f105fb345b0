package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/auth"
	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/logging"
	"matchwell/backend/internal/models"
)

// ApprovalInput is the body of PUT /admin/profiles/:id/approval.
type ApprovalInput struct {
	Status models.ApprovalStatus `json:"status" binding:"required,oneof=pending approved rejected" example:"approved"`
}

// ApprovalWriter updates profile approval.
type ApprovalWriter interface {
	SetApprovalStatus(ctx context.Context, profileID uint, status models.ApprovalStatus) error
}

type AdminHandler struct {
	profiles ApprovalWriter
}

func NewAdminHandler(profiles ApprovalWriter) *AdminHandler {
	return &AdminHandler{profiles: profiles}
}

// SetApproval godoc
// @Summary      Set profile approval (Admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int           true "Profile ID"
// @Param        input body ApprovalInput true "New approval status"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/profiles/{id}/approval [put]
func (h *AdminHandler) SetApproval(c *gin.Context) {
	profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	var input ApprovalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	err = h.profiles.SetApprovalStatus(c.Request.Context(), uint(profileID), input.Status)
	if errors.Is(err, interest.ErrNoRecord) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Profile not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	logging.Info(c.Request.Context()).
		Uint("admin_id", auth.UserID(c)).
		Uint64("profile_id", profileID).
		Str("status", string(input.Status)).
		Msg("profile approval changed")
	c.Status(http.StatusNoContent)
}
