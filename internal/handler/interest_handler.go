package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/auth"
	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/models"
)

// region --- DTOs ---

// ExpressInput is the body of POST /interests.
type ExpressInput struct {
	ReceiverID uint   `json:"receiver_id" binding:"required" example:"2"`
	Message    string `json:"message" binding:"max=500" example:"Hi, I liked your profile"`
}

// RespondInput is the body of POST /interests/:id/respond.
type RespondInput struct {
	Action interest.Action `json:"action" binding:"required" example:"accept"`
}

// StatsResponse holds the caller's lifetime counters.
type StatsResponse struct {
	Sent          int64 `json:"sent"`
	Received      int64 `json:"received"`
	MutualMatches int64 `json:"mutual_matches"`
	Points        int64 `json:"points"`
}

// endregion

// StatsReader reads lifetime counters.
type StatsReader interface {
	Totals(ctx context.Context, userID uint) (models.InterestStats, error)
	Points(ctx context.Context, userID uint) (int64, error)
}

type InterestHandler struct {
	engine *interest.Engine
	stats  StatsReader
}

func NewInterestHandler(engine *interest.Engine, stats StatsReader) *InterestHandler {
	return &InterestHandler{engine: engine, stats: stats}
}

// Express godoc
// @Summary      Express interest
// @Description  Sends an interest to another user. If that user already sent one to the caller, both become accepted and the contact is returned.
// @Tags         interests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ExpressInput true "Receiver and optional message"
// @Success      201  {object}  interest.Result "Pending interest"
// @Success      200  {object}  interest.Result "Mutual match"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  InterestErrorResponse
// @Failure      404  {object}  InterestErrorResponse
// @Failure      409  {object}  InterestErrorResponse
// @Router       /interests [post]
func (h *InterestHandler) Express(c *gin.Context) {
	var input ExpressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.engine.Express(c.Request.Context(), auth.UserID(c), input.ReceiverID, input.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Mutual {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// ListReceived godoc
// @Summary      List received interests
// @Description  Interests sent to the caller, newest first. Without a status filter, or with "pending", interests from users the caller also sent one to are left out.
// @Tags         interests
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "pending, accepted, rejected or withdrawn"
// @Success      200  {array}   models.Interest
// @Failure      400  {object}  InterestErrorResponse
// @Router       /interests/received [get]
func (h *InterestHandler) ListReceived(c *gin.Context) {
	items, err := h.engine.ListReceived(c.Request.Context(), auth.UserID(c), models.InterestStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// ListSent godoc
// @Summary      List sent interests
// @Description  Interests the caller sent that are not yet accepted, newest first.
// @Tags         interests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Interest
// @Router       /interests/sent [get]
func (h *InterestHandler) ListSent(c *gin.Context) {
	items, err := h.engine.ListSent(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// CheckMutual godoc
// @Summary      Interest status with a profile
// @Tags         interests
// @Produce      json
// @Security     BearerAuth
// @Param        profileId path int true "Profile ID"
// @Success      200  {object}  interest.MutualStatus
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  InterestErrorResponse
// @Router       /interests/check/{profileId} [get]
func (h *InterestHandler) CheckMutual(c *gin.Context) {
	profileID, err := strconv.ParseUint(c.Param("profileId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	status, err := h.engine.CheckMutual(c.Request.Context(), auth.UserID(c), uint(profileID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Respond godoc
// @Summary      Respond to an interest
// @Description  accept, reject or reconsider (receiver) or withdraw (sender).
// @Tags         interests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string       true "Interest ID"
// @Param        input body RespondInput true "Action"
// @Success      200  {object}  interest.Result
// @Failure      400  {object}  InterestErrorResponse
// @Failure      403  {object}  InterestErrorResponse
// @Failure      404  {object}  InterestErrorResponse
// @Failure      409  {object}  InterestErrorResponse
// @Router       /interests/{id}/respond [post]
func (h *InterestHandler) Respond(c *gin.Context) {
	var input RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.engine.RespondToReceived(c.Request.Context(), c.Param("id"), auth.UserID(c), input.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats godoc
// @Summary      Lifetime interest counters
// @Tags         interests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatsResponse
// @Router       /interests/stats [get]
func (h *InterestHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	totals, err := h.stats.Totals(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	points, err := h.stats.Points(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Sent:          totals.Sent,
		Received:      totals.Received,
		MutualMatches: totals.MutualMatches,
		Points:        points,
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
