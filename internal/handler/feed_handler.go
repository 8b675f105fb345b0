package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/auth"
	"matchwell/backend/internal/ranking"
)

// FeedRanker produces a viewer's ranked candidates.
type FeedRanker interface {
	Rank(ctx context.Context, viewerID uint) (*ranking.Ranking, error)
}

type FeedHandler struct {
	feed FeedRanker
}

func NewFeedHandler(feed FeedRanker) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// GetFeed godoc
// @Summary      Ranked candidate feed
// @Description  Boosted profiles first, then profiles that already sent the caller an interest, then by match score.
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[ranking.Candidate]
// @Failure      500  {object}  ErrorResponse
// @Router       /feed [get]
func (h *FeedHandler) GetFeed(c *gin.Context) {
	page, limit := pageParams(c)

	result, err := h.feed.Rank(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Page(result.Candidates, page, limit))
}
