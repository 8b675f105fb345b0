package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/auth"
	"matchwell/backend/internal/hub"
	"matchwell/backend/internal/logging"
	"matchwell/backend/internal/notify"
)

const streamHeartbeat = 25 * time.Second

type NotificationHandler struct {
	repo notify.Repository
	hub  *hub.Hub
}

// NewNotificationHandler creates a NotificationHandler. repo may be nil when redis is not
// configured; List then returns an empty list.
func NewNotificationHandler(repo notify.Repository, h *hub.Hub) *NotificationHandler {
	return &NotificationHandler{repo: repo, hub: h}
}

// List godoc
// @Summary      Recent notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max items" default(50)
// @Success      200  {array}   notify.Notification
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusOK, []notify.Notification{})
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	items, err := h.repo.List(c.Request.Context(), auth.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// Stream godoc
// @Summary      Notification stream
// @Description  Server-sent events, one "notification" event per new notification.
// @Tags         notifications
// @Produce      text/event-stream
// @Security     BearerAuth
// @Router       /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := auth.UserID(c)
	client := make(hub.Client, 16)
	h.hub.Subscribe(userID, client)
	defer h.hub.Unsubscribe(userID, client)

	logging.Debug(c.Request.Context()).Uint("user_id", userID).Msg("notification stream opened")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(streamHeartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("notification", string(msg))
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
