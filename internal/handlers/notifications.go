package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

func (h HandlerSet) ListNotifications(c *gin.Context) {
	list, err := h.svc.Notifications.List(c.Request.Context(), identity(c).UserID, c.Query("unread") == "true")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h HandlerSet) StreamNotifications(c *gin.Context) {
	userID, unreadOnly := identity(c).UserID, c.Query("unread") == "true"
	stream(h, c, func(ctx context.Context, emit func(service.NotificationList) error) error {
		return h.svc.Notifications.Watch(ctx, h.live, userID, unreadOnly, emit)
	})
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) MarkAllNotificationsRead(c *gin.Context) {
	changed, err := h.svc.Notifications.MarkAllRead(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": changed})
}
