package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

// ListConnections returns the caller's map of peer id to connection state.
func (h HandlerSet) ListConnections(c *gin.Context) {
	conns, err := h.svc.Connections.Connections(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h HandlerSet) StreamConnections(c *gin.Context) {
	userID := identity(c).UserID
	stream(h, c, func(ctx context.Context, emit func(map[string]models.ConnectionState) error) error {
		return h.svc.Connections.Watch(ctx, h.live, userID, emit)
	})
}

func (h HandlerSet) SearchUsers(c *gin.Context) {
	results, err := h.svc.Connections.Search(c.Request.Context(), identity(c).UserID, c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results})
}

func (h HandlerSet) SendConnectionRequest(c *gin.Context) {
	state, err := h.svc.Connections.SendRequest(c.Request.Context(), identity(c).UserID, c.Param("peerId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h HandlerSet) AcceptConnection(c *gin.Context) {
	h.connectionAction(c, h.svc.Connections.Accept)
}

func (h HandlerSet) DeclineConnection(c *gin.Context) {
	h.connectionAction(c, h.svc.Connections.Decline)
}

func (h HandlerSet) CancelConnection(c *gin.Context) {
	h.connectionAction(c, h.svc.Connections.Cancel)
}

func (h HandlerSet) RemoveConnection(c *gin.Context) {
	h.connectionAction(c, h.svc.Connections.Remove)
}

func (h HandlerSet) connectionAction(c *gin.Context, action func(ctx context.Context, ownerID, peerID string) error) {
	if err := action(c.Request.Context(), identity(c).UserID, c.Param("peerId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
