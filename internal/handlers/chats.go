package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

func (h HandlerSet) ListChats(c *gin.Context) {
	chats, err := h.svc.Messaging.ListChats(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": chats})
}

func (h HandlerSet) ChatWith(c *gin.Context) {
	chatID, err := h.svc.Messaging.ChatWith(c.Request.Context(), identity(c).UserID, c.Param("peerId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chatId": chatID})
}

func (h HandlerSet) ListMessages(c *gin.Context) {
	messages, err := h.svc.Messaging.History(c.Request.Context(), c.Param("chatId"), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": messages})
}

type sendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h HandlerSet) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.svc.Messaging.Send(c.Request.Context(), c.Param("chatId"), identity(c).UserID, req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h HandlerSet) StreamMessages(c *gin.Context) {
	chatID, viewerID := c.Param("chatId"), identity(c).UserID
	stream(h, c, func(ctx context.Context, emit func([]models.Message) error) error {
		return h.svc.Messaging.Watch(ctx, h.live, chatID, viewerID, emit)
	})
}
