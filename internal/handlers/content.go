package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

// Content routes share one set of handlers; :kind picks the collection.

func (h HandlerSet) ListContent(c *gin.Context) {
	items, err := h.svc.Content.List(c.Request.Context(), c.Param("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) StreamContent(c *gin.Context) {
	kind := c.Param("kind")
	stream(h, c, func(ctx context.Context, emit func([]models.ContentItem) error) error {
		return h.svc.Content.Watch(ctx, h.live, kind, emit)
	})
}

func (h HandlerSet) GetContent(c *gin.Context) {
	item, err := h.svc.Content.Get(c.Request.Context(), c.Param("kind"), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h HandlerSet) CreateContent(c *gin.Context) {
	var req service.ContentInput
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Content.Create(c.Request.Context(), identity(c), c.Param("kind"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h HandlerSet) UpdateContent(c *gin.Context) {
	var req service.ContentUpdate
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Content.Update(c.Request.Context(), c.Param("kind"), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h HandlerSet) DeleteContent(c *gin.Context) {
	if err := h.svc.Content.Delete(c.Request.Context(), c.Param("kind"), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
