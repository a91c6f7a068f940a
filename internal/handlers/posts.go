package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

func (h HandlerSet) ListPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_before"})
			return
		}
		before = &parsed
	}

	posts, err := h.svc.Feed.List(c.Request.Context(), limit, before)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": posts})
}

func (h HandlerSet) StreamPosts(c *gin.Context) {
	stream(h, c, func(ctx context.Context, emit func([]models.Post) error) error {
		return h.svc.Feed.Watch(ctx, h.live, emit)
	})
}

type createPostRequest struct {
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

func (h HandlerSet) CreatePost(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.svc.Feed.CreatePost(c.Request.Context(), identity(c).UserID, req.Content, req.Category)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h HandlerSet) GetPost(c *gin.Context) {
	post, err := h.svc.Feed.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h HandlerSet) DeletePost(c *gin.Context) {
	if err := h.svc.Feed.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListComments(c *gin.Context) {
	comments, err := h.svc.Feed.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": comments})
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h HandlerSet) AddComment(c *gin.Context) {
	var req addCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.svc.Feed.AddComment(c.Request.Context(), identity(c).UserID, c.Param("id"), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h HandlerSet) LikePost(c *gin.Context) {
	if err := h.svc.Feed.Like(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) UnlikePost(c *gin.Context) {
	if err := h.svc.Feed.Unlike(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
