package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

func (h HandlerSet) ListProgress(c *gin.Context) {
	items, err := h.svc.Progress.List(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) StreamProgress(c *gin.Context) {
	userID := identity(c).UserID
	stream(h, c, func(ctx context.Context, emit func([]models.UserCourseProgress) error) error {
		return h.svc.Progress.Watch(ctx, h.live, userID, emit)
	})
}

func (h HandlerSet) GetProgress(c *gin.Context) {
	record, err := h.svc.Progress.Get(c.Request.Context(), identity(c).UserID, c.Param("courseId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type enrollRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

func (h HandlerSet) Enroll(c *gin.Context) {
	var req enrollRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	record, err := h.svc.Progress.Enroll(c.Request.Context(), identity(c).UserID, c.Param("courseId"), req.PaymentIntentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h HandlerSet) RestartCourse(c *gin.Context) {
	record, err := h.svc.Progress.Restart(c.Request.Context(), identity(c).UserID, c.Param("courseId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h HandlerSet) CompleteLecture(c *gin.Context) {
	record, err := h.svc.Progress.MarkLectureComplete(c.Request.Context(), identity(c).UserID, c.Param("courseId"), c.Param("lectureId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h HandlerSet) ListAchievements(c *gin.Context) {
	items, err := h.svc.Progress.Achievements(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
