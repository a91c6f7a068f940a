package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

func (h HandlerSet) ListCourses(c *gin.Context) {
	courses, err := h.svc.Courses.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": courses})
}

func (h HandlerSet) StreamCourses(c *gin.Context) {
	category := c.Query("category")
	stream(h, c, func(ctx context.Context, emit func([]models.Course) error) error {
		return h.svc.Courses.Watch(ctx, h.live, category, emit)
	})
}

func (h HandlerSet) GetCourse(c *gin.Context) {
	course, err := h.svc.Courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h HandlerSet) CreateCourse(c *gin.Context) {
	var req service.CourseInput
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.svc.Courses.Create(c.Request.Context(), identity(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h HandlerSet) UpdateCourse(c *gin.Context) {
	var req service.CourseUpdate
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.svc.Courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h HandlerSet) DeleteCourse(c *gin.Context) {
	if err := h.svc.Courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
