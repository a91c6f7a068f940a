package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.svc.Profiles.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type setRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

func (h HandlerSet) AdminSetRole(c *gin.Context) {
	var req setRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.Profiles.SetRole(c.Request.Context(), identity(c), c.Param("id"), req.Role); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required"`
}

func (h HandlerSet) AdminSetStatus(c *gin.Context) {
	var req setStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.Profiles.SetStatus(c.Request.Context(), identity(c), c.Param("id"), req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AdminListMedia(c *gin.Context) {
	limit, offset := pagination(c)
	assets, err := h.svc.Media.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": assets})
}
