package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

func (h HandlerSet) GetProfile(c *gin.Context) {
	view, err := h.svc.Profiles.Get(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	var req service.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Profiles.UpdateMe(c.Request.Context(), identity(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
