package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/ai"
)

func (h HandlerSet) Categorize(c *gin.Context) {
	var req ai.CategorizeInput
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.svc.Recommendations.Categorize(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h HandlerSet) Recommend(c *gin.Context) {
	var req ai.RecommendInput
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.svc.Recommendations.Recommend(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// RecommendForMe builds the input from the caller's profile and the catalog.
func (h HandlerSet) RecommendForMe(c *gin.Context) {
	out, err := h.svc.Recommendations.ForUser(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
