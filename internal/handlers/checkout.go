package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

func (h HandlerSet) CreatePaymentIntent(c *gin.Context) {
	var req service.CheckoutInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Checkout.CreatePaymentIntent(c.Request.Context(), identity(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
