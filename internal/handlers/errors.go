package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/ai"
	"github.com/Fazeel2019/Upskill-sub000/internal/payment"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
	"github.com/Fazeel2019/Upskill-sub000/internal/security"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// First match wins, so specific errors come before the ones they wrap.
var errorTable = []errorMapping{
	{repository.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{repository.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{repository.ErrConnectionNotFound, http.StatusNotFound, "connection_not_found"},
	{repository.ErrCourseNotFound, http.StatusNotFound, "course_not_found"},
	{repository.ErrProgressNotFound, http.StatusNotFound, "not_enrolled"},
	{repository.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found"},
	{repository.ErrChatNotFound, http.StatusNotFound, "chat_not_found"},
	{repository.ErrContentNotFound, http.StatusNotFound, "content_not_found"},
	{repository.ErrPostNotFound, http.StatusNotFound, "post_not_found"},
	{repository.ErrPaymentNotFound, http.StatusNotFound, "payment_not_found"},
	{service.ErrLectureNotFound, http.StatusNotFound, "lecture_not_found"},
	{service.ErrNotEnrolled, http.StatusNotFound, "not_enrolled"},

	{repository.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{repository.ErrConnectionExists, http.StatusConflict, "connection_exists"},
	{service.ErrAlreadyConnected, http.StatusConflict, "already_connected"},
	{service.ErrIncomingRequestPending, http.StatusConflict, "incoming_request_pending"},
	{service.ErrNoPendingRequest, http.StatusConflict, "no_pending_request"},
	{service.ErrNotConnected, http.StatusConflict, "not_connected"},

	{service.ErrSelfConnection, http.StatusBadRequest, "self_connection"},
	{service.ErrAmountMismatch, http.StatusBadRequest, "amount_mismatch"},
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{ai.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrSessionRevoked, http.StatusUnauthorized, "session_not_found"},
	{security.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{service.ErrUserSuspended, http.StatusForbidden, "user_inactive"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},

	{service.ErrPaymentRequired, http.StatusPaymentRequired, "payment_required"},
	{service.ErrPaymentGateway, http.StatusBadGateway, "payment_gateway_error"},
	{ai.ErrModelOutput, http.StatusBadGateway, "ai_output_invalid"},
	{ai.ErrNotConfigured, http.StatusServiceUnavailable, "ai_unavailable"},
	{payment.ErrNotConfigured, http.StatusServiceUnavailable, "payments_unavailable"},
}

func (h HandlerSet) respondError(c *gin.Context, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			body := gin.H{"error": m.code}
			if m.status < http.StatusInternalServerError {
				body["message"] = err.Error()
			}
			c.AbortWithStatusJSON(m.status, body)
			return
		}
	}

	var upstream *ai.HTTPError
	if errors.As(err, &upstream) {
		h.log.Error().Err(err).Int("upstream_status", upstream.StatusCode).Msg("ai request failed")
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "ai_upstream_error"})
		return
	}

	h.log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
}

// bindJSON decodes the body and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return false
	}
	return true
}
