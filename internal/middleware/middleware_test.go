package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	tokens  map[string]models.Identity
	err     error
	touched []string
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (models.Identity, models.User, error) {
	if s.err != nil {
		return models.Identity{}, models.User{}, s.err
	}
	id, ok := s.tokens[token]
	if !ok {
		return models.Identity{}, models.User{}, errors.New("bad token")
	}
	return id, models.User{ID: id.UserID, Role: id.Role}, nil
}

func (s *stubAuth) Touch(_ context.Context, sessionID, _, _ string) {
	s.touched = append(s.touched, sessionID)
}

func newRouter(authn Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()))
	handlers := append([]gin.HandlerFunc{Auth(authn)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user": id.UserID})
	})
	r.GET("/me", handlers...)
	r.POST("/me", handlers...)
	return r
}

func do(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	authn := &stubAuth{tokens: map[string]models.Identity{"good": {UserID: "amy", SessionID: "s1", Role: models.UserRoleUser}}}
	r := newRouter(authn)

	w := do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"missing_token"}`, w.Body.String())

	w = do(r, http.MethodGet, "/me", "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", "good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"amy"}`, w.Body.String())
	assert.Equal(t, []string{"s1"}, authn.touched)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	// Query tokens are for EventSource only.
	w = do(r, http.MethodGet, "/me?access_token=good", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, "/me?access_token=good", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthSuspended(t *testing.T) {
	r := newRouter(&stubAuth{err: service.ErrUserSuspended})
	w := do(r, http.MethodGet, "/me", "any")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	authn := &stubAuth{tokens: map[string]models.Identity{
		"user":  {UserID: "amy", Role: models.UserRoleUser},
		"admin": {UserID: "root", Role: models.UserRoleAdmin},
		"super": {UserID: "god", Role: models.UserRoleSuperAdmin},
	}}
	r := newRouter(authn, RequireAdmin())

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/me", "user").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "admin").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "super").Code)
}

type memCounter struct {
	hits map[string]int64
	err  error
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.hits[key]++
	return m.hits[key], nil
}

func TestRateLimit(t *testing.T) {
	authn := &stubAuth{tokens: map[string]models.Identity{
		"amy": {UserID: "amy"},
		"ben": {UserID: "ben"},
	}}
	counter := &memCounter{hits: map[string]int64{}}
	r := newRouter(authn, RateLimit(counter, "ai", 2, time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "amy").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "amy").Code)
	w := do(r, http.MethodGet, "/me", "amy")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "ben").Code)

	counter.err = errors.New("redis down")
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", "amy").Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_server_error"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.upskill.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.upskill.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.upskill.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryAfterStreamStarted(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/stream", func(c *gin.Context) {
		c.String(http.StatusOK, "event: snapshot\n")
		panic("mid-stream")
	})

	w := do(r, http.MethodGet, "/stream", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "event: snapshot\n", w.Body.String())
}

func TestRequestIDSanitized(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "trace-42.a_b")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-42.a_b", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "bad id\r\ninjected")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotContains(t, w.Body.String(), "injected")
	assert.Len(t, w.Body.String(), 36)
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.upskill.test/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}
