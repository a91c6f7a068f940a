package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
	"github.com/Fazeel2019/Upskill-sub000/internal/handlers"
)

func TestServerRoutesAndMiddleware(t *testing.T) {
	cfg := &config.AppConfig{
		Environment:      "test",
		HTTP:             config.HTTPConfig{Host: "127.0.0.1", Port: 8080},
		AllowCORSOrigins: []string{"http://localhost:3000"},
	}
	hs := handlers.NewHandlerSet(zerolog.Nop(), cfg, handlers.Services{}, nil, nil, nil)
	srv := NewHTTPServer(cfg, zerolog.Nop(), hs)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
