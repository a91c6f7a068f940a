package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
)

func TestNewFallsBackToConsole(t *testing.T) {
	m := New(config.MailConfig{Provider: "sendgrid"}, zerolog.Nop())
	_, ok := m.(*Console)
	assert.True(t, ok)

	m = New(config.MailConfig{Provider: "sendgrid", SendgridAPIKey: "key"}, zerolog.Nop())
	_, ok = m.(*Sendgrid)
	assert.True(t, ok)
}

func TestSendgridSend(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg := NewSendgrid("key", "Upskill", "no-reply@upskill.local")
	sg.host = srv.URL

	err := sg.Send(context.Background(), Message{ToName: "Ada", ToEmail: "ada@example.com", Subject: "Hi", Text: "hello"})
	require.NoError(t, err)

	personalizations := body["personalizations"].([]any)
	first := personalizations[0].(map[string]any)
	assert.Equal(t, "[Upskill] Hi", first["subject"])
}

func TestSendgridErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sg := NewSendgrid("bad", "Upskill", "no-reply@upskill.local")
	sg.host = srv.URL

	err := sg.Send(context.Background(), Message{ToEmail: "ada@example.com", Subject: "Hi", Text: "hello"})
	assert.Error(t, err)
}
