package mailer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
)

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the configured provider; without a SendGrid key mail goes to the log.
func New(cfg config.MailConfig, log zerolog.Logger) Mailer {
	if strings.EqualFold(cfg.Provider, "sendgrid") && cfg.SendgridAPIKey != "" {
		return NewSendgrid(cfg.SendgridAPIKey, cfg.FromName, cfg.FromAddress)
	}
	return NewConsole(log)
}

type Console struct {
	log zerolog.Logger
}

func NewConsole(log zerolog.Logger) *Console {
	return &Console{log: log.With().Str("component", "mailer").Logger()}
}

func (c *Console) Send(_ context.Context, msg Message) error {
	c.log.Info().
		Str("to", msg.ToEmail).
		Str("subject", msg.Subject).
		Msg(msg.Text)
	return nil
}
