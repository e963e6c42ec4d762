package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"myblog/internal/config"
	"myblog/web"

	"github.com/rs/zerolog"
)

// Mailer delivers one message synchronously.
type Mailer interface {
	Send(to []string, subject, body string) error
}

type MailService struct {
	cfg      config.MailConfig
	log      zerolog.Logger
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg config.MailConfig, log zerolog.Logger) *MailService {
	log = log.With().Str("component", "mail").Logger()
	if !cfg.Enabled() {
		log.Warn().Msg("MailService disabled: missing SMTP settings")
	}
	return &MailService{cfg: cfg, log: log, sendMail: smtp.SendMail}
}

// Send is a no-op when SMTP is not configured.
func (s *MailService) Send(to []string, subject, body string) error {
	if !s.cfg.Enabled() {
		return nil
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.cfg.From, subject, mime, body))

	if err := s.sendMail(addr, auth, s.cfg.From, to, msg); err != nil {
		s.log.Error().Err(err).Strs("to", to).Msg("Failed to send email")
		return fmt.Errorf("failed to send email to %v: %w", to, err)
	}
	s.log.Info().Strs("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

// RenderEmail executes one of the embedded email templates.
func RenderEmail(name string, data any) (string, error) {
	t, err := template.ParseFS(web.FS, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
