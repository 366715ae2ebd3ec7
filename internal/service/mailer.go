package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
)

// Mailer sends notification emails.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewMailer creates an SMTP mailer. When no host is configured the mailer
// logs and drops every message instead of failing, so notification sending
// stays optional per environment.
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logger: logger}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		m.logger.Debug("mail disabled, dropping message",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
