// Package mailer delivers account verification and password reset emails.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/Skotchmaster/charity/pkg/config"
	"github.com/Skotchmaster/charity/pkg/logging"
)

const (
	verificationPath = "/api/users/verification"
	resetPath        = "/api/users/recovery/password"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(
		"Hello,\n\nthank you for joining us. Activate your account by opening the link below:\n\n{{.Link}}\n\nIf you did not register, ignore this message.\n"))
	resetTmpl = template.Must(template.New("reset").Parse(
		"Hello,\n\nwe received a request to reset your password. Set a new one here:\n\n{{.Link}}\n\nIf you did not ask for it, ignore this message.\n"))
)

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	From    string
	BaseURL string
	Sender  Sender
}

func NewSMTP(cfg config.SMTPConfig, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		From:    cfg.From,
		BaseURL: baseURL,
		Sender:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (m *SMTPMailer) SendVerification(ctx context.Context, email, token string) error {
	return m.send(ctx, email, "Activate your account", verificationTmpl, link(m.BaseURL, verificationPath, token))
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	return m.send(ctx, email, "Reset your password", resetTmpl, link(m.BaseURL, resetPath, token))
}

func (m *SMTPMailer) send(ctx context.Context, to, subject string, tmpl *template.Template, href string) error {
	l := logging.FromContext(ctx).With("svc", "mailer", "template", tmpl.Name())

	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct{ Link string }{href}); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}

	msg := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body.String())

	if err := m.Sender.DialAndSend(msg); err != nil {
		l.Error("mail_send_failed", "to", to, "error", err)
		return fmt.Errorf("send %s mail: %w", tmpl.Name(), err)
	}
	l.Info("mail_sent", "to", to)
	return nil
}

// LogMailer only logs the links. It is used when no SMTP host is configured.
type LogMailer struct {
	BaseURL string
}

func (m LogMailer) SendVerification(ctx context.Context, email, token string) error {
	logging.FromContext(ctx).Info("mail_skipped", "kind", "verification", "to", email, "link", link(m.BaseURL, verificationPath, token))
	return nil
}

func (m LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	logging.FromContext(ctx).Info("mail_skipped", "kind", "password_reset", "to", email, "link", link(m.BaseURL, resetPath, token))
	return nil
}

func link(base, path, token string) string {
	return strings.TrimRight(base, "/") + path + "?token=" + url.QueryEscape(token)
}
