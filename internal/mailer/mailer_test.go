package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func TestSMTPMailer_SendVerification(t *testing.T) {
	sender := &captureSender{}
	m := &SMTPMailer{From: "noreply@charity.test", BaseURL: "http://localhost:8080/", Sender: sender}

	require.NoError(t, m.SendVerification(context.Background(), "anna@example.com", "abc-123"))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"anna@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Activate your account"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "http://localhost:8080/api/users/verification?token=abc-123")
}

func TestSMTPMailer_SendPasswordResetFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	m := &SMTPMailer{From: "noreply@charity.test", BaseURL: "http://localhost:8080", Sender: sender}

	err := m.SendPasswordReset(context.Background(), "anna@example.com", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, sender.sent, 1)
}

func TestLink(t *testing.T) {
	assert.Equal(t, "https://x.org/api/users/recovery/password?token=a+b", link("https://x.org/", resetPath, "a b"))
}

func TestLogMailer(t *testing.T) {
	m := LogMailer{BaseURL: "http://localhost"}
	assert.NoError(t, m.SendVerification(context.Background(), "a@b.c", "t"))
	assert.NoError(t, m.SendPasswordReset(context.Background(), "a@b.c", "t"))
}
