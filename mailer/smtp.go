package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
}

func NewSMTPSender() (*SMTPSender, error) {
	s := &SMTPSender{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
	}
	if s.host == "" || s.port == "" || s.username == "" || s.password == "" {
		return nil, fmt.Errorf("SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASS must be set")
	}
	return s, nil
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	// Header values must never carry a line break: a CRLF here would let the
	// caller append arbitrary headers to the message.
	to = stripCRLF(to)
	subject = stripCRLF(subject)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := []byte(
		"From: " + s.username + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, s.username, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func stripCRLF(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
