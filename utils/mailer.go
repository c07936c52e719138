package utils

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
	"uptask/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a message and returns its delivery id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	if m.cfg.Host == "" {
		return "", fmt.Errorf("email configuration not initialized")
	}

	deliveryID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.cfg.Host)

	gm := gomail.NewMessage()
	gm.SetHeader("Message-ID", deliveryID)
	gm.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		gm.SetBody("text/plain", msg.Text)
		gm.AddAlternative("text/html", msg.HTML)
	} else {
		gm.SetBody("text/html", msg.HTML)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- m.dialer.DialAndSend(gm)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return "", fmt.Errorf("error sending email: %w", err)
		}
		return deliveryID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
