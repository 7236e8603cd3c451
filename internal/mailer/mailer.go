package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"alcyxob/liftlog/internal/config"

	"github.com/resend/resend-go/v2"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=../service/mailer_mock_test.go -package=service

// Message is one outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers email through an external provider.
type Sender interface {
	// Send queues msg for delivery and returns the provider's message id.
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendSender sends email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender for the configured Resend account.
func NewResendSender(cfg config.MailConfig) (*ResendSender, error) {
	if cfg.APIKey == "" || cfg.From == "" {
		return nil, errors.New("mail.api_key and mail.from are required")
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("mail.base_url: %w", err)
		}
		client.BaseURL = base
	}
	return &ResendSender{client: client, from: cfg.From}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		log.WithError(err).WithField("subject", msg.Subject).Error("resend send failed")
		return "", fmt.Errorf("resend send failed: %w", err)
	}

	log.WithFields(log.Fields{"messageID": sent.Id, "subject": msg.Subject}).Info("email sent")
	return sent.Id, nil
}
