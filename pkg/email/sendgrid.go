package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
)

// Message is a single outbound email.
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logg      *logger.Logger
}

var errAPIKeyRequired = errors.New("sendgrid api key is required")

// NewSendgridSender builds a Sender backed by the SendGrid v3 mail API.
func NewSendgridSender(cfg config.SendgridConfig, logg *logger.Logger) (Sender, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("sendgrid from email is required")
	}
	return &sendgridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logg:      logg,
	}, nil
}

func (s *sendgridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return errors.New("recipient email is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return errors.New("subject is required")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	plain := msg.PlainBody
	if plain == "" {
		plain = msg.Subject
	}
	html := msg.HTMLBody
	if html == "" {
		html = fmt.Sprintf("<p>%s</p>", plain)
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, plain, html)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
	}

	if s.logg != nil {
		logCtx := s.logg.WithField(ctx, "to", msg.ToEmail)
		s.logg.Info(logCtx, "email dispatched")
	}
	return nil
}
