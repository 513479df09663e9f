package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/config"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Kind names a notification the platform sends.
type Kind string

const (
	KindRegistration      Kind = "registration"
	KindEventRegistration Kind = "event_registration"
)

// Recipient is the user a notification is addressed to.
type Recipient struct {
	Name  string
	Email string
}

// EventSummary carries the event fields quoted in confirmation emails.
type EventSummary struct {
	ID    string
	Title string
	Date  string
	Time  string
}

// Payload holds kind-specific template data.
type Payload struct {
	Event *EventSummary
}

// Message is a rendered email ready for a Transport.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport delivers rendered messages.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Sender is the notification collaborator used by the domain services.
type Sender interface {
	Send(ctx context.Context, kind Kind, to Recipient, payload Payload) bool
}

// Service renders notifications and hands them to the configured transport.
// Delivery failures are logged and reported as false; they never surface as errors.
type Service struct {
	transport Transport
	from      string
	timeout   time.Duration
	templates *template.Template
	logger    zerolog.Logger
}

type templateData struct {
	Recipient Recipient
	Event     EventSummary
}

// NewService creates a new email service instance
func NewService(cfg config.EmailConfig, transport Transport, logger zerolog.Logger) (*Service, error) {
	if transport == nil {
		return nil, fmt.Errorf("email transport is required")
	}
	if err := validateEmailAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender email in config: %w", err)
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Service{
		transport: transport,
		from:      cfg.From,
		timeout:   timeout,
		templates: templates,
		logger:    logger.With().Str("component", "email").Str("transport", transport.Name()).Logger(),
	}, nil
}

// Send renders and delivers one notification. It reports whether delivery succeeded.
func (s *Service) Send(ctx context.Context, kind Kind, to Recipient, payload Payload) bool {
	ok := s.send(ctx, kind, to, payload)
	status := "sent"
	if !ok {
		status = "failed"
	}
	metrics.NotificationsTotal.WithLabelValues(string(kind), status).Inc()
	return ok
}

func (s *Service) send(ctx context.Context, kind Kind, to Recipient, payload Payload) bool {
	logger := s.logger.With().Str("kind", string(kind)).Str("to", to.Email).Logger()

	if err := validateEmailAddress(to.Email); err != nil {
		logger.Error().Err(err).Msg("invalid recipient email")
		return false
	}

	msg, err := s.render(kind, to, payload)
	if err != nil {
		logger.Error().Err(err).Msg("failed to render email")
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger.Info().Msg("sending email")
	if err := s.transport.Deliver(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("failed to send email")
		return false
	}
	logger.Info().Msg("email sent successfully")
	return true
}

func (s *Service) render(kind Kind, to Recipient, payload Payload) (Message, error) {
	data := templateData{Recipient: to}
	var subject string

	switch kind {
	case KindRegistration:
		subject = "Welcome to Event Management Platform"
	case KindEventRegistration:
		if payload.Event == nil {
			return Message{}, fmt.Errorf("%s email requires event details", kind)
		}
		data.Event = *payload.Event
		subject = "Registration Confirmation: " + payload.Event.Title
	default:
		return Message{}, fmt.Errorf("unknown email kind %q", kind)
	}

	body, err := s.renderTemplate(string(kind)+".html", data)
	if err != nil {
		return Message{}, err
	}

	return Message{
		From:    s.from,
		To:      to.Email,
		Subject: sanitizeHeader(subject),
		HTML:    body,
	}, nil
}

// renderTemplate renders an email template with the given data
func (s *Service) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// validateEmailAddress validates an email address for format and header injection attempts
func validateEmailAddress(email string) error {
	if strings.ContainsAny(email, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// Event titles are user input and end up in the Subject header.
func sanitizeHeader(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}
