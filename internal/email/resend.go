package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/Togather-Foundation/eventreg/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendTransport delivers mail through the Resend API.
type ResendTransport struct {
	client *resend.Client
	logger zerolog.Logger
}

func NewResendTransport(client *resend.Client, logger zerolog.Logger) *ResendTransport {
	return &ResendTransport{
		client: client,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

func (t *ResendTransport) Name() string { return config.EmailProviderResend }

// Deliver handles rate limit errors without retrying.
func (t *ResendTransport) Deliver(ctx context.Context, msg Message) error {
	if t.client == nil {
		return fmt.Errorf("resend client not initialized")
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	sent, err := t.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			t.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("remaining", rateLimitErr.Remaining).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("email rate limit exceeded (limit: %s, resets in: %s seconds): %w",
				rateLimitErr.Limit, rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	t.logger.Debug().
		Str("email_id", sent.Id).
		Str("to", msg.To).
		Msg("email sent via Resend")
	return nil
}
