package email

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/eventreg/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// NewTransport picks the delivery mechanism named by cfg.Provider. It is called once at startup.
func NewTransport(cfg config.EmailConfig, logger zerolog.Logger) (Transport, error) {
	switch cfg.Provider {
	case config.EmailProviderLog, "":
		return NewLogTransport(logger), nil
	case config.EmailProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp transport requires a host")
		}
		return NewSMTPTransport(cfg), nil
	case config.EmailProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend transport requires an API key")
		}
		return NewResendTransport(resend.NewClient(cfg.ResendAPIKey), logger), nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}
}

// LogTransport writes messages to the log instead of sending them. Used in test and development.
type LogTransport struct {
	logger zerolog.Logger
}

func NewLogTransport(logger zerolog.Logger) *LogTransport {
	return &LogTransport{logger: logger.With().Str("component", "email").Logger()}
}

func (t *LogTransport) Name() string { return config.EmailProviderLog }

func (t *LogTransport) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.logger.Info().
		Str("from", msg.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email mock sent")
	return nil
}
