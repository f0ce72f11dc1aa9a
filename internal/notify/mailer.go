// Package notify sends transactional email. Delivery is always best-effort:
// callers log failures and never propagate them, so a broken SMTP relay can
// not fail an already-committed order.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	mail "github.com/wneessen/go-mail"

	"github.com/camilovelasq/tienda-backend/internal/config"
)

type OrderLine struct {
	ProductName string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64
}

type OrderConfirmation struct {
	Number       string
	CustomerName string
	Lines        []OrderLine
	Subtotal     float64
	Total        float64
}

type Sender interface {
	SendOrderConfirmation(ctx context.Context, to string, data OrderConfirmation) error
	SendWelcome(ctx context.Context, to, name string) error
}

// New returns an SMTP-backed sender when SMTP is configured, otherwise a noop
// sender that only logs.
func New(cfg *config.Config) (Sender, error) {
	if !cfg.SMTP.Enabled {
		log.Warn().Msg("SMTP_HOST not set, email notifications disabled")
		return &noopSender{}, nil
	}

	opts := []mail.Option{mail.WithPort(cfg.SMTP.Port)}
	if cfg.SMTP.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTP.User),
			mail.WithPassword(cfg.SMTP.Password),
		)
	}
	client, err := mail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &smtpSender{client: client, from: cfg.SMTP.From}, nil
}

type smtpSender struct {
	client *mail.Client
	from   string
}

func (s *smtpSender) SendOrderConfirmation(ctx context.Context, to string, data OrderConfirmation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", data.CustomerName)
	fmt.Fprintf(&b, "Hemos recibido tu solicitud %s.\n\n", data.Number)
	for _, line := range data.Lines {
		fmt.Fprintf(&b, "  %d x %s ($%.0f c/u) — $%.0f\n", line.Quantity, line.ProductName, line.UnitPrice, line.Subtotal)
	}
	fmt.Fprintf(&b, "\nSubtotal: $%.0f\nTotal: $%.0f\n\n", data.Subtotal, data.Total)
	fmt.Fprintf(&b, "Puedes seguir tu solicitud con el numero %s.\n", data.Number)

	subject := fmt.Sprintf("Confirmacion de solicitud %s", data.Number)
	return s.send(ctx, to, subject, b.String())
}

func (s *smtpSender) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf("Hola %s,\n\nTu cuenta ha sido creada. Bienvenido a la tienda.\n", name)
	return s.send(ctx, to, "Bienvenido a la tienda", body)
}

func (s *smtpSender) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

type noopSender struct{}

func (n *noopSender) SendOrderConfirmation(_ context.Context, to string, data OrderConfirmation) error {
	log.Debug().Str("to", to).Str("numero", data.Number).Msg("notify disabled, skipping order confirmation")
	return nil
}

func (n *noopSender) SendWelcome(_ context.Context, to, _ string) error {
	log.Debug().Str("to", to).Msg("notify disabled, skipping welcome email")
	return nil
}
