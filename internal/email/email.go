package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/resend/resend-go/v2"
)

type Sender interface {
	SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error
}

// LogSender logs emails instead of sending them — used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) SendPasswordReset(_ context.Context, user *domain.User, resetURL string) error {
	s.logger.Info("password reset email (local dev)", "to", user.Email, "reset_url", resetURL)
	return nil
}

// ResendSender sends emails via the Resend API — used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Someone requested a password reset for your account. The link below is valid for one hour:</p><p><a href="%s">%s</a></p><p>If this wasn't you, ignore this email.</p>`,
		user.Name, resetURL, resetURL,
	)
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{user.Email},
		Subject: "Password reset",
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
