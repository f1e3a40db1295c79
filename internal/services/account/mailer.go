package account

import (
	"context"
	"log/slog"
)

// Mailer delivers one-time tokens to users. Delivery mechanics are
// outside this service; implementations only need to get the token
// to the address.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes mail that would have been sent to the log. Used
// in development and tests.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Ensure LogMailer implements Mailer
var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.logger.Info("verification mail",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.logger.Info("password reset mail",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}
