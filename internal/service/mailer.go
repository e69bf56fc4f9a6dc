package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
)

// Mailer delivers verification links.
type Mailer interface {
	SendVerification(ctx context.Context, email string, kind domain.VerificationKind, link string) error
}

// LogMailer writes verification links to the log instead of sending email.
// It is the only Mailer shipped; local development reads links from the log.
type LogMailer struct {
	logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With(slog.String("component", "log_mailer"))}
}

// SendVerification implements Mailer.
func (m *LogMailer) SendVerification(ctx context.Context, email string, kind domain.VerificationKind, link string) error {
	logger.FromContextOrDefault(ctx, m.logger).Info("verification email",
		slog.String("to", email),
		slog.String("kind", string(kind)),
		slog.String("link", link))
	return nil
}
