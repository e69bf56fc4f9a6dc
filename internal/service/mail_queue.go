package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/task"
)

// TaskTypeSendVerification identifies queued verification mail.
const TaskTypeSendVerification = "send_verification"

// QueuedMailer hands verification mail to a background runner so that
// signup and recovery requests return without waiting on delivery.
type QueuedMailer struct {
	next   Mailer
	runner task.Submitter
	logger *slog.Logger
}

var _ Mailer = (*QueuedMailer)(nil)

// NewQueuedMailer wraps next. It panics if next or runner is nil.
func NewQueuedMailer(next Mailer, runner task.Submitter, logger *slog.Logger) *QueuedMailer {
	if next == nil || runner == nil {
		panic("queued mailer requires a mailer and a task runner")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueuedMailer{
		next:   next,
		runner: runner,
		logger: logger.With(slog.String("component", "queued_mailer")),
	}
}

// SendVerification queues the message. The returned error only reports a
// rejected submission; delivery failures are logged by the runner.
func (m *QueuedMailer) SendVerification(ctx context.Context, email string, kind domain.VerificationKind, link string) error {
	t := &verificationMailTask{
		id:     uuid.NewString(),
		mailer: m.next,
		email:  email,
		kind:   kind,
		link:   link,
	}
	if err := m.runner.Submit(t); err != nil {
		logger.FromContextOrDefault(ctx, m.logger).Warn("failed to queue verification email",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to queue verification email: %w", err)
	}
	return nil
}

type verificationMailTask struct {
	id     string
	mailer Mailer
	email  string
	kind   domain.VerificationKind
	link   string
}

func (t *verificationMailTask) ID() string   { return t.id }
func (t *verificationMailTask) Type() string { return TaskTypeSendVerification }

func (t *verificationMailTask) Execute(ctx context.Context) error {
	return t.mailer.SendVerification(ctx, t.email, t.kind, t.link)
}
