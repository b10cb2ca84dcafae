package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/pkg/config"
	"github.com/bookbasket/bookbasket-api/pkg/jobs"
	"github.com/bookbasket/bookbasket-api/pkg/mail"
)

const jobTypeEmail = "email"

// NotificationService dispatches account e-mails through a background queue
// so SMTP latency or failure never blocks or fails the triggering request.
type NotificationService struct {
	queue  *jobs.Queue
	sender mail.Sender
	logger *zap.Logger
}

// NewNotificationService wires the sender behind a worker queue. A nil
// sender disables delivery; notifications are logged and dropped.
func NewNotificationService(sender mail.Sender, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &NotificationService{sender: sender, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Welcome enqueues the post-registration message for a new account.
func (s *NotificationService) Welcome(account *models.Account) {
	var subject, body string
	if account.Role == models.RoleDonor {
		subject, body = mail.WelcomeDonor(account.Name)
	} else {
		subject, body = mail.WelcomeStudent(account.Name)
	}
	s.enqueue(account.Email, subject, body)
}

// Decision enqueues the approval or rejection message for a student.
func (s *NotificationService) Decision(account *models.Account, approved bool) {
	var subject, body string
	if approved {
		subject, body = mail.Approved(account.Name, account.Email)
	} else {
		subject, body = mail.Rejected(account.Name, account.Email)
	}
	s.enqueue(account.Email, subject, body)
}

func (s *NotificationService) enqueue(to, subject, body string) {
	if s.sender == nil {
		s.logger.Info("mail delivery disabled, dropping notification", zap.String("to", to), zap.String("subject", subject))
		return
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeEmail,
		Payload: mail.Message{To: to, Subject: subject, Body: body},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("to", to), zap.Error(err))
	}
}

func (s *NotificationService) deliver(_ context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mail.Message)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	if err := s.sender.Send(msg); err != nil {
		return err
	}
	s.logger.Info("notification delivered", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
