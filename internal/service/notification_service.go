package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentloop/rentloop-api/pkg/config"
	"github.com/rentloop/rentloop-api/pkg/jobs"
)

// NotificationSink delivers an in-app notification to an actor. Implemented
// by the excluded notification collaborator.
type NotificationSink interface {
	Notify(ctx context.Context, actorID, message, link string) error
}

// EmailSink delivers an email-style notification. Implemented by the excluded
// email collaborator.
type EmailSink interface {
	Send(ctx context.Context, actorID, subject, body string) error
}

const (
	jobTypeNotify = "notify"
	jobTypeEmail  = "email"
)

type notifyPayload struct {
	ActorID string
	Message string
	Link    string
}

type emailPayload struct {
	ActorID string
	Subject string
	Body    string
}

// NotificationService dispatches side-effect notifications asynchronously.
// Delivery is fire-and-forget with bounded retries; a failed delivery never
// fails the state change that triggered it.
type NotificationService struct {
	queue    *jobs.Queue
	notifier NotificationSink
	email    EmailSink
	logger   *zap.Logger
}

// NewNotificationService constructs the dispatcher and its worker queue.
func NewNotificationService(notifier NotificationSink, email EmailSink, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		notifier: notifier,
		email:    email,
		logger:   logger,
	}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
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

// NotifyActor enqueues an in-app notification. Enqueue failures are logged
// and swallowed.
func (s *NotificationService) NotifyActor(actorID, message, link string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeNotify,
		Payload: notifyPayload{ActorID: actorID, Message: message, Link: link},
	})
	if err != nil {
		s.logger.Warn("dropping notification", zap.String("actor_id", actorID), zap.Error(err))
	}
}

// SendEmail enqueues an email. Enqueue failures are logged and swallowed.
func (s *NotificationService) SendEmail(actorID, subject, body string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeEmail,
		Payload: emailPayload{ActorID: actorID, Subject: subject, Body: body},
	})
	if err != nil {
		s.logger.Warn("dropping email", zap.String("actor_id", actorID), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobTypeNotify:
		payload, ok := job.Payload.(notifyPayload)
		if !ok {
			return fmt.Errorf("unexpected notify payload %T", job.Payload)
		}
		if s.notifier == nil {
			return nil
		}
		return s.notifier.Notify(ctx, payload.ActorID, payload.Message, payload.Link)
	case jobTypeEmail:
		payload, ok := job.Payload.(emailPayload)
		if !ok {
			return fmt.Errorf("unexpected email payload %T", job.Payload)
		}
		if s.email == nil {
			return nil
		}
		return s.email.Send(ctx, payload.ActorID, payload.Subject, payload.Body)
	default:
		return fmt.Errorf("unknown notification job type %q", job.Type)
	}
}

// LogNotificationSink is the development sink: it only logs.
type LogNotificationSink struct {
	Logger *zap.Logger
}

// Notify implements NotificationSink.
func (s *LogNotificationSink) Notify(ctx context.Context, actorID, message, link string) error {
	s.Logger.Info("notification",
		zap.String("actor_id", actorID),
		zap.String("message", message),
		zap.String("link", link))
	return nil
}

// LogEmailSink is the development sink: it only logs.
type LogEmailSink struct {
	Logger *zap.Logger
}

// Send implements EmailSink.
func (s *LogEmailSink) Send(ctx context.Context, actorID, subject, body string) error {
	s.Logger.Info("email",
		zap.String("actor_id", actorID),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
