package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/email"
	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/repository"
	"github.com/medcore/clinic-api/internal/service/access"
	"github.com/medcore/clinic-api/pkg/errors"
	"github.com/medcore/clinic-api/pkg/logger"
	"github.com/medcore/clinic-api/pkg/messaging"
)

const eventChannel = "notifications"

// Notice is one dispatch request for one principal.
type Notice struct {
	UserID        uuid.UUID
	Type          model.NotificationType
	Priority      model.NotificationPriority
	Title         string
	Message       string
	AppointmentID *uuid.UUID
	LabTestID     *uuid.UUID
}

// Dispatcher delivers lifecycle notices. Dispatch is best-effort relative
// to the transition that triggered it: lifecycle state is the source of
// truth, so delivery failures are logged and swallowed, never propagated.
type Dispatcher interface {
	Notify(ctx context.Context, notice Notice)
	NotifyEach(ctx context.Context, userIDs []uuid.UUID, notice Notice)
}

// Service adds the principal-facing read surface on top of dispatch.
type Service interface {
	Dispatcher
	List(ctx context.Context, accessCtx *model.AccessContext, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID) error
	UnreadCount(ctx context.Context, accessCtx *model.AccessContext) (int, error)
}

type service struct {
	repo     repository.NotificationRepository
	users    repository.UserRepository
	broker   messaging.Broker
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository,
	broker messaging.Broker, emailSvc email.Service, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		users:    users,
		broker:   broker,
		emailSvc: emailSvc,
		logger:   log,
	}
}

func (s *service) Notify(ctx context.Context, notice Notice) {
	n := &model.Notification{
		UserID:        notice.UserID,
		Type:          notice.Type,
		Priority:      notice.Priority,
		Title:         notice.Title,
		Message:       notice.Message,
		AppointmentID: notice.AppointmentID,
		LabTestID:     notice.LabTestID,
	}
	if n.Priority == "" {
		n.Priority = model.NotificationPriorityNormal
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error(err, "failed to persist notification",
			"user_id", notice.UserID.String(), "type", string(notice.Type))
		return
	}

	event := &model.NotificationEvent{
		ID:             uuid.New(),
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		CreatedAt:      time.Now(),
	}
	if err := s.broker.Publish(ctx, eventChannel, event); err != nil {
		s.logger.Error(err, "failed to publish notification event",
			"notification_id", n.ID.String())
	}

	if n.Priority == model.NotificationPriorityUrgent {
		s.sendEmail(ctx, n)
	}
}

func (s *service) NotifyEach(ctx context.Context, userIDs []uuid.UUID, notice Notice) {
	for _, id := range userIDs {
		notice.UserID = id
		s.Notify(ctx, notice)
	}
}

func (s *service) sendEmail(ctx context.Context, n *model.Notification) {
	user, err := s.users.Get(ctx, n.UserID)
	if err != nil {
		s.logger.Error(err, "failed to look up notification recipient",
			"user_id", n.UserID.String())
		return
	}
	if err := s.emailSvc.SendCustom(ctx, user.Email, n.Title, n.Message); err != nil {
		s.logger.Error(err, "failed to send notification email",
			"notification_id", n.ID.String())
	}
}

func (s *service) List(ctx context.Context, accessCtx *model.AccessContext, unreadOnly bool) ([]*model.Notification, error) {
	scope, err := access.Scope(model.EntityNotification, accessCtx)
	if err != nil {
		return nil, err
	}
	filter := model.Filter{}
	if unreadOnly {
		filter["is_read"] = false
	}
	return s.repo.List(ctx, filter.Merge(scope))
}

// MarkRead flips the read flag for a notification owned by the caller.
// Non-owners get AccessDenied regardless of the row's existence, so
// handlers can render both cases identically.
func (s *service) MarkRead(ctx context.Context, accessCtx *model.AccessContext, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != accessCtx.UserID {
		return errors.AccessDenied("notification belongs to another principal")
	}
	if n.IsRead {
		return nil
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *service) UnreadCount(ctx context.Context, accessCtx *model.AccessContext) (int, error) {
	return s.repo.CountUnread(ctx, accessCtx.UserID)
}
