package services

import (
	"context"
	"errors"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/metrics"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"go.uber.org/zap"
)

// NotificationService is the notification sink and the recipient's inbox.
type NotificationService struct {
	notifications repositories.NotificationRepository
	opts          serviceOptions
}

func NewNotificationService(notifications repositories.NotificationRepository, opts ...Option) *NotificationService {
	return &NotificationService{notifications: notifications, opts: applyOptions(opts)}
}

// Notify stores n as an unread notification stamped with the current time.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	n.IsRead = false
	n.CreatedAt = s.opts.now()
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return err
	}
	metrics.Get().NotificationsTotal.WithLabelValues(string(n.Type)).Inc()
	return nil
}

// Inbox is one page of a recipient's notifications.
type Inbox struct {
	Notifications []models.Notification
	Total         int64
	Unread        int64
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, page Page) (*Inbox, error) {
	items, total, err := s.notifications.GetByRecipientID(ctx, recipientID, page.Offset(), page.Limit())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	unread, err := s.notifications.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Inbox{Notifications: items, Total: total, Unread: unread}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	n, err := s.notifications.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// MarkAsRead only touches notifications addressed to recipientID; anything else
// reads as not found.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string, recipientID uint) error {
	if err := s.notifications.MarkAsRead(ctx, id, recipientID); err != nil {
		return notFoundOr(err, "notification")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// emit hands n to the notifier unless the sender is the recipient. Failures are
// logged and counted but never fail the action that triggered the notification.
func emit(ctx context.Context, notifier Notifier, log *zap.Logger, n *models.Notification) {
	if notifier == nil || n.RecipientID == n.SenderID {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		metrics.Get().NotificationFailures.WithLabelValues(string(n.Type)).Inc()
		level := log.Warn
		if errors.Is(err, context.Canceled) {
			level = log.Debug
		}
		level("notification dropped",
			zap.String("type", string(n.Type)),
			zap.Uint("recipient_id", n.RecipientID),
			zap.Error(err),
		)
	}
}
