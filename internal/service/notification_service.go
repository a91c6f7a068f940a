package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
)

const notificationPageSize = 100

type NotificationService struct {
	notifications NotificationStore
	events        EventPublisher
	log           zerolog.Logger
}

func NewNotificationService(notifications NotificationStore, events EventPublisher, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		events:        events,
		log:           log.With().Str("service", "notifications").Logger(),
	}
}

// Notify stores a standalone notification. Notifications tied to another
// write are inserted by that write's repository call instead.
func (s *NotificationService) Notify(ctx context.Context, userID string, kind models.NotificationType, message string, link *string) (models.Notification, error) {
	n := models.Notification{
		ID:      ids.New(),
		UserID:  userID,
		Type:    kind,
		Message: message,
		Link:    link,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return models.Notification{}, err
	}
	s.events.Publish(ctx, "notification.created", realtime.TopicNotifications(userID))
	return n, nil
}

type NotificationList struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) (NotificationList, error) {
	items, err := s.notifications.ListByUser(ctx, userID, unreadOnly, notificationPageSize)
	if err != nil {
		return NotificationList{}, err
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return NotificationList{}, err
	}
	return NotificationList{Items: items, Unread: unread}, nil
}

// MarkRead only succeeds for the recipient; anyone else sees not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
		return err
	}
	s.events.Publish(ctx, "notification.read", realtime.TopicNotifications(userID))
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	changed, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.events.Publish(ctx, "notification.read", realtime.TopicNotifications(userID))
	}
	return changed, nil
}

func (s *NotificationService) Watch(ctx context.Context, sub Subscriber, userID string, unreadOnly bool, emit func(NotificationList) error) error {
	subscription := sub.Subscribe(realtime.TopicNotifications(userID))
	defer subscription.Close()

	return realtime.Watch(ctx, subscription, func(ctx context.Context) (NotificationList, error) {
		return s.List(ctx, userID, unreadOnly)
	}, emit)
}

// Prune deletes read notifications older than retention.
func (s *NotificationService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := s.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned notifications")
	return deleted, nil
}
