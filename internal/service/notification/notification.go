package notification

import (
	"context"
	"fmt"
	"time"

	"toolhub-service/internal/domain/notification"
	"toolhub-service/internal/domain/user"
	wstypes "toolhub-service/internal/domain/websocket"

	"go.uber.org/zap"
)

// Repository is the persistence surface the notification service needs.
type Repository interface {
	CreateWithRecipients(ctx context.Context, n *notification.Notification, recipients []notification.Recipient) error
	FindByID(ctx context.Context, id int64) (*notification.Notification, error)
	ListForUser(ctx context.Context, userID int64, filters *notification.NotificationListFilters) ([]notification.UserNotification, int64, error)
	MarkSeen(ctx context.Context, notificationID, userID int64, userEmail string) error
	MarkAllSeen(ctx context.Context, userID int64) error
	GetUnreadCount(ctx context.Context, userID int64) (int, error)
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserLister enumerates recipients for the fan-out.
type UserLister interface {
	ListIDs(ctx context.Context) ([]user.User, error)
}

// Notifier pushes notifications to connected clients.
type Notifier interface {
	BroadcastNotification(identityIDs []int64, notification *wstypes.NotificationData)
	BroadcastNotificationCount(identityID int64, count int)
	BroadcastSystemAlert(alert *wstypes.SystemAlertData)
}

type NotificationService struct {
	notificationRepo Repository
	users            UserLister
	notifier         Notifier
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo Repository,
	users UserLister,
	notifier Notifier,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		users:            users,
		notifier:         notifier,
		logger:           logger,
	}
}

// Send creates a notification, fans out a recipient row for every
// registered user, and pushes it to whoever is connected right now.
func (s *NotificationService) Send(ctx context.Context, senderID int64, req *notification.SendNotificationRequest) (*notification.Notification, error) {
	notificationType := req.Type
	if notificationType == "" {
		notificationType = notification.TypeGeneral
	}

	n := &notification.Notification{
		Title:     req.Title,
		Content:   req.Content,
		Type:      notificationType,
		SenderID:  senderID,
		IsActive:  true,
		ExpiresAt: time.Now().Add(notification.Lifetime),
	}

	users, err := s.users.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	recipients := make([]notification.Recipient, 0, len(users))
	identityIDs := make([]int64, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, notification.Recipient{
			UserID:    u.ID,
			UserEmail: u.Email,
		})
		identityIDs = append(identityIDs, u.ID)
	}

	if err := s.notificationRepo.CreateWithRecipients(ctx, n, recipients); err != nil {
		s.logger.Error("failed to create notification", zap.Error(err))
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BroadcastNotification(identityIDs, &wstypes.NotificationData{
			ID:        n.ID,
			Title:     n.Title,
			Content:   n.Content,
			Type:      string(n.Type),
			CreatedAt: n.CreatedAt,
			ExpiresAt: n.ExpiresAt,
		})
	}

	s.logger.Info("notification sent",
		zap.Int64("notification_id", n.ID),
		zap.Int("recipients", len(recipients)),
	)

	return n, nil
}

// List retrieves a user's live notifications with their seen state
func (s *NotificationService) List(ctx context.Context, userID int64, filters *notification.NotificationListFilters) (*notification.NotificationListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	notifications, total, err := s.notificationRepo.ListForUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.notificationRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		Total:         total,
		Page:          filters.Page,
		PageSize:      filters.PageSize,
		TotalPages:    totalPages,
	}, nil
}

// MarkSeen records that a user has seen a notification and pushes the
// fresh unread count to their open sockets. Repeat calls are harmless.
func (s *NotificationService) MarkSeen(ctx context.Context, notificationID, userID int64, userEmail string) error {
	if _, err := s.notificationRepo.FindByID(ctx, notificationID); err != nil {
		return err
	}

	if err := s.notificationRepo.MarkSeen(ctx, notificationID, userID, userEmail); err != nil {
		return err
	}

	s.pushUnreadCount(ctx, userID)
	return nil
}

// MarkAllSeen marks every unseen notification seen for a user
func (s *NotificationService) MarkAllSeen(ctx context.Context, userID int64) error {
	if err := s.notificationRepo.MarkAllSeen(ctx, userID); err != nil {
		return err
	}

	s.pushUnreadCount(ctx, userID)
	return nil
}

// GetUnreadCount counts a user's unseen live notifications
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.GetUnreadCount(ctx, userID)
}

// CleanupExpired removes notifications past their global lifetime and
// recipient rows seen more than the per-user window ago. Intended to
// run on a schedule.
func (s *NotificationService) CleanupExpired(ctx context.Context) (*notification.CleanupResult, error) {
	deletedRecipients, err := s.notificationRepo.DeleteSeenBefore(ctx, time.Now().Add(-notification.Lifetime))
	if err != nil {
		return nil, err
	}

	deletedNotifications, err := s.notificationRepo.DeleteExpired(ctx)
	if err != nil {
		return nil, err
	}

	if deletedNotifications > 0 || deletedRecipients > 0 {
		s.logger.Info("notifications cleaned up",
			zap.Int64("deleted_notifications", deletedNotifications),
			zap.Int64("deleted_recipients", deletedRecipients),
		)

		if s.notifier != nil {
			s.notifier.BroadcastSystemAlert(&wstypes.SystemAlertData{
				Severity: "info",
				Title:    "Notifications pruned",
				Message: fmt.Sprintf("%d expired notifications and %d seen receipts removed",
					deletedNotifications, deletedRecipients),
			})
		}
	}

	return &notification.CleanupResult{
		DeletedNotifications: deletedNotifications,
		DeletedRecipients:    deletedRecipients,
	}, nil
}

func (s *NotificationService) pushUnreadCount(ctx context.Context, userID int64) {
	if s.notifier == nil {
		return
	}
	count, err := s.notificationRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to refresh unread count", zap.Error(err))
		return
	}
	s.notifier.BroadcastNotificationCount(userID, count)
}
