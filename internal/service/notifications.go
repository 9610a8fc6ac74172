package service

import (
	"context"
	"fmt"

	"github.com/Kerhoff/dibs/internal/access"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/repository"
)

// ListNotifications returns the user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID int64, filters repository.NotificationFilters) ([]*models.Notification, error) {
	list, err := s.Notifications.GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications of user %d: %w", userID, err)
	}
	if list == nil {
		list = []*models.Notification{}
	}
	return list, nil
}

// MarkNotificationRead sets the read flag on a notification owned by userID.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID int64, read bool) (*models.Notification, error) {
	n, err := access.ConfirmOwnership(ctx, s.notifications(), notificationID, userID)
	if err != nil {
		return nil, err
	}
	n.IsRead = read
	n, err = s.Notifications.Update(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification %d: %w", notificationID, err)
	}
	return n, nil
}

// DeleteNotification removes a notification owned by userID.
func (s *Service) DeleteNotification(ctx context.Context, userID, notificationID int64) error {
	n, err := access.ConfirmOwnership(ctx, s.notifications(), notificationID, userID)
	if err != nil {
		return err
	}
	if err := s.Notifications.Delete(ctx, n.ID); err != nil {
		return fmt.Errorf("failed to delete notification %d: %w", notificationID, err)
	}
	return nil
}
