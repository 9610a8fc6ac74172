package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dibs/internal/access"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/notify"
	"github.com/Kerhoff/dibs/internal/repository"
)

// Notifier records a notification for recipientID about something actor did.
type Notifier interface {
	Notify(ctx context.Context, t models.NotificationType, recipientID int64, actor models.UserSummary, subject notify.Subject) (*models.Notification, error)
}

// Service is the central business logic layer that holds all repositories
// and provides high-level methods for the application.
type Service struct {
	logger        *logrus.Logger
	notifier      Notifier
	now           func() time.Time
	Users         repository.UserRepository
	Friendships   repository.FriendshipRepository
	WishLists     repository.WishListRepository
	Gifts         repository.GiftRepository
	Dibs          repository.DibRepository
	Comments      repository.CommentRepository
	Notifications repository.NotificationRepository
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger, notifier Notifier,
	users repository.UserRepository,
	friendships repository.FriendshipRepository,
	wishLists repository.WishListRepository,
	gifts repository.GiftRepository,
	dibs repository.DibRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
) *Service {
	return &Service{
		logger: logger, notifier: notifier, now: time.Now,
		Users: users, Friendships: friendships, WishLists: wishLists,
		Gifts: gifts, Dibs: dibs, Comments: comments, Notifications: notifications,
	}
}

func (s *Service) friendships() access.Collection[models.Friendship] {
	return access.Collection[models.Friendship]{
		Name: "friendship", IDName: "friendshipId",
		Find:  s.Friendships.GetByID,
		Owner: func(f *models.Friendship) int64 { return f.UserID },
	}
}

func (s *Service) wishLists() access.Collection[models.WishList] {
	return access.Collection[models.WishList]{
		Name: "wishList", IDName: "wishListId",
		Find:  s.WishLists.GetByID,
		Owner: func(l *models.WishList) int64 { return l.UserID },
	}
}

func (s *Service) gifts() access.Collection[models.Gift] {
	return access.Collection[models.Gift]{
		Name: "gift", IDName: "giftId",
		Find:  s.Gifts.GetByID,
		Owner: func(g *models.Gift) int64 { return g.UserID },
	}
}

func (s *Service) dibs() access.Collection[models.Dib] {
	return access.Collection[models.Dib]{
		Name: "dib", IDName: "dibId",
		Find:  s.Dibs.GetByID,
		Owner: func(d *models.Dib) int64 { return d.UserID },
	}
}

func (s *Service) comments() access.Collection[models.Comment] {
	return access.Collection[models.Comment]{
		Name: "comment", IDName: "commentId",
		Find:  s.Comments.GetByID,
		Owner: func(c *models.Comment) int64 { return c.UserID },
	}
}

func (s *Service) notifications() access.Collection[models.Notification] {
	return access.Collection[models.Notification]{
		Name: "notification", IDName: "notificationId",
		Find:  s.Notifications.GetByID,
		Owner: func(n *models.Notification) int64 { return n.UserID },
	}
}

// notify records a notification. The triggering action has already been
// persisted, so failures are only logged.
func (s *Service) notify(ctx context.Context, t models.NotificationType, recipientID int64, actor models.UserSummary, subject notify.Subject) {
	if recipientID == actor.ID {
		return
	}
	if _, err := s.notifier.Notify(ctx, t, recipientID, actor, subject); err != nil {
		s.logger.WithFields(logrus.Fields{
			"type":         t,
			"recipient_id": recipientID,
			"actor_id":     actor.ID,
		}).WithError(err).Error("Failed to create notification")
	}
}

// summary loads the display identity of userID.
func (s *Service) summary(ctx context.Context, userID int64) (models.UserSummary, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return models.UserSummary{}, err
	}
	if user == nil {
		return models.UserSummary{ID: userID}, nil
	}
	return user.Summary(), nil
}

// directory loads display identities for ids.
func (s *Service) directory(ctx context.Context, ids []int64) (models.Directory, error) {
	users, err := s.Users.GetByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	return models.NewDirectory(users), nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
