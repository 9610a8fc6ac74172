package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Kerhoff/dibs/internal/access"
	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/notify"
)

// ProfileInput carries the editable profile fields. Nil fields are left as
// they are.
type ProfileInput struct {
	FirstName            *string                     `json:"firstName"`
	LastName             *string                     `json:"lastName"`
	AvatarURL            *string                     `json:"avatarUrl"`
	NotificationSettings models.NotificationSettings `json:"notificationSettings"`
}

// Connection is one side of a follow edge.
type Connection struct {
	FriendshipID int64              `json:"friendshipId"`
	User         models.UserSummary `json:"user"`
}

// GetUser returns the user or a NotFoundError.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id == 0 {
		return nil, apperr.MissingID("userId")
	}
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	if user == nil {
		return nil, apperr.NotFound("user", id)
	}
	return user, nil
}

// UpdateProfile applies input to the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var fields []apperr.FieldError
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			fields = append(fields, apperr.Field("firstName", "is required"))
		}
		user.FirstName = name
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.NotificationSettings != nil {
		for t := range input.NotificationSettings {
			if !t.Valid() {
				fields = append(fields, apperr.Field("notificationSettings", fmt.Sprintf("unknown notification type %q", t)))
			}
		}
		merged := make(models.NotificationSettings, len(user.NotificationSettings)+len(input.NotificationSettings))
		for t, setting := range user.NotificationSettings {
			merged[t] = setting
		}
		for t, setting := range input.NotificationSettings {
			merged[t] = setting
		}
		user.NotificationSettings = merged
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	user, err = s.Users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	return user, nil
}

// DeleteAccount removes the user and, through cascades, everything they own.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.Users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	s.logger.Infof("Deleted account %d", userID)
	return nil
}

// Follow makes userID follow friendID and tells friendID about it.
func (s *Service) Follow(ctx context.Context, userID, friendID int64) (*models.Friendship, error) {
	if friendID == 0 {
		return nil, apperr.MissingID("friendId")
	}
	if friendID == userID {
		return nil, apperr.Validation(apperr.Field("friendId", "cannot follow yourself"))
	}

	friend, err := s.Users.GetByID(ctx, friendID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", friendID, err)
	}
	if friend == nil {
		return nil, apperr.NotFound("user", friendID)
	}

	f, err := s.Friendships.Create(ctx, &models.Friendship{UserID: userID, FriendID: friendID})
	if err != nil {
		return nil, fmt.Errorf("failed to follow user %d: %w", friendID, err)
	}

	follower, err := s.summary(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Errorf("Failed to load user %d", userID)
		follower = models.UserSummary{ID: userID}
	}
	s.notify(ctx, models.NotificationFriendshipNew, friendID, follower, notify.Subject{})

	return f, nil
}

// Unfollow removes a follow edge created by userID.
func (s *Service) Unfollow(ctx context.Context, userID, friendshipID int64) error {
	f, err := access.ConfirmOwnership(ctx, s.friendships(), friendshipID, userID)
	if err != nil {
		return err
	}
	if err := s.Friendships.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("failed to delete friendship %d: %w", f.ID, err)
	}
	return nil
}

// Following lists the users userID follows.
func (s *Service) Following(ctx context.Context, userID int64) ([]Connection, error) {
	edges, err := s.Friendships.GetFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get following of user %d: %w", userID, err)
	}
	return s.connections(ctx, edges, func(f *models.Friendship) int64 { return f.FriendID })
}

// Followers lists the users following userID.
func (s *Service) Followers(ctx context.Context, userID int64) ([]Connection, error) {
	edges, err := s.Friendships.GetFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers of user %d: %w", userID, err)
	}
	return s.connections(ctx, edges, func(f *models.Friendship) int64 { return f.UserID })
}

func (s *Service) connections(ctx context.Context, edges []*models.Friendship, other func(*models.Friendship) int64) ([]Connection, error) {
	ids := make([]int64, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, other(f))
	}
	dir, err := s.directory(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	out := make([]Connection, 0, len(edges))
	for _, f := range edges {
		out = append(out, Connection{FriendshipID: f.ID, User: dir.Lookup(other(f))})
	}
	return out, nil
}

// IssueTelegramLinkCode stores a fresh one-time code the user sends to the
// bot with /link.
func (s *Service) IssueTelegramLinkCode(ctx context.Context, userID int64) (string, error) {
	code := uuid.NewString()
	if err := s.Users.SetTelegramLinkCode(ctx, userID, code); err != nil {
		return "", fmt.Errorf("failed to store link code for user %d: %w", userID, err)
	}
	return code, nil
}

// LinkTelegram binds chatID to the user holding code.
func (s *Service) LinkTelegram(ctx context.Context, chatID int64, code string) (*models.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation(apperr.Field("code", "is required"))
	}
	user, err := s.Users.LinkTelegramChat(ctx, code, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to link telegram chat %d: %w", chatID, err)
	}
	if user == nil {
		return nil, apperr.Validation(apperr.Field("code", "is invalid or already used"))
	}
	s.logger.Infof("Linked telegram chat %d to user %d", chatID, user.ID)
	return user, nil
}

// UserByTelegramChat resolves a linked chat to its user; nil when unlinked.
func (s *Service) UserByTelegramChat(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.Users.GetByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (chat_id=%d): %w", chatID, err)
	}
	return user, nil
}
