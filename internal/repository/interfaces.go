package repository

import (
	"context"

	"github.com/Kerhoff/dibs/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetTelegramLinkCode(ctx context.Context, userID int64, code string) error
	LinkTelegramChat(ctx context.Context, code string, chatID int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// FriendshipRepository defines the interface for follow edges
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) (*models.Friendship, error)
	GetByID(ctx context.Context, id int64) (*models.Friendship, error)
	// GetFollowing returns edges where userID is the follower.
	GetFollowing(ctx context.Context, userID int64) ([]*models.Friendship, error)
	// GetFollowers returns edges where userID is followed.
	GetFollowers(ctx context.Context, userID int64) ([]*models.Friendship, error)
	// GetForUser returns every edge touching userID in either direction.
	GetForUser(ctx context.Context, userID int64) ([]*models.Friendship, error)
	Delete(ctx context.Context, id int64) error
}

// WishListRepository defines the interface for wish list operations
type WishListRepository interface {
	Create(ctx context.Context, list *models.WishList) (*models.WishList, error)
	GetByID(ctx context.Context, id int64) (*models.WishList, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.WishList, error)
	GetByUser(ctx context.Context, userID int64) ([]*models.WishList, error)
	Update(ctx context.Context, list *models.WishList) (*models.WishList, error)
	Delete(ctx context.Context, id int64) error
}

// GiftRepository defines the interface for gift operations. Gifts are
// returned without dibs or comments; those are loaded separately.
type GiftRepository interface {
	Create(ctx context.Context, gift *models.Gift) (*models.Gift, error)
	GetByID(ctx context.Context, id int64) (*models.Gift, error)
	GetByWishList(ctx context.Context, wishListID int64) ([]*models.Gift, error)
	// GetDibbedBy returns every gift userID holds a dib on.
	GetDibbedBy(ctx context.Context, userID int64) ([]*models.Gift, error)
	Update(ctx context.Context, gift *models.Gift) (*models.Gift, error)
	Delete(ctx context.Context, id int64) error
}

// DibRepository defines the interface for dib operations
type DibRepository interface {
	Create(ctx context.Context, dib *models.Dib) (*models.Dib, error)
	GetByID(ctx context.Context, id int64) (*models.Dib, error)
	GetByGift(ctx context.Context, giftID int64) ([]*models.Dib, error)
	GetByGifts(ctx context.Context, giftIDs []int64) ([]*models.Dib, error)
	Update(ctx context.Context, dib *models.Dib) (*models.Dib, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	GetByGift(ctx context.Context, giftID int64) ([]*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	GetByUser(ctx context.Context, userID int64, filters NotificationFilters) ([]*models.Notification, error)
	Update(ctx context.Context, n *models.Notification) (*models.Notification, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationFilters represents filters for querying notifications
type NotificationFilters struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
