package models

import "time"

// NotificationType identifies the social event behind a notification.
type NotificationType string

const (
	NotificationFriendshipNew   NotificationType = "friendship_new"
	NotificationGiftComment     NotificationType = "gift_comment"
	NotificationGiftCommentAlso NotificationType = "gift_comment_also"
	NotificationGiftReceived    NotificationType = "gift_received"
	NotificationGiftDelivered   NotificationType = "gift_delivered"
)

// NotificationTypes lists every known type.
var NotificationTypes = []NotificationType{
	NotificationFriendshipNew,
	NotificationGiftComment,
	NotificationGiftCommentAlso,
	NotificationGiftReceived,
	NotificationGiftDelivered,
}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// NotificationSetting is the per-type delivery preference of a user.
type NotificationSetting struct {
	AllowEmail    bool  `json:"allowEmail"`
	AllowTelegram *bool `json:"allowTelegram,omitempty"`
}

// NotificationSettings maps notification types to preferences. Types without
// an entry are delivered.
type NotificationSettings map[NotificationType]NotificationSetting

// AllowsEmail reports whether email delivery is enabled for t.
func (s NotificationSettings) AllowsEmail(t NotificationType) bool {
	setting, ok := s[t]
	if !ok {
		return true
	}
	return setting.AllowEmail
}

// AllowsTelegram reports whether Telegram delivery is enabled for t. When
// no Telegram preference was recorded the email preference applies.
func (s NotificationSettings) AllowsTelegram(t NotificationType) bool {
	setting, ok := s[t]
	if !ok {
		return true
	}
	if setting.AllowTelegram == nil {
		return setting.AllowEmail
	}
	return *setting.AllowTelegram
}

// FollowerSnapshot captures the follower at notification time.
type FollowerSnapshot struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// GiftSnapshot captures the gift at notification time.
type GiftSnapshot struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	WishListID int64  `json:"_wishList"`
	OwnerID    int64  `json:"_user"`
}

// DibSnapshot captures the dib and its claimant at notification time.
type DibSnapshot struct {
	ID        int64    `json:"id"`
	Quantity  int      `json:"quantity"`
	PricePaid *float64 `json:"pricePaid,omitempty"`
	UserID    int64    `json:"_user"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
}

// CommentSnapshot captures the comment and its author at notification time.
type CommentSnapshot struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	UserID    int64  `json:"_user"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Notification is a denormalised event record owned by its recipient.
type Notification struct {
	ID        int64             `json:"id" db:"id"`
	UserID    int64             `json:"_user" db:"user_id"`
	Type      NotificationType  `json:"type" db:"type"`
	Follower  *FollowerSnapshot `json:"follower,omitempty" db:"follower"`
	Gift      *GiftSnapshot     `json:"gift,omitempty" db:"gift"`
	Dib       *DibSnapshot      `json:"dib,omitempty" db:"dib"`
	Comment   *CommentSnapshot  `json:"comment,omitempty" db:"comment"`
	IsRead    bool              `json:"isRead" db:"is_read"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time         `json:"updatedAt" db:"updated_at"`
}
