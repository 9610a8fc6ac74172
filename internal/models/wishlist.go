package models

import "time"

// PrivacyType is the visibility policy of a wish list.
type PrivacyType string

const (
	PrivacyEveryone PrivacyType = "everyone"
	PrivacyMe       PrivacyType = "me"
	PrivacyFriends  PrivacyType = "friends"
	PrivacyCustom   PrivacyType = "custom"

	// privacyFollowers is the legacy spelling of PrivacyFriends.
	privacyFollowers PrivacyType = "followers"
)

// ParsePrivacyType normalises user input. An empty value means everyone and
// the legacy "followers" value maps to friends.
func ParsePrivacyType(s string) (PrivacyType, bool) {
	switch t := PrivacyType(s); t {
	case "":
		return PrivacyEveryone, true
	case PrivacyEveryone, PrivacyMe, PrivacyFriends, PrivacyCustom:
		return t, true
	case privacyFollowers:
		return PrivacyFriends, true
	default:
		return t, false
	}
}

// Privacy is the visibility descriptor stored on a wish list.
type Privacy struct {
	Type  PrivacyType `json:"type"`
	Allow []int64     `json:"_allow"`
}

// WishListKind distinguishes ordinary wish lists from registries.
type WishListKind string

const (
	WishListKindWishList WishListKind = "wishlist"
	WishListKindRegistry WishListKind = "registry"
)

// WishList represents a named, privacy-scoped collection of gifts.
type WishList struct {
	ID        int64        `json:"id" db:"id"`
	UserID    int64        `json:"_user" db:"user_id"`
	Name      string       `json:"name" db:"name"`
	Kind      WishListKind `json:"kind" db:"kind"`
	Privacy   Privacy      `json:"privacy"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
	Gifts     []Gift       `json:"gifts,omitempty"`
}

// IsRegistry returns true for registry lists.
func (w *WishList) IsRegistry() bool {
	return w.Kind == WishListKindRegistry
}
