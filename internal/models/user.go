package models

import "time"

// User represents a registered account.
type User struct {
	ID                   int64                `json:"id" db:"id"`
	FirstName            string               `json:"firstName" db:"first_name"`
	LastName             string               `json:"lastName" db:"last_name"`
	Email                string               `json:"email" db:"email"`
	PasswordHash         string               `json:"-" db:"password_hash"`
	FacebookID           *string              `json:"facebookId,omitempty" db:"facebook_id"`
	EmailAddressVerified bool                 `json:"emailAddressVerified" db:"email_address_verified"`
	NotificationSettings NotificationSettings `json:"notificationSettings" db:"notification_settings"`
	AvatarURL            string               `json:"avatarUrl" db:"avatar_url"`
	TelegramChatID       *int64               `json:"-" db:"telegram_chat_id"`
	TelegramLinkCode     *string              `json:"-" db:"telegram_link_code"`
	CreatedAt            time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time            `json:"updatedAt" db:"updated_at"`
}

// FullName returns the user's full name
func (u *User) FullName() string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// Summary returns the public identity of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// UserSummary is the display identity attached to dibs, comments and
// recipients.
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Directory resolves user ids to display identities.
type Directory map[int64]UserSummary

// NewDirectory indexes users by id.
func NewDirectory(users []*User) Directory {
	d := make(Directory, len(users))
	for _, u := range users {
		if u != nil {
			d[u.ID] = u.Summary()
		}
	}
	return d
}

// Lookup returns the summary for id, or a summary carrying only the id when
// the user is unknown.
func (d Directory) Lookup(id int64) UserSummary {
	if s, ok := d[id]; ok {
		return s
	}
	return UserSummary{ID: id}
}
