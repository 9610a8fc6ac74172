package models

import "time"

// Comment represents a comment on a gift
type Comment struct {
	ID        int64        `json:"id" db:"id"`
	GiftID    int64        `json:"_gift" db:"gift_id"`
	UserID    int64        `json:"_user" db:"user_id"`
	Body      string       `json:"body" db:"body"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
	User      *UserSummary `json:"user,omitempty"`
}
