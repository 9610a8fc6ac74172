package models

import "time"

// Friendship is a directed follow edge: UserID follows FriendID.
type Friendship struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"_user" db:"user_id"`
	FriendID  int64     `json:"_friend" db:"friend_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Connects reports whether the edge links a and b in either direction.
func (f *Friendship) Connects(a, b int64) bool {
	return (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a)
}
