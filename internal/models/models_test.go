package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivacyType(t *testing.T) {
	tests := []struct {
		in     string
		want   PrivacyType
		wantOK bool
	}{
		{"", PrivacyEveryone, true},
		{"everyone", PrivacyEveryone, true},
		{"me", PrivacyMe, true},
		{"friends", PrivacyFriends, true},
		{"followers", PrivacyFriends, true},
		{"custom", PrivacyCustom, true},
		{"nobody", PrivacyType("nobody"), false},
	}

	for _, tt := range tests {
		got, ok := ParsePrivacyType(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestNotificationSettings(t *testing.T) {
	no := false
	settings := NotificationSettings{
		NotificationFriendshipNew: {AllowEmail: false},
		NotificationGiftComment:   {AllowEmail: true, AllowTelegram: &no},
	}

	assert.False(t, settings.AllowsEmail(NotificationFriendshipNew))
	assert.False(t, settings.AllowsTelegram(NotificationFriendshipNew))
	assert.True(t, settings.AllowsEmail(NotificationGiftComment))
	assert.False(t, settings.AllowsTelegram(NotificationGiftComment))
	assert.True(t, settings.AllowsEmail(NotificationGiftReceived))
	assert.True(t, settings.AllowsTelegram(NotificationGiftReceived))

	var empty NotificationSettings
	assert.True(t, empty.AllowsEmail(NotificationGiftDelivered))
}

func TestNotificationTypeValid(t *testing.T) {
	assert.True(t, NotificationGiftCommentAlso.Valid())
	assert.False(t, NotificationType("gift_stolen").Valid())
}

func TestFriendshipConnects(t *testing.T) {
	f := Friendship{UserID: 1, FriendID: 2}
	assert.True(t, f.Connects(1, 2))
	assert.True(t, f.Connects(2, 1))
	assert.False(t, f.Connects(1, 3))
}

func TestDirectoryLookup(t *testing.T) {
	d := NewDirectory([]*User{{ID: 7, FirstName: "Ada", LastName: "Lovelace"}, nil})
	assert.Equal(t, UserSummary{ID: 7, FirstName: "Ada", LastName: "Lovelace"}, d.Lookup(7))
	assert.Equal(t, UserSummary{ID: 9}, d.Lookup(9))
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
}

func TestGiftJSON_NoCommentsField(t *testing.T) {
	raw, err := json.Marshal(Gift{ID: 1, Name: "Mug", Dibs: []Dib{}})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"comments"`)
	assert.Contains(t, string(raw), `"dibs":[]`)
}
