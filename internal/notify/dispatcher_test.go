package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/repository"
	"github.com/Kerhoff/dibs/internal/repository/memory"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func setup(t *testing.T, channels ...Channel) (*Dispatcher, *memory.Store, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	store := memory.NewStore()
	return NewDispatcher(store.Notifications(), store.Users(), logger, 8, channels...), store, hook
}

func createUser(t *testing.T, store *memory.Store, u *models.User) *models.User {
	t.Helper()
	created, err := store.Users().Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func TestNotify_PersistsSnapshotsByValue(t *testing.T) {
	d, store, _ := setup(t)
	ctx := context.Background()
	owner := createUser(t, store, &models.User{FirstName: "Ada", Email: "ada@example.com"})
	actor := models.UserSummary{ID: 99, FirstName: "Bo", LastName: "Li"}

	gift := &models.Gift{ID: 10, UserID: owner.ID, WishListID: 4, Name: "Lamp"}
	comment := &models.Comment{ID: 3, GiftID: 10, UserID: 99, Body: "Which colour?"}

	n, err := d.Notify(ctx, models.NotificationGiftComment, owner.ID, actor, Subject{Gift: gift, Comment: comment})
	require.NoError(t, err)
	require.NotNil(t, n)

	gift.Name = "Renamed"
	comment.Body = "edited"

	stored, err := store.Notifications().GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", stored.Gift.Name)
	assert.Equal(t, "Which colour?", stored.Comment.Body)
	assert.Equal(t, "Bo", stored.Comment.FirstName)
	assert.Nil(t, stored.Follower)
	assert.False(t, stored.IsRead)
}

func TestNotify_FollowerSnapshot(t *testing.T) {
	n := Snapshot(models.NotificationFriendshipNew, 2, models.UserSummary{ID: 1, FirstName: "Ada", LastName: "L"}, Subject{})
	require.NotNil(t, n.Follower)
	assert.Equal(t, int64(1), n.Follower.ID)
	assert.Nil(t, n.Gift)
	assert.Nil(t, n.Dib)
}

func TestNotify_DibSnapshotUsesClaimant(t *testing.T) {
	price := 15.0
	dib := &models.Dib{ID: 7, UserID: 3, Quantity: 2, PricePaid: &price}
	n := Snapshot(models.NotificationGiftDelivered, 1, models.UserSummary{ID: 3, FirstName: "Cy"}, Subject{Dib: dib})

	price = 99
	require.NotNil(t, n.Dib)
	assert.Equal(t, "Cy", n.Dib.FirstName)
	assert.Equal(t, 15.0, *n.Dib.PricePaid)
	assert.Equal(t, 2, n.Dib.Quantity)
}

func TestNotify_RejectsUnknownTypeAndMissingRecipient(t *testing.T) {
	d, _, _ := setup(t)
	ctx := context.Background()

	_, err := d.Notify(ctx, "gift_stolen", 1, models.UserSummary{ID: 2}, Subject{})
	assert.Error(t, err)

	_, err = d.Notify(ctx, models.NotificationFriendshipNew, 0, models.UserSummary{ID: 2}, Subject{})
	assert.EqualError(t, err, "recipientId must be provided")
}

func TestNotify_SkipsSelf(t *testing.T) {
	d, store, _ := setup(t)
	ctx := context.Background()

	n, err := d.Notify(ctx, models.NotificationGiftComment, 5, models.UserSummary{ID: 5}, Subject{})
	require.NoError(t, err)
	assert.Nil(t, n)

	list, err := store.Notifications().GetByUser(ctx, 5, repository.NotificationFilters{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeliver_EmailRequiresVerifiedAndAllowed(t *testing.T) {
	mailer := &recordingMailer{}
	d, store, _ := setup(t, NewEmailChannel(mailer, "dibs <no-reply@dibs.local>"))
	ctx := context.Background()

	verified := createUser(t, store, &models.User{FirstName: "Ada", Email: "ada@example.com", EmailAddressVerified: true})
	unverified := createUser(t, store, &models.User{FirstName: "Bo", Email: "bo@example.com"})
	optedOut := createUser(t, store, &models.User{
		FirstName:            "Cy",
		Email:                "cy@example.com",
		EmailAddressVerified: true,
		NotificationSettings: models.NotificationSettings{
			models.NotificationFriendshipNew: {AllowEmail: false},
		},
	})

	actor := models.UserSummary{ID: 100, FirstName: "Dee"}
	for _, u := range []*models.User{verified, unverified, optedOut} {
		n, err := d.Notify(ctx, models.NotificationFriendshipNew, u.ID, actor, Subject{})
		require.NoError(t, err)
		d.deliver(ctx, n)
	}

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To)
	assert.Equal(t, "Dee is now following you", sent[0].Subject)
	assert.Equal(t, "dibs <no-reply@dibs.local>", sent[0].From)
}

func TestDeliver_FailuresAreLoggedNotReturned(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp unavailable")}
	d, store, hook := setup(t, NewEmailChannel(mailer, "from"))
	ctx := context.Background()

	u := createUser(t, store, &models.User{Email: "ada@example.com", EmailAddressVerified: true})
	n, err := d.Notify(ctx, models.NotificationGiftReceived, u.ID, models.UserSummary{ID: 50},
		Subject{Gift: &models.Gift{ID: 1, Name: "Lamp"}})
	require.NoError(t, err)
	require.NotNil(t, n)

	d.deliver(ctx, n)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Data[logrus.ErrorKey].(error).Error(), "smtp unavailable")
}

func TestDeliver_TelegramFallsBackToEmailPreference(t *testing.T) {
	sender := &recordingSender{}
	d, store, _ := setup(t, NewTelegramChannel(sender))
	ctx := context.Background()

	chat := int64(4242)
	u := createUser(t, store, &models.User{Email: "ada@example.com"})
	require.NoError(t, store.Users().SetTelegramLinkCode(ctx, u.ID, "code"))
	_, err := store.Users().LinkTelegramChat(ctx, "code", chat)
	require.NoError(t, err)

	n, err := d.Notify(ctx, models.NotificationGiftReceived, u.ID, models.UserSummary{ID: 50},
		Subject{Gift: &models.Gift{ID: 1, Name: "Lamp"}})
	require.NoError(t, err)
	d.deliver(ctx, n)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, chat, sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "Lamp")
}

func TestRun_DeliversQueuedNotifications(t *testing.T) {
	mailer := &recordingMailer{}
	d, store, _ := setup(t, NewEmailChannel(mailer, "from"))
	u := createUser(t, store, &models.User{FirstName: "Ada", Email: "ada@example.com", EmailAddressVerified: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	_, err := d.Notify(ctx, models.NotificationFriendshipNew, u.ID, models.UserSummary{ID: 77, FirstName: "Bo"}, Subject{})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(mailer.messages()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestRender_AllTypes(t *testing.T) {
	n := &models.Notification{
		Follower: &models.FollowerSnapshot{FirstName: "Ada"},
		Gift:     &models.GiftSnapshot{Name: "Lamp"},
		Dib:      &models.DibSnapshot{FirstName: "Bo"},
		Comment:  &models.CommentSnapshot{FirstName: "Cy", Body: "hi"},
	}
	for _, typ := range models.NotificationTypes {
		n.Type = typ
		subject, body, err := Render(n)
		require.NoError(t, err, typ)
		assert.NotEmpty(t, subject, typ)
		assert.NotEmpty(t, body, typ)
	}

	_, _, err := Render(&models.Notification{Type: models.NotificationGiftComment})
	assert.Error(t, err)
}
