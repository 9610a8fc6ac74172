package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/notify"
	"github.com/Kerhoff/dibs/internal/repository"
	"github.com/Kerhoff/dibs/internal/repository/memory"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	dispatcher := notify.NewDispatcher(store.Notifications(), store.Users(), logger, 64)
	svc := New(logger, dispatcher,
		store.Users(), store.Friendships(), store.WishLists(), store.Gifts(),
		store.Dibs(), store.Comments(), store.Notifications())
	svc.now = func() time.Time { return time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, store: store, ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, first string) *models.User {
	t.Helper()
	u, err := f.store.Users().Create(f.ctx, &models.User{FirstName: first, Email: first + "@example.com"})
	require.NoError(t, err)
	return u
}

func (f *fixture) list(t *testing.T, owner *models.User, privacy string, allow ...int64) *models.WishList {
	t.Helper()
	name := "Birthday"
	l, err := f.svc.CreateWishList(f.ctx, owner.ID, WishListInput{
		Name:    &name,
		Privacy: &PrivacyInput{Type: privacy, Allow: allow},
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) gift(t *testing.T, owner *models.User, list *models.WishList, quantity int, budget float64) *models.Gift {
	t.Helper()
	name := "Gift"
	g, err := f.svc.CreateGift(f.ctx, owner.ID, list.ID, GiftInput{Name: &name, Quantity: &quantity, Budget: &budget})
	require.NoError(t, err)
	return g
}

func (f *fixture) notifications(t *testing.T, userID int64) []*models.Notification {
	t.Helper()
	list, err := f.svc.ListNotifications(f.ctx, userID, repository.NotificationFilters{})
	require.NoError(t, err)
	return list
}

func intp(v int) *int                   { return &v }
func floatp(v float64) *float64         { return &v }
func boolp(v bool) *bool                { return &v }
func strp(v string) *string             { return &v }
func isKind(err error, target any) bool { return errors.As(err, target) }

func TestFollow(t *testing.T) {
	f := newFixture(t)
	ada, bo := f.user(t, "ada"), f.user(t, "bo")

	edge, err := f.svc.Follow(f.ctx, ada.ID, bo.ID)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, edge.UserID)

	got := f.notifications(t, bo.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationFriendshipNew, got[0].Type)
	assert.Equal(t, "ada", got[0].Follower.FirstName)

	_, err = f.svc.Follow(f.ctx, ada.ID, bo.ID)
	var verr *apperr.ValidationError
	require.True(t, isKind(err, &verr), "duplicate follow: %v", err)

	_, err = f.svc.Follow(f.ctx, ada.ID, ada.ID)
	require.True(t, isKind(err, &verr), "self follow: %v", err)

	_, err = f.svc.Follow(f.ctx, ada.ID, 999)
	var nf *apperr.NotFoundError
	assert.True(t, isKind(err, &nf))
}

// flakyUsers fails lookups of one user id.
type flakyUsers struct {
	repository.UserRepository
	failID int64
}

func (u flakyUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if id == u.failID {
		return nil, errors.New("connection reset")
	}
	return u.UserRepository.GetByID(ctx, id)
}

func TestFollow_FollowerLookupFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	ada, bo := f.user(t, "ada"), f.user(t, "bo")

	logger, hook := test.NewNullLogger()
	users := flakyUsers{UserRepository: f.store.Users(), failID: ada.ID}
	dispatcher := notify.NewDispatcher(f.store.Notifications(), users, logger, 8)
	svc := New(logger, dispatcher,
		users, f.store.Friendships(), f.store.WishLists(), f.store.Gifts(),
		f.store.Dibs(), f.store.Comments(), f.store.Notifications())

	edge, err := svc.Follow(f.ctx, ada.ID, bo.ID)
	require.NoError(t, err)
	assert.Equal(t, bo.ID, edge.FriendID)

	got := f.notifications(t, bo.ID)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Follower)
	assert.Equal(t, ada.ID, got[0].Follower.ID)
	assert.Empty(t, got[0].Follower.FirstName)

	var logged bool
	for _, e := range hook.AllEntries() {
		logged = logged || e.Level == logrus.ErrorLevel
	}
	assert.True(t, logged, "follower lookup failure should be logged")
}

func TestUnfollow_Guarded(t *testing.T) {
	f := newFixture(t)
	ada, bo := f.user(t, "ada"), f.user(t, "bo")
	edge, err := f.svc.Follow(f.ctx, ada.ID, bo.ID)
	require.NoError(t, err)

	err = f.svc.Unfollow(f.ctx, bo.ID, edge.ID)
	var perr *apperr.PermissionError
	require.True(t, isKind(err, &perr))

	require.NoError(t, f.svc.Unfollow(f.ctx, ada.ID, edge.ID))

	err = f.svc.Unfollow(f.ctx, ada.ID, 0)
	assert.EqualError(t, err, "friendshipId must be provided")
}

func TestFollowingAndFollowers(t *testing.T) {
	f := newFixture(t)
	ada, bo, cy := f.user(t, "ada"), f.user(t, "bo"), f.user(t, "cy")
	_, err := f.svc.Follow(f.ctx, ada.ID, bo.ID)
	require.NoError(t, err)
	_, err = f.svc.Follow(f.ctx, cy.ID, bo.ID)
	require.NoError(t, err)

	following, err := f.svc.Following(f.ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bo", following[0].User.FirstName)

	followers, err := f.svc.Followers(f.ctx, bo.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "ada", followers[0].User.FirstName)
	assert.Equal(t, "cy", followers[1].User.FirstName)
}

func TestListWishLists_Privacy(t *testing.T) {
	f := newFixture(t)
	owner, friend, stranger, invited := f.user(t, "owner"), f.user(t, "friend"), f.user(t, "stranger"), f.user(t, "invited")

	_, err := f.svc.Follow(f.ctx, friend.ID, owner.ID)
	require.NoError(t, err)

	everyone := f.list(t, owner, "everyone")
	me := f.list(t, owner, "me")
	friends := f.list(t, owner, "followers")
	custom := f.list(t, owner, "custom", invited.ID)
	assert.Equal(t, models.PrivacyFriends, friends.Privacy.Type)

	ids := func(viewer *models.User) []int64 {
		lists, err := f.svc.ListWishLists(f.ctx, viewer.ID, owner.ID)
		require.NoError(t, err)
		out := []int64{}
		for _, l := range lists {
			out = append(out, l.ID)
		}
		return out
	}

	assert.Equal(t, []int64{everyone.ID, me.ID, friends.ID, custom.ID}, ids(owner))
	assert.Equal(t, []int64{everyone.ID, friends.ID}, ids(friend))
	assert.Equal(t, []int64{everyone.ID}, ids(stranger))
	assert.Equal(t, []int64{everyone.ID, custom.ID}, ids(invited))

	_, err = f.svc.GetWishList(f.ctx, stranger.ID, me.ID)
	var perr *apperr.PermissionError
	assert.True(t, isKind(err, &perr))
}

func TestCreateWishList_Validation(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")

	_, err := f.svc.CreateWishList(f.ctx, ada.ID, WishListInput{
		Name:    strp("  "),
		Kind:    strp("shelf"),
		Privacy: &PrivacyInput{Type: "secret"},
	})
	fields := apperr.FieldsOf(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, "kind", fields[1].Field)
	assert.Equal(t, "privacy.type", fields[2].Field)

	l, err := f.svc.CreateWishList(f.ctx, ada.ID, WishListInput{Name: strp("Xmas")})
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyEveryone, l.Privacy.Type)
	assert.Equal(t, models.WishListKindWishList, l.Kind)
}

func TestUpdateWishList_Guarded(t *testing.T) {
	f := newFixture(t)
	ada, bo := f.user(t, "ada"), f.user(t, "bo")
	l := f.list(t, ada, "everyone")

	_, err := f.svc.UpdateWishList(f.ctx, bo.ID, l.ID, WishListInput{Name: strp("Mine now")})
	var perr *apperr.PermissionError
	require.True(t, isKind(err, &perr))

	updated, err := f.svc.UpdateWishList(f.ctx, ada.ID, l.ID, WishListInput{Privacy: &PrivacyInput{Type: "custom", Allow: []int64{bo.ID, bo.ID}}})
	require.NoError(t, err)
	assert.Equal(t, []int64{bo.ID}, updated.Privacy.Allow)
	assert.Equal(t, "Birthday", updated.Name)

	err = f.svc.DeleteWishList(f.ctx, ada.ID, 12345)
	var nf *apperr.NotFoundError
	assert.True(t, isKind(err, &nf))
}

func TestDibs_Scenario(t *testing.T) {
	f := newFixture(t)
	owner, a, b, c := f.user(t, "owner"), f.user(t, "a"), f.user(t, "b"), f.user(t, "c")
	l := f.list(t, owner, "everyone")
	g := f.gift(t, owner, l, 3, 30)

	_, err := f.svc.CreateDib(f.ctx, a.ID, g.ID, DibInput{})
	require.NoError(t, err)
	two, err := f.svc.CreateDib(f.ctx, b.ID, g.ID, DibInput{Quantity: intp(2)})
	require.NoError(t, err)

	_, err = f.svc.CreateDib(f.ctx, c.ID, g.ID, DibInput{Quantity: intp(1)})
	var dverr *apperr.DibValidationError
	require.True(t, isKind(err, &dverr), "over-claim: %v", err)
	assert.Equal(t, "quantity", dverr.Fields[0].Field)

	_, err = f.svc.CreateDib(f.ctx, c.ID, g.ID, DibInput{Quantity: intp(0)})
	var verr *apperr.ValidationError
	require.True(t, isKind(err, &verr))

	require.NoError(t, f.svc.DeleteDib(f.ctx, b.ID, two.ID))

	d, err := f.svc.CreateDib(f.ctx, c.ID, g.ID, DibInput{Quantity: intp(1)})
	require.NoError(t, err)
	assert.Equal(t, "c", d.User.FirstName)
}

func TestCreateDib_Rules(t *testing.T) {
	f := newFixture(t)
	owner, friend, stranger := f.user(t, "owner"), f.user(t, "friend"), f.user(t, "stranger")
	_, err := f.svc.Follow(f.ctx, owner.ID, friend.ID)
	require.NoError(t, err)

	l := f.list(t, owner, "friends")
	g := f.gift(t, owner, l, 1, 10)

	_, err = f.svc.CreateDib(f.ctx, owner.ID, g.ID, DibInput{})
	var perr *apperr.PermissionError
	require.True(t, isKind(err, &perr), "owner dib: %v", err)

	_, err = f.svc.CreateDib(f.ctx, stranger.ID, g.ID, DibInput{})
	require.True(t, isKind(err, &perr), "hidden list: %v", err)

	_, err = f.svc.CreateDib(f.ctx, friend.ID, 4040, DibInput{})
	var gnf *apperr.GiftNotFoundError
	require.True(t, isKind(err, &gnf))

	_, err = f.svc.CreateDib(f.ctx, friend.ID, 0, DibInput{})
	assert.EqualError(t, err, "giftId must be provided")

	_, err = f.svc.CreateDib(f.ctx, friend.ID, g.ID, DibInput{})
	require.NoError(t, err)

	_, err = f.svc.CreateDib(f.ctx, friend.ID, g.ID, DibInput{})
	var verr *apperr.ValidationError
	require.True(t, isKind(err, &verr), "got %v", err)
	assert.Equal(t, []apperr.FieldError{apperr.Field("giftId", "has already been dibbed by you")}, verr.Fields)
}

func TestUpdateDib_QuantityExcludesItself(t *testing.T) {
	f := newFixture(t)
	owner, a, b := f.user(t, "owner"), f.user(t, "a"), f.user(t, "b")
	g := f.gift(t, owner, f.list(t, owner, "everyone"), 3, 30)

	da, err := f.svc.CreateDib(f.ctx, a.ID, g.ID, DibInput{Quantity: intp(2)})
	require.NoError(t, err)
	_, err = f.svc.CreateDib(f.ctx, b.ID, g.ID, DibInput{})
	require.NoError(t, err)

	_, err = f.svc.UpdateDib(f.ctx, a.ID, da.ID, DibUpdate{Quantity: intp(2)})
	require.NoError(t, err)

	_, err = f.svc.UpdateDib(f.ctx, a.ID, da.ID, DibUpdate{Quantity: intp(3)})
	var dverr *apperr.DibValidationError
	require.True(t, isKind(err, &dverr))

	_, err = f.svc.UpdateDib(f.ctx, b.ID, da.ID, DibUpdate{PricePaid: floatp(5)})
	var perr *apperr.PermissionError
	assert.True(t, isKind(err, &perr))
}

func TestUpdateDib_DeliveryLifecycle(t *testing.T) {
	f := newFixture(t)
	owner, a := f.user(t, "owner"), f.user(t, "a")
	g := f.gift(t, owner, f.list(t, owner, "everyone"), 1, 30)

	d, err := f.svc.CreateDib(f.ctx, a.ID, g.ID, DibInput{})
	require.NoError(t, err)

	d, err = f.svc.UpdateDib(f.ctx, a.ID, d.ID, DibUpdate{IsDelivered: boolp(true)})
	require.NoError(t, err)
	require.NotNil(t, d.DateDelivered)
	first := *d.DateDelivered

	got := f.notifications(t, owner.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationGiftDelivered, got[0].Type)
	assert.Equal(t, "a", got[0].Dib.FirstName)

	f.svc.now = func() time.Time { return first.Add(time.Hour) }
	d, err = f.svc.UpdateDib(f.ctx, a.ID, d.ID, DibUpdate{IsDelivered: boolp(true)})
	require.NoError(t, err)
	assert.Equal(t, first, *d.DateDelivered)
	assert.Len(t, f.notifications(t, owner.ID), 1)

	d, err = f.svc.UpdateDib(f.ctx, a.ID, d.ID, DibUpdate{IsDelivered: boolp(false)})
	require.NoError(t, err)
	assert.False(t, d.IsDelivered)
	assert.Nil(t, d.DateDelivered)
}

func TestListGifts_DibVisibility(t *testing.T) {
	f := newFixture(t)
	owner, a, b := f.user(t, "owner"), f.user(t, "a"), f.user(t, "b")
	l := f.list(t, owner, "everyone")
	g := f.gift(t, owner, l, 2, 30)

	_, err := f.svc.CreateDib(f.ctx, a.ID, g.ID, DibInput{})
	require.NoError(t, err)
	_, err = f.svc.CreateDib(f.ctx, b.ID, g.ID, DibInput{})
	require.NoError(t, err)

	ownerView, err := f.svc.ListGifts(f.ctx, owner.ID, l.ID)
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	assert.Empty(t, ownerView[0].Dibs)

	aView, err := f.svc.ListGifts(f.ctx, a.ID, l.ID)
	require.NoError(t, err)
	require.Len(t, aView[0].Dibs, 1)
	assert.Equal(t, a.ID, aView[0].Dibs[0].UserID)
	assert.Equal(t, "a", aView[0].Dibs[0].User.FirstName)

	_, err = f.svc.SetReceived(f.ctx, owner.ID, g.ID, true)
	require.NoError(t, err)

	ownerView, err = f.svc.ListGifts(f.ctx, owner.ID, l.ID)
	require.NoError(t, err)
	assert.Len(t, ownerView[0].Dibs, 2)

	for _, claimant := range []*models.User{a, b} {
		got := f.notifications(t, claimant.ID)
		require.Len(t, got, 1)
		assert.Equal(t, models.NotificationGiftReceived, got[0].Type)
	}
}

func TestUpdateGift_QuantityBelowClaimed(t *testing.T) {
	f := newFixture(t)
	owner, a := f.user(t, "owner"), f.user(t, "a")
	g := f.gift(t, owner, f.list(t, owner, "everyone"), 3, 30)

	_, err := f.svc.CreateDib(f.ctx, a.ID, g.ID, DibInput{Quantity: intp(2)})
	require.NoError(t, err)

	_, err = f.svc.UpdateGift(f.ctx, owner.ID, g.ID, GiftInput{Quantity: intp(1)})
	assert.Equal(t, "quantity", apperr.FieldsOf(err)[0].Field)

	updated, err := f.svc.UpdateGift(f.ctx, owner.ID, g.ID, GiftInput{Quantity: intp(2), Name: strp("Socks")})
	require.NoError(t, err)
	assert.Equal(t, "Socks", updated.Name)
}

func TestAddComment_NotifyRule(t *testing.T) {
	f := newFixture(t)
	owner, a, b := f.user(t, "owner"), f.user(t, "a"), f.user(t, "b")
	g := f.gift(t, owner, f.list(t, owner, "everyone"), 1, 30)

	_, err := f.svc.AddComment(f.ctx, owner.ID, g.ID, "Blue please")
	require.NoError(t, err)
	_, err = f.svc.AddComment(f.ctx, a.ID, g.ID, "Any size?")
	require.NoError(t, err)
	_, err = f.svc.AddComment(f.ctx, a.ID, g.ID, "Found it")
	require.NoError(t, err)
	c, err := f.svc.AddComment(f.ctx, b.ID, g.ID, "Nice")
	require.NoError(t, err)
	assert.Equal(t, "b", c.User.FirstName)

	types := func(u *models.User) []models.NotificationType {
		out := []models.NotificationType{}
		for _, n := range f.notifications(t, u.ID) {
			out = append(out, n.Type)
		}
		return out
	}

	// newest first
	assert.Equal(t, []models.NotificationType{
		models.NotificationGiftComment,
		models.NotificationGiftComment,
		models.NotificationGiftComment,
	}, types(owner))
	assert.Equal(t, []models.NotificationType{models.NotificationGiftCommentAlso}, types(a))
	assert.Empty(t, types(b))

	_, err = f.svc.AddComment(f.ctx, a.ID, g.ID, "   ")
	assert.Equal(t, "body", apperr.FieldsOf(err)[0].Field)

	comments, err := f.svc.ListComments(f.ctx, b.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, comments, 4)
	assert.Equal(t, "owner", comments[0].User.FirstName)
}

func TestDeleteComment_Guarded(t *testing.T) {
	f := newFixture(t)
	owner, a := f.user(t, "owner"), f.user(t, "a")
	g := f.gift(t, owner, f.list(t, owner, "everyone"), 1, 30)
	c, err := f.svc.AddComment(f.ctx, a.ID, g.ID, "hi")
	require.NoError(t, err)

	err = f.svc.DeleteComment(f.ctx, owner.ID, c.ID)
	var perr *apperr.PermissionError
	require.True(t, isKind(err, &perr))
	require.NoError(t, f.svc.DeleteComment(f.ctx, a.ID, c.ID))
}

func TestRecipients_Totals(t *testing.T) {
	f := newFixture(t)
	viewer, recipient, other := f.user(t, "viewer"), f.user(t, "recipient"), f.user(t, "other")
	l := f.list(t, recipient, "everyone")
	paid := f.gift(t, recipient, l, 1, 20)
	unpaid := f.gift(t, recipient, l, 2, 8)

	_, err := f.svc.CreateDib(f.ctx, viewer.ID, paid.ID, DibInput{PricePaid: floatp(15)})
	require.NoError(t, err)
	_, err = f.svc.CreateDib(f.ctx, viewer.ID, unpaid.ID, DibInput{})
	require.NoError(t, err)
	_, err = f.svc.CreateDib(f.ctx, other.ID, unpaid.ID, DibInput{PricePaid: floatp(100)})
	require.NoError(t, err)

	recipients, err := f.svc.Recipients(f.ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	r := recipients[0]
	assert.Equal(t, "recipient", r.FirstName)
	assert.Equal(t, 23.0, r.TotalBudgeted)
	assert.Equal(t, 15.0, r.TotalPricePaid)
	require.Len(t, r.WishLists, 1)
	for _, g := range r.WishLists[0].Gifts {
		for _, d := range g.Dibs {
			assert.Equal(t, viewer.ID, d.UserID)
		}
	}

	empty, err := f.svc.Recipients(f.ctx, other.ID+100)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNotifications_ReadAndDelete(t *testing.T) {
	f := newFixture(t)
	ada, bo := f.user(t, "ada"), f.user(t, "bo")
	_, err := f.svc.Follow(f.ctx, ada.ID, bo.ID)
	require.NoError(t, err)
	n := f.notifications(t, bo.ID)[0]

	_, err = f.svc.MarkNotificationRead(f.ctx, ada.ID, n.ID, true)
	var perr *apperr.PermissionError
	require.True(t, isKind(err, &perr))

	read, err := f.svc.MarkNotificationRead(f.ctx, bo.ID, n.ID, true)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err := f.svc.ListNotifications(f.ctx, bo.ID, repository.NotificationFilters{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, f.svc.DeleteNotification(f.ctx, bo.ID, n.ID))
	assert.Empty(t, f.notifications(t, bo.ID))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")

	u, err := f.svc.UpdateProfile(f.ctx, ada.ID, ProfileInput{
		LastName: strp(" Lovelace "),
		NotificationSettings: models.NotificationSettings{
			models.NotificationGiftComment: {AllowEmail: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", u.LastName)
	assert.False(t, u.NotificationSettings.AllowsEmail(models.NotificationGiftComment))
	assert.True(t, u.NotificationSettings.AllowsEmail(models.NotificationGiftReceived))

	_, err = f.svc.UpdateProfile(f.ctx, ada.ID, ProfileInput{
		FirstName:            strp(""),
		NotificationSettings: models.NotificationSettings{"gift_lost": {}},
	})
	assert.Len(t, apperr.FieldsOf(err), 2)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	f := newFixture(t)
	ada, bo := f.user(t, "ada"), f.user(t, "bo")
	l := f.list(t, ada, "everyone")
	g := f.gift(t, ada, l, 1, 10)
	_, err := f.svc.CreateDib(f.ctx, bo.ID, g.ID, DibInput{})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAccount(f.ctx, ada.ID))

	_, err = f.svc.GetUser(f.ctx, ada.ID)
	var nf *apperr.NotFoundError
	require.True(t, isKind(err, &nf))

	recipients, err := f.svc.Recipients(f.ctx, bo.ID)
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestTelegramLinking(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")

	code, err := f.svc.IssueTelegramLinkCode(f.ctx, ada.ID)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	linked, err := f.svc.LinkTelegram(f.ctx, 555, code)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, linked.ID)

	_, err = f.svc.LinkTelegram(f.ctx, 555, code)
	assert.Equal(t, "code", apperr.FieldsOf(err)[0].Field)

	u, err := f.svc.UserByTelegramChat(f.ctx, 555)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, ada.ID, u.ID)
}
