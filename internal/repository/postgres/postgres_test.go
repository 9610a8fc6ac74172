package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/repository"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var userRowColumns = []string{
	"id", "first_name", "last_name", "email", "password_hash", "facebook_id",
	"email_address_verified", "notification_settings", "avatar_url", "telegram_chat_id",
	"telegram_link_code", "created_at", "updated_at",
}

func TestConstraintError(t *testing.T) {
	err := constraintError(&pq.Error{Code: "23505", Constraint: "dibs_gift_user_key"})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "giftId", verr.Fields[0].Field)

	err = constraintError(&pq.Error{Code: "23514", Constraint: "unknown_check", Message: "bad"})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), "bad")

	assert.Nil(t, constraintError(&pq.Error{Code: "23503"}))
	assert.Nil(t, constraintError(errors.New("connection reset")))
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			7, "Ada", "Lovelace", "ada@example.com", "", nil,
			true, []byte(`{"gift_comment":{"allowEmail":false}}`), "", int64(99),
			nil, now, now,
		))

	user, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ada", user.FirstName)
	assert.False(t, user.NotificationSettings.AllowsEmail(models.NotificationGiftComment))
	require.NotNil(t, user.TelegramChatID)
	assert.Equal(t, int64(99), *user.TelegramChatID)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ").
		WithArgs(int64(8)).
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetByID(context.Background(), 8)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "ada@example.com"})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	assert.Equal(t, "email", apperr.FieldsOf(err)[0].Field)
}

func TestUserRepository_LinkTelegramChat_UnknownCode(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("UPDATE users").
		WithArgs("nope", int64(5), sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	user, err := repo.LinkTelegramChat(context.Background(), "nope", 5)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 3)
	assert.Equal(t, 404, apperr.HTTPStatus(err))
}

func TestWishListRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWishListRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM wish_lists WHERE id = ").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "kind", "privacy_type", "privacy_allow", "created_at", "updated_at",
		}).AddRow(4, 1, "Birthday", "wishlist", "custom", "{2,3}", now, now))

	list, err := repo.GetByID(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Equal(t, models.PrivacyCustom, list.Privacy.Type)
	assert.Equal(t, []int64{2, 3}, list.Privacy.Allow)
}

func TestGiftRepository_GetByWishList(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGiftRepository(db)
	now := time.Now()

	cols := []string{
		"id", "user_id", "wish_list_id", "name", "budget", "quantity", "priority",
		"order_in_wish_list", "is_received", "external_urls", "created_at", "updated_at",
	}
	mock.ExpectQuery("FROM gifts g\\s+WHERE g.wish_list_id = ").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(10, 1, 4, "Lamp", 40.0, 2, 1, 0, false, []byte(`[{"url":"https://shop.example/lamp","price":39.5}]`), now, now).
			AddRow(11, 1, 4, "Socks", 5.0, 1, 0, 1, false, []byte(`[]`), now, now))

	gifts, err := repo.GetByWishList(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, gifts, 2)
	assert.Equal(t, "https://shop.example/lamp", gifts[0].ExternalURLs[0].URL)
	assert.Equal(t, 39.5, *gifts[0].ExternalURLs[0].Price)
	assert.Empty(t, gifts[1].ExternalURLs)
	assert.NotNil(t, gifts[1].ExternalURLs)
}

func TestGiftRepository_Update_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGiftRepository(db)

	mock.ExpectQuery("UPDATE gifts").WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.Gift{ID: 12, Quantity: 1})
	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "gift", nf.Resource)
}

func TestDibRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDibRepository(db)

	mock.ExpectQuery("INSERT INTO dibs").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "dibs_gift_user_key"})

	_, err := repo.Create(context.Background(), &models.Dib{GiftID: 1, UserID: 2, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, "giftId", apperr.FieldsOf(err)[0].Field)
}

func TestDibRepository_GetByGifts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDibRepository(db)
	now := time.Now()

	cols := []string{"id", "gift_id", "user_id", "quantity", "price_paid", "is_delivered", "date_delivered", "created_at", "updated_at"}
	mock.ExpectQuery("FROM dibs WHERE gift_id = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 10, 2, 1, nil, false, nil, now, now).
			AddRow(2, 11, 3, 2, 12.5, true, now, now, now))

	dibs, err := repo.GetByGifts(context.Background(), []int64{10, 11})
	require.NoError(t, err)
	require.Len(t, dibs, 2)
	assert.Nil(t, dibs[0].PricePaid)
	require.NotNil(t, dibs[1].PricePaid)
	assert.Equal(t, 12.5, *dibs[1].PricePaid)
	assert.NotNil(t, dibs[1].DateDelivered)
}

func TestDibRepository_GetByGifts_Empty(t *testing.T) {
	db, _ := newMock(t)
	repo := NewDibRepository(db)

	dibs, err := repo.GetByGifts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, dibs)
}

func TestNotificationRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(int64(5), "gift_comment", nil, `{"id":10,"name":"Lamp","_wishList":4,"_user":5}`, nil,
			sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

	n, err := repo.Create(context.Background(), &models.Notification{
		UserID:  5,
		Type:    models.NotificationGiftComment,
		Gift:    &models.GiftSnapshot{ID: 10, Name: "Lamp", WishListID: 4, OwnerID: 5},
		Comment: &models.CommentSnapshot{ID: 3, Body: "nice", UserID: 6, FirstName: "Bo"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)
}

func TestNotificationRepository_GetByUser_Filters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)
	now := time.Now()

	cols := []string{"id", "user_id", "type", "follower", "gift", "dib", "comment", "is_read", "created_at", "updated_at"}
	mock.ExpectQuery("WHERE user_id = \\$1 AND is_read = FALSE ORDER BY created_at DESC, id DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs(int64(5), 10, 20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 5, "friendship_new", []byte(`{"id":6,"firstName":"Bo","lastName":"Li"}`), nil, nil, nil, false, now, now))

	list, err := repo.GetByUser(context.Background(), 5, repository.NotificationFilters{UnreadOnly: true, Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Follower)
	assert.Equal(t, "Bo", list[0].Follower.FirstName)
	assert.Nil(t, list[0].Gift)
}

func TestCommentRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectExec("DELETE FROM comments").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 9))
}
