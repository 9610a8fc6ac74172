// Package memory is an in-process implementation of the repository
// interfaces. It mirrors the postgres constraints and cascades and backs the
// service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/repository"
)

// Store holds every collection behind one lock.
type Store struct {
	mu            sync.Mutex
	seq           int64
	users         map[int64]models.User
	friendships   map[int64]models.Friendship
	wishLists     map[int64]models.WishList
	gifts         map[int64]models.Gift
	dibs          map[int64]models.Dib
	comments      map[int64]models.Comment
	notifications map[int64]models.Notification
}

func NewStore() *Store {
	return &Store{
		users:         make(map[int64]models.User),
		friendships:   make(map[int64]models.Friendship),
		wishLists:     make(map[int64]models.WishList),
		gifts:         make(map[int64]models.Gift),
		dibs:          make(map[int64]models.Dib),
		comments:      make(map[int64]models.Comment),
		notifications: make(map[int64]models.Notification),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Friendships() repository.FriendshipRepository     { return friendshipRepo{s} }
func (s *Store) WishLists() repository.WishListRepository         { return wishListRepo{s} }
func (s *Store) Gifts() repository.GiftRepository                 { return giftRepo{s} }
func (s *Store) Dibs() repository.DibRepository                   { return dibRepo{s} }
func (s *Store) Comments() repository.CommentRepository           { return commentRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

func sortByID[T any](items []*T, id func(*T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

// users

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return nil, apperr.Validation(apperr.Field("email", "is already registered"))
		}
	}
	u.ID = r.s.nextID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, &u)
		}
	}
	sortByID(out, func(u *models.User) int64 { return u.ID })
	return out, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) GetByTelegramChatID(_ context.Context, chatID int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return nil, apperr.NotFound("user", u.ID)
	}
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.Email = u.Email
	cur.EmailAddressVerified = u.EmailAddressVerified
	cur.NotificationSettings = u.NotificationSettings
	cur.AvatarURL = u.AvatarURL
	cur.UpdatedAt = time.Now()
	r.s.users[u.ID] = cur
	out := cur
	return &out, nil
}

func (r userRepo) SetTelegramLinkCode(_ context.Context, userID int64, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperr.NotFound("user", userID)
	}
	u.TelegramLinkCode = &code
	r.s.users[userID] = u
	return nil
}

func (r userRepo) LinkTelegramChat(_ context.Context, code string, chatID int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var holder *models.User
	for _, u := range r.s.users {
		if u.TelegramLinkCode != nil && *u.TelegramLinkCode == code {
			u := u
			holder = &u
			break
		}
	}
	if holder == nil {
		return nil, nil
	}
	for _, u := range r.s.users {
		if u.ID != holder.ID && u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			return nil, apperr.Validation(apperr.Field("telegramChatId", "is already linked to another account"))
		}
	}
	chat := chatID
	holder.TelegramChatID = &chat
	holder.TelegramLinkCode = nil
	r.s.users[holder.ID] = *holder
	out := *holder
	return &out, nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperr.NotFound("user", id)
	}
	delete(r.s.users, id)
	for fid, f := range r.s.friendships {
		if f.UserID == id || f.FriendID == id {
			delete(r.s.friendships, fid)
		}
	}
	for lid, l := range r.s.wishLists {
		if l.UserID == id {
			r.s.deleteWishListLocked(lid)
		}
	}
	for did, d := range r.s.dibs {
		if d.UserID == id {
			delete(r.s.dibs, did)
		}
	}
	for cid, c := range r.s.comments {
		if c.UserID == id {
			delete(r.s.comments, cid)
		}
	}
	for nid, n := range r.s.notifications {
		if n.UserID == id {
			delete(r.s.notifications, nid)
		}
	}
	return nil
}

// friendships

type friendshipRepo struct{ s *Store }

func (r friendshipRepo) Create(_ context.Context, f *models.Friendship) (*models.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f.UserID == f.FriendID {
		return nil, apperr.Validation(apperr.Field("friendId", "cannot follow yourself"))
	}
	for _, other := range r.s.friendships {
		if other.UserID == f.UserID && other.FriendID == f.FriendID {
			return nil, apperr.Validation(apperr.Field("friendId", "is already followed"))
		}
	}
	f.ID = r.s.nextID()
	f.CreatedAt = time.Now()
	r.s.friendships[f.ID] = *f
	out := *f
	return &out, nil
}

func (r friendshipRepo) GetByID(_ context.Context, id int64) (*models.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.friendships[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r friendshipRepo) filter(keep func(models.Friendship) bool) []*models.Friendship {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Friendship
	for _, f := range r.s.friendships {
		if keep(f) {
			f := f
			out = append(out, &f)
		}
	}
	sortByID(out, func(f *models.Friendship) int64 { return f.ID })
	return out
}

func (r friendshipRepo) GetFollowing(_ context.Context, userID int64) ([]*models.Friendship, error) {
	return r.filter(func(f models.Friendship) bool { return f.UserID == userID }), nil
}

func (r friendshipRepo) GetFollowers(_ context.Context, userID int64) ([]*models.Friendship, error) {
	return r.filter(func(f models.Friendship) bool { return f.FriendID == userID }), nil
}

func (r friendshipRepo) GetForUser(_ context.Context, userID int64) ([]*models.Friendship, error) {
	return r.filter(func(f models.Friendship) bool { return f.UserID == userID || f.FriendID == userID }), nil
}

func (r friendshipRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.friendships[id]; !ok {
		return apperr.NotFound("friendship", id)
	}
	delete(r.s.friendships, id)
	return nil
}

// wish lists

type wishListRepo struct{ s *Store }

func copyList(l models.WishList) *models.WishList {
	l.Privacy.Allow = append([]int64{}, l.Privacy.Allow...)
	l.Gifts = nil
	return &l
}

func (r wishListRepo) Create(_ context.Context, l *models.WishList) (*models.WishList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	r.s.wishLists[l.ID] = *copyList(*l)
	return copyList(*l), nil
}

func (r wishListRepo) GetByID(_ context.Context, id int64) (*models.WishList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.wishLists[id]
	if !ok {
		return nil, nil
	}
	return copyList(l), nil
}

func (r wishListRepo) GetByIDs(_ context.Context, ids []int64) ([]*models.WishList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.WishList
	for _, id := range ids {
		if l, ok := r.s.wishLists[id]; ok {
			out = append(out, copyList(l))
		}
	}
	return out, nil
}

func (r wishListRepo) GetByUser(_ context.Context, userID int64) ([]*models.WishList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.WishList
	for _, l := range r.s.wishLists {
		if l.UserID == userID {
			out = append(out, copyList(l))
		}
	}
	sortByID(out, func(l *models.WishList) int64 { return l.ID })
	return out, nil
}

func (r wishListRepo) Update(_ context.Context, l *models.WishList) (*models.WishList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wishLists[l.ID]; !ok {
		return nil, apperr.NotFound("wishList", l.ID)
	}
	l.UpdatedAt = time.Now()
	r.s.wishLists[l.ID] = *copyList(*l)
	return copyList(*l), nil
}

func (r wishListRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wishLists[id]; !ok {
		return apperr.NotFound("wishList", id)
	}
	r.s.deleteWishListLocked(id)
	return nil
}

func (s *Store) deleteWishListLocked(id int64) {
	delete(s.wishLists, id)
	for gid, g := range s.gifts {
		if g.WishListID == id {
			s.deleteGiftLocked(gid)
		}
	}
}

func (s *Store) deleteGiftLocked(id int64) {
	delete(s.gifts, id)
	for did, d := range s.dibs {
		if d.GiftID == id {
			delete(s.dibs, did)
		}
	}
	for cid, c := range s.comments {
		if c.GiftID == id {
			delete(s.comments, cid)
		}
	}
}

// gifts

type giftRepo struct{ s *Store }

func copyGift(g models.Gift) *models.Gift {
	g.ExternalURLs = append([]models.ExternalURL{}, g.ExternalURLs...)
	g.Dibs = nil
	return &g
}

func (r giftRepo) Create(_ context.Context, g *models.Gift) (*models.Gift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g.Quantity == 0 {
		g.Quantity = 1
	}
	if g.Quantity < 1 {
		return nil, apperr.Validation(apperr.Field("quantity", "must be at least 1"))
	}
	g.ID = r.s.nextID()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	r.s.gifts[g.ID] = *copyGift(*g)
	return copyGift(*g), nil
}

func (r giftRepo) GetByID(_ context.Context, id int64) (*models.Gift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.gifts[id]
	if !ok {
		return nil, nil
	}
	return copyGift(g), nil
}

func (r giftRepo) GetByWishList(_ context.Context, wishListID int64) ([]*models.Gift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Gift
	for _, g := range r.s.gifts {
		if g.WishListID == wishListID {
			out = append(out, copyGift(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderInWishList != out[j].OrderInWishList {
			return out[i].OrderInWishList < out[j].OrderInWishList
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r giftRepo) GetDibbedBy(_ context.Context, userID int64) ([]*models.Gift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var mine []models.Dib
	for _, d := range r.s.dibs {
		if d.UserID == userID {
			mine = append(mine, d)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].ID < mine[j].ID })
	var out []*models.Gift
	for _, d := range mine {
		if g, ok := r.s.gifts[d.GiftID]; ok {
			out = append(out, copyGift(g))
		}
	}
	return out, nil
}

func (r giftRepo) Update(_ context.Context, g *models.Gift) (*models.Gift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.gifts[g.ID]; !ok {
		return nil, apperr.NotFound("gift", g.ID)
	}
	if g.Quantity < 1 {
		return nil, apperr.Validation(apperr.Field("quantity", "must be at least 1"))
	}
	g.UpdatedAt = time.Now()
	r.s.gifts[g.ID] = *copyGift(*g)
	return copyGift(*g), nil
}

func (r giftRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.gifts[id]; !ok {
		return apperr.NotFound("gift", id)
	}
	r.s.deleteGiftLocked(id)
	return nil
}

// dibs

type dibRepo struct{ s *Store }

func copyDib(d models.Dib) *models.Dib {
	d.User = nil
	return &d
}

func (r dibRepo) Create(_ context.Context, d *models.Dib) (*models.Dib, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d.Quantity < 1 {
		return nil, apperr.Validation(apperr.Field("quantity", "must be at least 1"))
	}
	for _, other := range r.s.dibs {
		if other.GiftID == d.GiftID && other.UserID == d.UserID {
			return nil, apperr.Validation(apperr.Field("giftId", "has already been dibbed by you"))
		}
	}
	d.ID = r.s.nextID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	r.s.dibs[d.ID] = *copyDib(*d)
	return copyDib(*d), nil
}

func (r dibRepo) GetByID(_ context.Context, id int64) (*models.Dib, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.dibs[id]
	if !ok {
		return nil, nil
	}
	return copyDib(d), nil
}

func (r dibRepo) GetByGift(ctx context.Context, giftID int64) ([]*models.Dib, error) {
	return r.GetByGifts(ctx, []int64{giftID})
}

func (r dibRepo) GetByGifts(_ context.Context, giftIDs []int64) ([]*models.Dib, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[int64]bool, len(giftIDs))
	for _, id := range giftIDs {
		want[id] = true
	}
	var out []*models.Dib
	for _, d := range r.s.dibs {
		if want[d.GiftID] {
			out = append(out, copyDib(d))
		}
	}
	sortByID(out, func(d *models.Dib) int64 { return d.ID })
	return out, nil
}

func (r dibRepo) Update(_ context.Context, d *models.Dib) (*models.Dib, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.dibs[d.ID]; !ok {
		return nil, apperr.NotFound("dib", d.ID)
	}
	if d.Quantity < 1 {
		return nil, apperr.Validation(apperr.Field("quantity", "must be at least 1"))
	}
	d.UpdatedAt = time.Now()
	r.s.dibs[d.ID] = *copyDib(*d)
	return copyDib(*d), nil
}

func (r dibRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.dibs[id]; !ok {
		return apperr.NotFound("dib", id)
	}
	delete(r.s.dibs, id)
	return nil
}

// comments

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.nextID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	stored.User = nil
	r.s.comments[c.ID] = stored
	return &stored, nil
}

func (r commentRepo) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r commentRepo) GetByGift(_ context.Context, giftID int64) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.s.comments {
		if c.GiftID == giftID {
			c := c
			out = append(out, &c)
		}
	}
	sortByID(out, func(c *models.Comment) int64 { return c.ID })
	return out, nil
}

func (r commentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return apperr.NotFound("comment", id)
	}
	delete(r.s.comments, id)
	return nil
}

// notifications

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.nextID()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	r.s.notifications[n.ID] = *n
	out := *n
	return &out, nil
}

func (r notificationRepo) GetByID(_ context.Context, id int64) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r notificationRepo) GetByUser(_ context.Context, userID int64, filters repository.NotificationFilters) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.UserID != userID || (filters.UnreadOnly && n.IsRead) {
			continue
		}
		n := n
		out = append(out, &n)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r notificationRepo) Update(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.notifications[n.ID]
	if !ok {
		return nil, apperr.NotFound("notification", n.ID)
	}
	cur.IsRead = n.IsRead
	cur.UpdatedAt = time.Now()
	r.s.notifications[n.ID] = cur
	out := cur
	return &out, nil
}

func (r notificationRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[id]; !ok {
		return apperr.NotFound("notification", id)
	}
	delete(r.s.notifications, id)
	return nil
}
