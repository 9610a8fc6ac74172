package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kerhoff/dibs/internal/access"
	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/notify"
)

// GiftInput carries gift fields. Nil fields are left as they are on update
// and take their defaults on create.
type GiftInput struct {
	Name            *string               `json:"name"`
	Budget          *float64              `json:"budget"`
	Quantity        *int                  `json:"quantity"`
	Priority        *int                  `json:"priority"`
	OrderInWishList *int                  `json:"orderInWishList"`
	ExternalURLs    *[]models.ExternalURL `json:"externalUrls"`
}

func (in GiftInput) apply(g *models.Gift) error {
	var fields []apperr.FieldError

	if in.Name != nil {
		g.Name = strings.TrimSpace(*in.Name)
	}
	if g.Name == "" {
		fields = append(fields, apperr.Field("name", "is required"))
	}
	if in.Budget != nil {
		if *in.Budget < 0 {
			fields = append(fields, apperr.Field("budget", "must not be negative"))
		}
		g.Budget = *in.Budget
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			fields = append(fields, apperr.Field("quantity", "must be at least 1"))
		}
		g.Quantity = *in.Quantity
	}
	if g.Quantity == 0 {
		g.Quantity = 1
	}
	if in.Priority != nil {
		g.Priority = *in.Priority
	}
	if in.OrderInWishList != nil {
		g.OrderInWishList = *in.OrderInWishList
	}
	if in.ExternalURLs != nil {
		urls := make([]models.ExternalURL, 0, len(*in.ExternalURLs))
		for _, u := range *in.ExternalURLs {
			u.URL = strings.TrimSpace(u.URL)
			if u.URL == "" {
				fields = append(fields, apperr.Field("externalUrls", "url is required"))
				continue
			}
			urls = append(urls, u)
		}
		g.ExternalURLs = urls
	}

	if len(fields) > 0 {
		return apperr.Validation(fields...)
	}
	return nil
}

// CreateGift adds a gift to a wish list owned by userID.
func (s *Service) CreateGift(ctx context.Context, userID, listID int64, input GiftInput) (*models.Gift, error) {
	list, err := access.ConfirmOwnership(ctx, s.wishLists(), listID, userID)
	if err != nil {
		return nil, err
	}

	gift := &models.Gift{UserID: userID, WishListID: list.ID, ExternalURLs: []models.ExternalURL{}}
	if err := input.apply(gift); err != nil {
		return nil, err
	}
	gift, err = s.Gifts.Create(ctx, gift)
	if err != nil {
		return nil, fmt.Errorf("failed to create gift: %w", err)
	}
	gift.Dibs = []models.Dib{}
	return gift, nil
}

// UpdateGift applies input to a gift owned by userID. The quantity cannot
// drop below what has already been dibbed.
func (s *Service) UpdateGift(ctx context.Context, userID, giftID int64, input GiftInput) (*models.Gift, error) {
	gift, err := access.ConfirmOwnership(ctx, s.gifts(), giftID, userID)
	if err != nil {
		return nil, err
	}
	if err := input.apply(gift); err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		existing, err := s.Dibs.GetByGift(ctx, gift.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get dibs of gift %d: %w", gift.ID, err)
		}
		claimed := 0
		for _, d := range existing {
			claimed += d.Quantity
		}
		if gift.Quantity < claimed {
			return nil, apperr.Validation(apperr.Field("quantity",
				fmt.Sprintf("cannot be less than the %d already dibbed", claimed)))
		}
	}

	gift, err = s.Gifts.Update(ctx, gift)
	if err != nil {
		return nil, fmt.Errorf("failed to update gift %d: %w", giftID, err)
	}
	return gift, nil
}

// DeleteGift removes a gift owned by userID with its dibs and comments.
func (s *Service) DeleteGift(ctx context.Context, userID, giftID int64) error {
	gift, err := access.ConfirmOwnership(ctx, s.gifts(), giftID, userID)
	if err != nil {
		return err
	}
	if err := s.Gifts.Delete(ctx, gift.ID); err != nil {
		return fmt.Errorf("failed to delete gift %d: %w", giftID, err)
	}
	return nil
}

// SetReceived marks a gift as received or not. Everyone holding a dib on it
// is told when it becomes received.
func (s *Service) SetReceived(ctx context.Context, userID, giftID int64, received bool) (*models.Gift, error) {
	gift, err := access.ConfirmOwnership(ctx, s.gifts(), giftID, userID)
	if err != nil {
		return nil, err
	}

	becameReceived := received && !gift.IsReceived
	gift.IsReceived = received
	gift, err = s.Gifts.Update(ctx, gift)
	if err != nil {
		return nil, fmt.Errorf("failed to update gift %d: %w", giftID, err)
	}
	if !becameReceived {
		return gift, nil
	}

	claims, err := s.Dibs.GetByGift(ctx, gift.ID)
	if err != nil {
		s.logger.WithError(err).Errorf("Failed to load dibs of gift %d for notifications", gift.ID)
		return gift, nil
	}
	owner, err := s.summary(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Errorf("Failed to load user %d for notifications", userID)
		return gift, nil
	}
	for _, d := range claims {
		s.notify(ctx, models.NotificationGiftReceived, d.UserID, owner, notify.Subject{Gift: gift, Dib: d})
	}
	return gift, nil
}

// ListComments returns a gift's comments, oldest first, if viewerID may see
// the gift's wish list.
func (s *Service) ListComments(ctx context.Context, viewerID, giftID int64) ([]*models.Comment, error) {
	gift, err := s.viewableGift(ctx, viewerID, giftID)
	if err != nil {
		return nil, err
	}

	comments, err := s.Comments.GetByGift(ctx, gift.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments of gift %d: %w", gift.ID, err)
	}

	authors := make([]int64, 0, len(comments))
	for _, c := range comments {
		authors = append(authors, c.UserID)
	}
	dir, err := s.directory(ctx, authors)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment authors: %w", err)
	}
	for _, c := range comments {
		author := dir.Lookup(c.UserID)
		c.User = &author
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// AddComment posts a comment on a gift. The gift owner hears about it, and
// so does everyone who commented before, unless they are the owner or the
// commenter.
func (s *Service) AddComment(ctx context.Context, userID, giftID int64, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Validation(apperr.Field("body", "is required"))
	}

	gift, err := s.viewableGift(ctx, userID, giftID)
	if err != nil {
		return nil, err
	}

	earlier, err := s.Comments.GetByGift(ctx, gift.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments of gift %d: %w", gift.ID, err)
	}

	comment, err := s.Comments.Create(ctx, &models.Comment{GiftID: gift.ID, UserID: userID, Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	author, err := s.summary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	comment.User = &author

	subject := notify.Subject{Gift: gift, Comment: comment}
	s.notify(ctx, models.NotificationGiftComment, gift.UserID, author, subject)

	notified := map[int64]bool{userID: true, gift.UserID: true}
	for _, c := range earlier {
		if notified[c.UserID] {
			continue
		}
		notified[c.UserID] = true
		s.notify(ctx, models.NotificationGiftCommentAlso, c.UserID, author, subject)
	}

	return comment, nil
}

// DeleteComment removes a comment written by userID.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID int64) error {
	comment, err := access.ConfirmOwnership(ctx, s.comments(), commentID, userID)
	if err != nil {
		return err
	}
	if err := s.Comments.Delete(ctx, comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	return nil
}

// viewableGift returns the gift if viewerID may see its wish list.
func (s *Service) viewableGift(ctx context.Context, viewerID, giftID int64) (*models.Gift, error) {
	if giftID == 0 {
		return nil, apperr.MissingID("giftId")
	}
	gift, err := s.Gifts.GetByID(ctx, giftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gift %d: %w", giftID, err)
	}
	if gift == nil {
		return nil, apperr.NotFound("gift", giftID)
	}
	if _, err := s.viewableList(ctx, viewerID, gift.WishListID); err != nil {
		return nil, err
	}
	return gift, nil
}
