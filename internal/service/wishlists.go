package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kerhoff/dibs/internal/access"
	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/dibs"
	"github.com/Kerhoff/dibs/internal/models"
)

// PrivacyInput is the privacy descriptor as sent by clients.
type PrivacyInput struct {
	Type  string  `json:"type"`
	Allow []int64 `json:"_allow"`
}

// WishListInput carries wish list fields. Nil fields are left as they are
// on update and take their defaults on create.
type WishListInput struct {
	Name    *string       `json:"name"`
	Kind    *string       `json:"kind"`
	Privacy *PrivacyInput `json:"privacy"`
}

func (in WishListInput) apply(list *models.WishList) error {
	var fields []apperr.FieldError

	if in.Name != nil {
		list.Name = strings.TrimSpace(*in.Name)
	}
	if list.Name == "" {
		fields = append(fields, apperr.Field("name", "is required"))
	}

	if in.Kind != nil {
		switch kind := models.WishListKind(*in.Kind); kind {
		case "":
			list.Kind = models.WishListKindWishList
		case models.WishListKindWishList, models.WishListKindRegistry:
			list.Kind = kind
		default:
			fields = append(fields, apperr.Field("kind", fmt.Sprintf("unknown kind %q", *in.Kind)))
		}
	}
	if list.Kind == "" {
		list.Kind = models.WishListKindWishList
	}

	if in.Privacy != nil {
		t, ok := models.ParsePrivacyType(in.Privacy.Type)
		if !ok {
			fields = append(fields, apperr.Field("privacy.type", fmt.Sprintf("unknown privacy type %q", in.Privacy.Type)))
		}
		list.Privacy = models.Privacy{Type: t, Allow: []int64{}}
		if t == models.PrivacyCustom {
			list.Privacy.Allow = uniqueIDs(in.Privacy.Allow)
		}
	}
	if list.Privacy.Type == "" {
		list.Privacy.Type = models.PrivacyEveryone
	}

	if len(fields) > 0 {
		return apperr.Validation(fields...)
	}
	return nil
}

// canView loads the owner's friendships only when the privacy type needs
// them.
func (s *Service) canView(ctx context.Context, viewerID int64, list *models.WishList) (bool, error) {
	var friendships []*models.Friendship
	if viewerID != list.UserID && list.Privacy.Type == models.PrivacyFriends {
		var err error
		friendships, err = s.Friendships.GetForUser(ctx, list.UserID)
		if err != nil {
			return false, fmt.Errorf("failed to get friendships of user %d: %w", list.UserID, err)
		}
	}
	return access.IsAuthorizedToView(viewerID, list, friendships), nil
}

// viewableList returns the wish list if viewerID may see it.
func (s *Service) viewableList(ctx context.Context, viewerID, listID int64) (*models.WishList, error) {
	if listID == 0 {
		return nil, apperr.MissingID("wishListId")
	}
	list, err := s.WishLists.GetByID(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wish list %d: %w", listID, err)
	}
	if list == nil {
		return nil, apperr.NotFound("wishList", listID)
	}
	ok, err := s.canView(ctx, viewerID, list)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Permission("wishList", listID, "not visible to requester")
	}
	return list, nil
}

// ListWishLists returns ownerID's lists that viewerID may see. The owner's
// friendships are fetched once for the whole batch.
func (s *Service) ListWishLists(ctx context.Context, viewerID, ownerID int64) ([]*models.WishList, error) {
	lists, err := s.WishLists.GetByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wish lists of user %d: %w", ownerID, err)
	}

	var friendships []*models.Friendship
	if viewerID != ownerID {
		friendships, err = s.Friendships.GetForUser(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get friendships of user %d: %w", ownerID, err)
		}
	}
	return access.FilterVisible(viewerID, lists, friendships), nil
}

// GetWishList returns the list with its gifts as viewerID may see them.
func (s *Service) GetWishList(ctx context.Context, viewerID, listID int64) (*models.WishList, error) {
	list, err := s.viewableList(ctx, viewerID, listID)
	if err != nil {
		return nil, err
	}
	gifts, err := s.giftsForViewer(ctx, viewerID, list)
	if err != nil {
		return nil, err
	}
	list.Gifts = gifts
	return list, nil
}

// ListGifts returns the gifts of a list with dibs filtered for viewerID.
func (s *Service) ListGifts(ctx context.Context, viewerID, listID int64) ([]models.Gift, error) {
	list, err := s.viewableList(ctx, viewerID, listID)
	if err != nil {
		return nil, err
	}
	return s.giftsForViewer(ctx, viewerID, list)
}

func (s *Service) giftsForViewer(ctx context.Context, viewerID int64, list *models.WishList) ([]models.Gift, error) {
	gifts, err := s.Gifts.GetByWishList(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gifts of wish list %d: %w", list.ID, err)
	}

	ids := make([]int64, 0, len(gifts))
	for _, g := range gifts {
		ids = append(ids, g.ID)
	}
	all, err := s.Dibs.GetByGifts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get dibs of wish list %d: %w", list.ID, err)
	}

	byGift := make(map[int64][]models.Dib, len(gifts))
	claimants := make([]int64, 0, len(all))
	for _, d := range all {
		byGift[d.GiftID] = append(byGift[d.GiftID], *d)
		claimants = append(claimants, d.UserID)
	}
	dir, err := s.directory(ctx, claimants)
	if err != nil {
		return nil, fmt.Errorf("failed to load claimants: %w", err)
	}

	out := make([]models.Gift, 0, len(gifts))
	for _, g := range gifts {
		g.Dibs = byGift[g.ID]
		out = append(out, dibs.FilterForViewer(g, list, viewerID, dir))
	}
	return out, nil
}

// CreateWishList creates a list owned by userID.
func (s *Service) CreateWishList(ctx context.Context, userID int64, input WishListInput) (*models.WishList, error) {
	list := &models.WishList{UserID: userID}
	if err := input.apply(list); err != nil {
		return nil, err
	}
	list, err := s.WishLists.Create(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("failed to create wish list: %w", err)
	}
	return list, nil
}

// UpdateWishList applies input to a list owned by userID.
func (s *Service) UpdateWishList(ctx context.Context, userID, listID int64, input WishListInput) (*models.WishList, error) {
	list, err := access.ConfirmOwnership(ctx, s.wishLists(), listID, userID)
	if err != nil {
		return nil, err
	}
	if err := input.apply(list); err != nil {
		return nil, err
	}
	list, err = s.WishLists.Update(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("failed to update wish list %d: %w", listID, err)
	}
	return list, nil
}

// DeleteWishList removes a list owned by userID together with its gifts.
func (s *Service) DeleteWishList(ctx context.Context, userID, listID int64) error {
	list, err := access.ConfirmOwnership(ctx, s.wishLists(), listID, userID)
	if err != nil {
		return err
	}
	if err := s.WishLists.Delete(ctx, list.ID); err != nil {
		return fmt.Errorf("failed to delete wish list %d: %w", listID, err)
	}
	return nil
}
