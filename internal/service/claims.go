package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Kerhoff/dibs/internal/access"
	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/dibs"
	"github.com/Kerhoff/dibs/internal/metrics"
	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/notify"
)

// DibInput is a claim request. A missing quantity means one unit.
type DibInput struct {
	Quantity  *int     `json:"quantity"`
	PricePaid *float64 `json:"pricePaid"`
}

// DibUpdate changes a claim. Nil fields are left as they are.
type DibUpdate struct {
	Quantity    *int     `json:"quantity"`
	PricePaid   *float64 `json:"pricePaid"`
	IsDelivered *bool    `json:"isDelivered"`
}

// loadGiftAndDibs fetches a gift and its dibs concurrently.
func (s *Service) loadGiftAndDibs(ctx context.Context, giftID int64) (*models.Gift, []*models.Dib, error) {
	var (
		gift     *models.Gift
		existing []*models.Dib
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gift, err = s.Gifts.GetByID(gctx, giftID)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.Dibs.GetByGift(gctx, giftID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load gift %d with dibs: %w", giftID, err)
	}
	return gift, existing, nil
}

// validateDib checks candidate against the gift's remaining supply.
func (s *Service) validateDib(ctx context.Context, candidate *models.Dib, excludeDibID int64) (*models.Gift, error) {
	gift, existing, err := s.loadGiftAndDibs(ctx, candidate.GiftID)
	if err != nil {
		return nil, err
	}
	if err := dibs.ValidateQuantity(gift, existing, candidate, excludeDibID); err != nil {
		return nil, err
	}
	return gift, nil
}

func validatePrice(price *float64) error {
	if price != nil && *price < 0 {
		return apperr.Validation(apperr.Field("pricePaid", "must not be negative"))
	}
	return nil
}

// CreateDib claims part of a gift for userID. Owners cannot dib their own
// gifts and the gift's wish list must be visible to the claimant.
func (s *Service) CreateDib(ctx context.Context, userID, giftID int64, input DibInput) (*models.Dib, error) {
	if giftID == 0 {
		return nil, apperr.MissingID("giftId")
	}
	if err := validatePrice(input.PricePaid); err != nil {
		return nil, err
	}

	candidate := &models.Dib{
		GiftID:    giftID,
		UserID:    userID,
		Quantity:  dibs.QuantityOrDefault(input.Quantity),
		PricePaid: input.PricePaid,
	}

	gift, existing, err := s.loadGiftAndDibs(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if gift != nil {
		if gift.UserID == userID {
			metrics.RecordDib("rejected")
			return nil, apperr.Permission("gift", giftID, "cannot dib your own gift")
		}
		if _, err := s.viewableList(ctx, userID, gift.WishListID); err != nil {
			metrics.RecordDib("rejected")
			return nil, err
		}
		for _, d := range existing {
			if d.UserID == userID {
				metrics.RecordDib("rejected")
				return nil, apperr.Validation(apperr.Field("giftId", "has already been dibbed by you"))
			}
		}
	}
	if err := dibs.ValidateQuantity(gift, existing, candidate, 0); err != nil {
		metrics.RecordDib("rejected")
		return nil, err
	}

	d, err := s.Dibs.Create(ctx, candidate)
	if err != nil {
		metrics.RecordDib("failed")
		return nil, fmt.Errorf("failed to create dib: %w", err)
	}
	metrics.RecordDib("created")

	claimant, err := s.summary(ctx, userID)
	if err == nil {
		d.User = &claimant
	}
	return d, nil
}

// UpdateDib changes quantity, price paid or delivery of a dib owned by
// userID. The gift owner is told when the dib becomes delivered.
func (s *Service) UpdateDib(ctx context.Context, userID, dibID int64, input DibUpdate) (*models.Dib, error) {
	d, err := access.ConfirmOwnership(ctx, s.dibs(), dibID, userID)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.PricePaid); err != nil {
		return nil, err
	}

	var gift *models.Gift
	if input.Quantity != nil {
		d.Quantity = *input.Quantity
		if gift, err = s.validateDib(ctx, d, d.ID); err != nil {
			return nil, err
		}
	}
	if input.PricePaid != nil {
		d.PricePaid = input.PricePaid
	}

	delivered := false
	if input.IsDelivered != nil {
		delivered = dibs.ApplyDelivery(d, *input.IsDelivered, s.now())
	}

	d, err = s.Dibs.Update(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to update dib %d: %w", dibID, err)
	}

	claimant, err := s.summary(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Errorf("Failed to load user %d", userID)
		claimant = models.UserSummary{ID: userID}
	}
	d.User = &claimant

	if delivered {
		if gift == nil {
			gift, err = s.Gifts.GetByID(ctx, d.GiftID)
			if err != nil {
				s.logger.WithError(err).Errorf("Failed to load gift %d for notifications", d.GiftID)
			}
		}
		if gift != nil {
			s.notify(ctx, models.NotificationGiftDelivered, gift.UserID, claimant, notify.Subject{Gift: gift, Dib: d})
		}
	}
	return d, nil
}

// DeleteDib releases a dib owned by userID.
func (s *Service) DeleteDib(ctx context.Context, userID, dibID int64) error {
	d, err := access.ConfirmOwnership(ctx, s.dibs(), dibID, userID)
	if err != nil {
		return err
	}
	if err := s.Dibs.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to delete dib %d: %w", dibID, err)
	}
	return nil
}

// Recipients summarises, per gift owner, everything viewerID has dibbed.
func (s *Service) Recipients(ctx context.Context, viewerID int64) ([]dibs.Recipient, error) {
	gifts, err := s.Gifts.GetDibbedBy(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dibbed gifts of user %d: %w", viewerID, err)
	}
	if len(gifts) == 0 {
		return []dibs.Recipient{}, nil
	}

	giftIDs := make([]int64, 0, len(gifts))
	listIDs := make([]int64, 0, len(gifts))
	for _, g := range gifts {
		giftIDs = append(giftIDs, g.ID)
		listIDs = append(listIDs, g.WishListID)
	}

	var (
		all   []*models.Dib
		lists []*models.WishList
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		all, err = s.Dibs.GetByGifts(gctx, giftIDs)
		return err
	})
	eg.Go(func() error {
		var err error
		lists, err = s.WishLists.GetByIDs(gctx, uniqueIDs(listIDs))
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load claimed gifts: %w", err)
	}

	byGift := make(map[int64][]models.Dib, len(gifts))
	people := make([]int64, 0, len(all)+len(gifts))
	for _, d := range all {
		byGift[d.GiftID] = append(byGift[d.GiftID], *d)
		people = append(people, d.UserID)
	}
	listByID := make(map[int64]*models.WishList, len(lists))
	for _, l := range lists {
		listByID[l.ID] = l
	}
	for _, g := range gifts {
		people = append(people, g.UserID)
	}
	dir, err := s.directory(ctx, people)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	claimed := make([]dibs.ClaimedGift, 0, len(gifts))
	for _, g := range gifts {
		list, ok := listByID[g.WishListID]
		if !ok {
			continue
		}
		g.Dibs = byGift[g.ID]
		claimed = append(claimed, dibs.ClaimedGift{Gift: g, WishList: list, Owner: dir.Lookup(g.UserID)})
	}
	return dibs.BuildRecipientView(viewerID, claimed, dir), nil
}
