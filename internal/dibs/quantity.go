package dibs

import (
	"fmt"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/models"
)

// DefaultQuantity is used when a claim does not say how many units it takes.
const DefaultQuantity = 1

// QuantityOrDefault resolves an optional requested quantity.
func QuantityOrDefault(q *int) int {
	if q == nil {
		return DefaultQuantity
	}
	return *q
}

// ValidateQuantity checks that candidate, together with every existing dib
// on the gift except excludeDibID, does not claim more than gift.Quantity.
// Pass excludeDibID = candidate.ID when updating so the dib is not counted
// twice; pass 0 when creating.
func ValidateQuantity(gift *models.Gift, existing []*models.Dib, candidate *models.Dib, excludeDibID int64) error {
	if gift == nil {
		return &apperr.GiftNotFoundError{GiftID: candidate.GiftID}
	}
	if candidate.Quantity < 1 {
		return apperr.Validation(apperr.Field("quantity", "must be at least 1"))
	}

	claimed := 0
	others := 0
	for _, d := range existing {
		if excludeDibID != 0 && d.ID == excludeDibID {
			continue
		}
		claimed += d.Quantity
		others++
	}

	// Single unit gifts with a single claim skip the sum.
	if gift.Quantity == 1 && candidate.Quantity == 1 && others == 0 {
		return nil
	}

	if claimed+candidate.Quantity > gift.Quantity {
		available := gift.Quantity - claimed
		if available < 0 {
			available = 0
		}
		return &apperr.DibValidationError{Fields: []apperr.FieldError{
			apperr.Field("quantity", fmt.Sprintf("exceeds the %d still available", available)),
		}}
	}
	return nil
}
