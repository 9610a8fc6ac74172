package dibs

import "github.com/Kerhoff/dibs/internal/models"

// ClaimedGift is a gift the viewer holds at least one dib on, with every
// dib on the gift, its wish list and its owner.
type ClaimedGift struct {
	Gift     *models.Gift
	WishList *models.WishList
	Owner    models.UserSummary
}

// RecipientWishList groups a recipient's claimed gifts by wish list.
type RecipientWishList struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Gifts []models.Gift `json:"gifts"`
}

// Recipient summarises everything the viewer has claimed from one person.
type Recipient struct {
	ID             int64               `json:"id"`
	FirstName      string              `json:"firstName"`
	LastName       string              `json:"lastName"`
	WishLists      []RecipientWishList `json:"wishLists"`
	TotalBudgeted  float64             `json:"totalBudgeted"`
	TotalPricePaid float64             `json:"totalPricePaid"`
}

// BuildRecipientView groups claimed gifts by owner and then by wish list,
// both in order of first appearance. Each gift keeps only the viewer's
// dibs. For every gift the budgeted amount is what the viewer recorded as
// paid, falling back to the gift budget when nothing was recorded.
func BuildRecipientView(viewerID int64, claimed []ClaimedGift, dir models.Directory) []Recipient {
	recipients := make([]Recipient, 0)
	byOwner := make(map[int64]int)
	byList := make(map[int64]map[int64]int)

	for _, c := range claimed {
		ownerID := c.Gift.UserID
		ri, ok := byOwner[ownerID]
		if !ok {
			ri = len(recipients)
			byOwner[ownerID] = ri
			byList[ownerID] = make(map[int64]int)
			recipients = append(recipients, Recipient{
				ID:        ownerID,
				FirstName: c.Owner.FirstName,
				LastName:  c.Owner.LastName,
				WishLists: []RecipientWishList{},
			})
		}
		r := &recipients[ri]

		li, ok := byList[ownerID][c.WishList.ID]
		if !ok {
			li = len(r.WishLists)
			byList[ownerID][c.WishList.ID] = li
			r.WishLists = append(r.WishLists, RecipientWishList{
				ID:    c.WishList.ID,
				Name:  c.WishList.Name,
				Gifts: []models.Gift{},
			})
		}

		gift := FilterForViewer(c.Gift, c.WishList, viewerID, dir)
		r.WishLists[li].Gifts = append(r.WishLists[li].Gifts, gift)

		paid, recorded := pricePaid(gift.Dibs)
		if recorded {
			r.TotalBudgeted += paid
		} else {
			r.TotalBudgeted += gift.Budget
		}
		r.TotalPricePaid += paid
	}

	return recipients
}

func pricePaid(dibs []models.Dib) (float64, bool) {
	var total float64
	recorded := false
	for _, d := range dibs {
		if d.PricePaid != nil {
			total += *d.PricePaid
			recorded = true
		}
	}
	return total, recorded
}
