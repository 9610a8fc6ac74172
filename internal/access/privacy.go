package access

import "github.com/Kerhoff/dibs/internal/models"

// IsAuthorizedToView decides whether viewerID may see the wish list.
// friendships must contain the owner's edges in both directions; it is
// fetched once by the caller and reused across the owner's lists.
func IsAuthorizedToView(viewerID int64, list *models.WishList, friendships []*models.Friendship) bool {
	if viewerID == list.UserID {
		return true
	}

	switch list.Privacy.Type {
	case models.PrivacyEveryone, "":
		return true
	case models.PrivacyMe:
		return false
	case models.PrivacyFriends:
		for _, f := range friendships {
			if f.Connects(list.UserID, viewerID) {
				return true
			}
		}
		return false
	case models.PrivacyCustom:
		for _, id := range list.Privacy.Allow {
			if id == viewerID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// FilterVisible returns the lists viewerID may see, preserving order.
func FilterVisible(viewerID int64, lists []*models.WishList, friendships []*models.Friendship) []*models.WishList {
	visible := make([]*models.WishList, 0, len(lists))
	for _, list := range lists {
		if IsAuthorizedToView(viewerID, list, friendships) {
			visible = append(visible, list)
		}
	}
	return visible
}
