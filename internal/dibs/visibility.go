// Package dibs implements the claim rules: who may see which dib, how much
// of a gift can be claimed, delivery state, and the per-recipient summary.
package dibs

import "github.com/Kerhoff/dibs/internal/models"

// FilterForViewer returns a shallow copy of gift whose Dibs hold only what
// viewerID may see:
//   - the owner of an unreceived gift on an ordinary wish list sees nothing,
//   - the owner of a received gift, or of a gift on a registry, sees all,
//   - anyone else sees only their own dibs.
//
// Visible dibs carry the claimant's display name from dir.
func FilterForViewer(gift *models.Gift, list *models.WishList, viewerID int64, dir models.Directory) models.Gift {
	out := *gift
	out.Dibs = make([]models.Dib, 0, len(gift.Dibs))

	isOwner := gift.UserID == viewerID
	if isOwner && !gift.IsReceived && !list.IsRegistry() {
		return out
	}
	seeAll := isOwner

	for _, d := range gift.Dibs {
		if !seeAll && d.UserID != viewerID {
			continue
		}
		claimant := dir.Lookup(d.UserID)
		d.User = &claimant
		out.Dibs = append(out.Dibs, d)
	}
	return out
}
