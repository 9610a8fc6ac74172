// Package access holds the authorization rules shared by every resource:
// document ownership and wish list privacy.
package access

import (
	"context"

	"github.com/Kerhoff/dibs/internal/apperr"
)

// Collection describes how to load a resource and read its owner. Each
// resource type declares one, so ownership checks are composed explicitly
// at every call site.
type Collection[T any] struct {
	// Name is used in NotFound and Permission errors, e.g. "gift".
	Name string
	// IDName is used in the "must be provided" message, e.g. "giftId".
	IDName string
	// Find returns nil, nil when no document has the id.
	Find func(ctx context.Context, id int64) (*T, error)
	// Owner returns the owner reference of a document.
	Owner func(*T) int64
}

// ConfirmOwnership loads the document with the given id and checks that it
// belongs to userID. The returned document is the one read from the store,
// ready to be mutated and persisted by the caller.
func ConfirmOwnership[T any](ctx context.Context, c Collection[T], id, userID int64) (*T, error) {
	if id == 0 {
		return nil, apperr.MissingID(c.IDName)
	}

	doc, err := c.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound(c.Name, id)
	}

	if c.Owner(doc) != userID {
		return nil, apperr.Permission(c.Name, id, "not owned by requester")
	}

	return doc, nil
}
