package models

import "time"

// ExternalURL is a product link attached to a gift.
type ExternalURL struct {
	URL   string   `json:"url"`
	Price *float64 `json:"price,omitempty"`
}

// Gift represents an item on a wish list.
type Gift struct {
	ID              int64         `json:"id" db:"id"`
	UserID          int64         `json:"_user" db:"user_id"`
	WishListID      int64         `json:"_wishList" db:"wish_list_id"`
	Name            string        `json:"name" db:"name"`
	Budget          float64       `json:"budget" db:"budget"`
	Quantity        int           `json:"quantity" db:"quantity"`
	Priority        int           `json:"priority" db:"priority"`
	OrderInWishList int           `json:"orderInWishList" db:"order_in_wish_list"`
	IsReceived      bool          `json:"isReceived" db:"is_received"`
	ExternalURLs    []ExternalURL `json:"externalUrls" db:"external_urls"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
	Dibs            []Dib         `json:"dibs"`
}

// Dib is a user's claim to buy some quantity of a gift.
type Dib struct {
	ID            int64        `json:"id" db:"id"`
	GiftID        int64        `json:"_gift" db:"gift_id"`
	UserID        int64        `json:"_user" db:"user_id"`
	Quantity      int          `json:"quantity" db:"quantity"`
	PricePaid     *float64     `json:"pricePaid" db:"price_paid"`
	IsDelivered   bool         `json:"isDelivered" db:"is_delivered"`
	DateDelivered *time.Time   `json:"dateDelivered" db:"date_delivered"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
	User          *UserSummary `json:"user,omitempty"`
}
