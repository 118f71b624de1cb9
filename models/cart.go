package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a cart. A cart holds at most one line per product.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"` // minor currency units
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url"`
}

// Cart is the guest-cart document stored in Redis. OwnerID is the anonymous
// session id; the logged-in cart lives in Postgres as UserCartItem rows.
type Cart struct {
	OwnerID   string     `json:"owner_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Subtotal returns the sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() int64 {
	return SubtotalOf(c.Items)
}

func SubtotalOf(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	return total
}

// UserCartItem is one persisted cart line of a logged-in user.
type UserCartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_product" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_product" json:"product_id"`
	Name      string    `gorm:"not null" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (i UserCartItem) ToCartItem() CartItem {
	return CartItem{
		ProductID: i.ProductID,
		Name:      i.Name,
		UnitPrice: i.UnitPrice,
		Quantity:  i.Quantity,
		ImageURL:  i.ImageURL,
	}
}
