package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"

	ShippingMethodStandard = "standard"
	ShippingMethodExpress  = "express"
)

type Order struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string    `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerEmail   string    `gorm:"not null" json:"customer_email"`
	Subtotal        int64     `gorm:"not null" json:"subtotal"`
	ShippingFee     int64     `gorm:"not null" json:"shipping_fee"`
	Tax             int64     `gorm:"not null" json:"tax"`
	TotalAmount     int64     `gorm:"not null" json:"total_amount"`
	ShippingAddress string    `gorm:"not null" json:"shipping_address"`
	ShippingMethod  string    `gorm:"type:varchar(20);not null;default:'standard'" json:"shipping_method"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	OrderItems      []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is an immutable snapshot of a cart line at checkout time. Later
// catalog price changes never touch placed orders.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Name      string    `gorm:"not null" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	ImageURL  string    `json:"image_url"`
}
