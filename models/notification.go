package models

import "time"

const (
	ChannelEmail = "email"

	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

type NotificationLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string    `gorm:"index" json:"order_id"`
	Recipient string    `json:"recipient"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
