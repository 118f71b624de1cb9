package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/roshshop/backend/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, log *models.NotificationLog) error
	FindByOrderID(ctx context.Context, orderID string) ([]models.NotificationLog, error)
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, log *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormNotificationRepository) FindByOrderID(ctx context.Context, orderID string) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
