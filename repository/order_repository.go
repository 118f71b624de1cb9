package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roshshop/backend/apperrors"
	"github.com/roshshop/backend/models"
)

type OrderRepository interface {
	// Create inserts the order and decrements stock for every line inside one
	// transaction. Either everything lands or nothing does.
	Create(ctx context.Context, order *models.Order) error
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.OrderItems {
			// Conditional decrement is the authoritative stock guard. The WHERE
			// clause keeps stock from ever going negative under concurrent
			// checkouts for the same product.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var product models.Product
				err := tx.Select("name", "stock").First(&product, "id = ?", item.ProductID).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &apperrors.ProductNotFoundError{ProductID: item.ProductID.String()}
				}
				if err != nil {
					return err
				}
				return &apperrors.InsufficientStockError{
					ProductID: item.ProductID.String(),
					Name:      product.Name,
					Available: product.Stock,
				}
			}
		}

		return tx.Create(order).Error
	})
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("OrderItems").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkCompleted transitions pending → completed. Returns false when the order
// was not pending, which lets webhook redeliveries be acknowledged without
// publishing a second payment event.
func (r *GormOrderRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, models.OrderStatusCompleted)
}

// MarkFailed transitions pending → failed.
func (r *GormOrderRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, models.OrderStatusFailed)
}

func (r *GormOrderRepository) transition(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	updates := map[string]interface{}{"status": status}
	now := gorm.Expr("NOW()")
	switch status {
	case models.OrderStatusCompleted:
		updates["completed_at"] = now
	case models.OrderStatusFailed:
		updates["failed_at"] = now
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
