package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roshshop/backend/models"
)

// CartRepository stores carts of logged-in users.
type CartRepository interface {
	GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	UpsertItem(ctx context.Context, userID uuid.UUID, item models.CartItem) error
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	ReplaceItems(ctx context.Context, userID uuid.UUID, items []models.CartItem) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.UserCartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ToCartItem())
	}
	return items, nil
}

// UpsertItem inserts the line or adds to the existing quantity in one
// statement, so concurrent adds for the same product never lose updates.
func (r *GormCartRepository) UpsertItem(ctx context.Context, userID uuid.UUID, item models.CartItem) error {
	row := models.UserCartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: item.ProductID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		ImageURL:  item.ImageURL,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("user_cart_items.quantity + excluded.quantity"),
			"unit_price": item.UnitPrice,
			"name":       item.Name,
			"image_url":  item.ImageURL,
		}),
	}).Create(&row).Error
}

func (r *GormCartRepository) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return r.RemoveItem(ctx, userID, productID)
	}
	return r.db.WithContext(ctx).
		Model(&models.UserCartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		UpdateColumn("quantity", quantity).Error
}

func (r *GormCartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.UserCartItem{}).Error
}

func (r *GormCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserCartItem{}).Error
}

// ReplaceItems rewrites the user's cart as a whole: delete existing rows, then
// insert the new set inside one transaction.
func (r *GormCartRepository) ReplaceItems(ctx context.Context, userID uuid.UUID, items []models.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserCartItem{}).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}

		rows := make([]models.UserCartItem, 0, len(items))
		for _, item := range items {
			rows = append(rows, models.UserCartItem{
				ID:        uuid.New(),
				UserID:    userID,
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				ImageURL:  item.ImageURL,
			})
		}
		return tx.Create(&rows).Error
	})
}
