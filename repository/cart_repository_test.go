package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/repository"
)

func TestGetItems_ReturnsCartLines(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "product_id", "name", "unit_price", "quantity", "image_url", "updated_at"}).
		AddRow(uuid.New(), userID, productID, "Desk Lamp", int64(1000), 2, "", now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "user_cart_items"`)).
		WithArgs(userID).
		WillReturnRows(rows)

	items, err := repo.GetItems(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, productID, items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestUpsertItem_AddsQuantityOnConflict(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	userID := uuid.New()
	item := models.CartItem{ProductID: uuid.New(), Name: "Desk Lamp", UnitPrice: 1000, Quantity: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "user_cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.UpsertItem(context.Background(), userID, item)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	userID := uuid.New()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "user_cart_items"`)).
		WithArgs(userID, productID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateQuantity(context.Background(), userID, productID, 0)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceItems_DeleteThenInsertInOneTransaction(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	userID := uuid.New()
	items := []models.CartItem{
		{ProductID: uuid.New(), Name: "Desk Lamp", UnitPrice: 1000, Quantity: 3},
		{ProductID: uuid.New(), Name: "Mouse", UnitPrice: 2500, Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "user_cart_items"`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "user_cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.ReplaceItems(context.Background(), userID, items)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceItems_EmptySetOnlyDeletes(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "user_cart_items"`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceItems(context.Background(), userID, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
