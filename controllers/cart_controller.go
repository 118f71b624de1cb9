package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roshshop/backend/middleware"
	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/repository"
	"github.com/roshshop/backend/services"
)

type CartController struct {
	GuestCarts repository.GuestCartRepository
	UserCarts  repository.CartRepository
	Products   repository.ProductRepository
	Svc        *services.CartService
	Logger     *zap.Logger
}

func NewCartController(
	guestCarts repository.GuestCartRepository,
	userCarts repository.CartRepository,
	products repository.ProductRepository,
	svc *services.CartService,
	logger *zap.Logger,
) *CartController {
	return &CartController{
		GuestCarts: guestCarts,
		UserCarts:  userCarts,
		Products:   products,
		Svc:        svc,
		Logger:     logger,
	}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// Quantity is a pointer so an explicit 0 survives binding; 0 and below
// mean "remove the line".
type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func cartResponse(items []models.CartItem) gin.H {
	if items == nil {
		items = []models.CartItem{}
	}
	return gin.H{
		"items":    items,
		"subtotal": models.SubtotalOf(items),
	}
}

// GetCart returns the caller's cart: the Postgres cart for logged-in users,
// the Redis guest cart otherwise.
func (cc *CartController) GetCart(c *gin.Context) {
	if userID, err := middleware.GetUserID(c); err == nil {
		items, err := cc.UserCarts.GetItems(c.Request.Context(), userID)
		if err != nil {
			cc.Logger.Error("failed to get user cart", zap.String("user_id", userID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
		return
	}

	sessionID := c.GetHeader(middleware.SessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id"})
		return
	}

	cart, err := cc.GuestCarts.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		cc.Logger.Error("failed to get guest cart", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	if cart == nil {
		c.JSON(http.StatusOK, cartResponse(nil))
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart.Items))
}

// AddItem adds a product to the cart or bumps its quantity. Name, price and
// image come from the catalog, never from the client.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()

	product, err := cc.Products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up product"})
		return
	}

	item := models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  req.Quantity,
		ImageURL:  product.ImageURL,
	}

	if userID, err := middleware.GetUserID(c); err == nil {
		if err := cc.UserCarts.UpsertItem(ctx, userID, item); err != nil {
			cc.Logger.Error("failed to save cart item", zap.String("user_id", userID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
			return
		}
		items, err := cc.UserCarts.GetItems(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
		return
	}

	sessionID := c.GetHeader(middleware.SessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id"})
		return
	}

	cart, err := cc.GuestCarts.GetCart(ctx, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	if cart == nil {
		cart = &models.Cart{OwnerID: sessionID, Items: []models.CartItem{}}
	}

	found := false
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, item)
	}

	if err := cc.GuestCarts.SaveCart(ctx, cart); err != nil {
		cc.Logger.Error("failed to save guest cart", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart.Items))
}

// UpdateItem sets a line's quantity. Anything below 1 removes the line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	quantity := *req.Quantity

	ctx := c.Request.Context()

	if userID, err := middleware.GetUserID(c); err == nil {
		if err := cc.UserCarts.UpdateQuantity(ctx, userID, productID, quantity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
			return
		}
		items, err := cc.UserCarts.GetItems(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
		return
	}

	sessionID := c.GetHeader(middleware.SessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id"})
		return
	}

	cart, err := cc.GuestCarts.GetCart(ctx, sessionID)
	if err != nil || cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}

	newItems := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID == productID {
			if quantity < 1 {
				continue
			}
			item.Quantity = quantity
		}
		newItems = append(newItems, item)
	}
	cart.Items = newItems

	if err := cc.GuestCarts.SaveCart(ctx, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart.Items))
}

// RemoveItem deletes one line from the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	ctx := c.Request.Context()

	if userID, err := middleware.GetUserID(c); err == nil {
		if err := cc.UserCarts.RemoveItem(ctx, userID, productID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
			return
		}
		items, err := cc.UserCarts.GetItems(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
		return
	}

	sessionID := c.GetHeader(middleware.SessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id"})
		return
	}

	cart, err := cc.GuestCarts.GetCart(ctx, sessionID)
	if err != nil || cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}

	newItems := make([]models.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			newItems = append(newItems, item)
		}
	}
	cart.Items = newItems

	if err := cc.GuestCarts.SaveCart(ctx, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart.Items))
}

// ClearCart removes all items.
func (cc *CartController) ClearCart(c *gin.Context) {
	ctx := c.Request.Context()

	if userID, err := middleware.GetUserID(c); err == nil {
		if err := cc.UserCarts.Clear(ctx, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
		return
	}

	sessionID := c.GetHeader(middleware.SessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id"})
		return
	}

	if err := cc.GuestCarts.DeleteCart(ctx, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// SyncCart merges the guest cart into the logged-in user's cart. Fired by the
// frontend once after login.
func (cc *CartController) SyncCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID := c.GetHeader(middleware.SessionHeader)

	merged, err := cc.Svc.Reconcile(c.Request.Context(), userID, sessionID)
	if err != nil {
		cc.Logger.Error("cart reconciliation failed", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync cart"})
		return
	}

	c.JSON(http.StatusOK, cartResponse(merged))
}
