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

type CheckoutController struct {
	Orders repository.OrderRepository
	Stripe *services.StripeService
	Logger *zap.Logger
}

func NewCheckoutController(orders repository.OrderRepository, stripe *services.StripeService, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		Orders: orders,
		Stripe: stripe,
		Logger: logger,
	}
}

type checkoutSessionRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// CreateCheckoutSession builds a hosted Stripe checkout session for a pending
// order owned by the caller and returns its redirect URL.
func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req checkoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	order, err := cc.Orders.FindByIDAndUserID(c.Request.Context(), req.OrderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
		return
	}

	if order.Status != models.OrderStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order is not payable"})
		return
	}
	if len(order.OrderItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order has no items"})
		return
	}

	url, err := cc.Stripe.CreateCheckoutSession(order)
	if err != nil {
		cc.Logger.Error("stripe checkout session failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
