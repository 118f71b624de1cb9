package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roshshop/backend/apperrors"
	"github.com/roshshop/backend/middleware"
	"github.com/roshshop/backend/services"
)

type OrderController struct {
	Svc    *services.OrderService
	Logger *zap.Logger
}

func NewOrderController(svc *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{Svc: svc, Logger: logger}
}

// CreateOrder places an order for the caller's cart items.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.Svc.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		var stockErr *apperrors.InsufficientStockError
		var missingErr *apperrors.ProductNotFoundError
		var appErr *apperrors.Error
		switch {
		case errors.As(err, &stockErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
		case errors.As(err, &missingErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": missingErr.Error()})
		case errors.As(err, &appErr):
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		default:
			oc.Logger.Error("order creation failed", zap.String("user_id", userID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrders lists the caller's orders with pagination.
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	orders, total, err := oc.Svc.GetUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		oc.Logger.Error("failed to fetch orders", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta": gin.H{
			"page":     page,
			"limit":    limit,
			"total":    total,
			"has_more": total > int64(page*limit),
		},
	})
}

// GetOrderByID fetches one of the caller's orders.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := oc.Svc.GetOrderByID(c.Request.Context(), userID, orderID)
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
