package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roshshop/backend/apperrors"
	"github.com/roshshop/backend/models"
	awspkg "github.com/roshshop/backend/pkg/aws"
	"github.com/roshshop/backend/repository"
)

const (
	// Business rules from the checkout page: standard shipping is free,
	// express costs a flat fee, tax is 7% of the subtotal.
	expressShippingFee = 2999
	taxRatePercent     = 7
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Email           string             `json:"email" binding:"required,email"`
	ShippingAddress string             `json:"shipping_address" binding:"required"`
	ShippingMethod  string             `json:"shipping_method" binding:"omitempty,oneof=standard express"`
}

type OrderService struct {
	orders      repository.OrderRepository
	products    repository.ProductRepository
	sns         awspkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, sns awspkg.SNSPublisher, snsTopicArn string, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:      orders,
		products:    products,
		sns:         sns,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// CreateOrder validates stock, snapshots the line items at current catalog
// prices, and inserts the pending order together with the stock decrement in
// one transaction. The pre-check is advisory; the conditional decrement inside
// the repository transaction is the guard that holds under concurrency.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	var subtotal int64

	for _, item := range req.Items {
		if seen[item.ProductID] {
			return nil, apperrors.New(400, "duplicate product in order: "+item.ProductID.String(), nil)
		}
		seen[item.ProductID] = true

		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &apperrors.ProductNotFoundError{ProductID: item.ProductID.String()}
			}
			return nil, err
		}

		// Advisory fast-fail; stock can still change before the decrement.
		if product.Stock < item.Quantity {
			return nil, &apperrors.InsufficientStockError{
				ProductID: product.ID.String(),
				Name:      product.Name,
				Available: product.Stock,
			}
		}

		orderItems = append(orderItems, models.OrderItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			ImageURL:  product.ImageURL,
		})
		subtotal += product.Price * int64(item.Quantity)
	}

	method := req.ShippingMethod
	if method == "" {
		method = models.ShippingMethodStandard
	}
	var shippingFee int64
	if method == models.ShippingMethodExpress {
		shippingFee = expressShippingFee
	}
	tax := (subtotal*taxRatePercent + 50) / 100

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     newOrderNumber(),
		UserID:          userID,
		CustomerEmail:   req.Email,
		Subtotal:        subtotal,
		ShippingFee:     shippingFee,
		Tax:             tax,
		TotalAmount:     subtotal + shippingFee + tax,
		ShippingAddress: req.ShippingAddress,
		ShippingMethod:  method,
		Status:          models.OrderStatusPending,
		OrderItems:      orderItems,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publishOrderCreated(ctx, order)

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int64("total", order.TotalAmount),
	)

	return order, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	return s.orders.FindByUserID(ctx, userID, page, limit)
}

func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// publishOrderCreated fans the event out over SNS. Best-effort: a publish
// failure never fails the order.
func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order) {
	if s.sns == nil || s.snsTopicArn == "" {
		return
	}

	event := models.OrderCreatedEvent{
		Event:     "order.created",
		OrderID:   order.ID.String(),
		UserID:    order.UserID.String(),
		Amount:    order.TotalAmount,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := s.sns.Publish(ctx, s.snsTopicArn, payload); err != nil {
		s.logger.Warn("SNS publish failed", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func newOrderNumber() string {
	return "ORD-" + time.Now().Format("20060102-150405") + "-" + uuid.New().String()[:8]
}
