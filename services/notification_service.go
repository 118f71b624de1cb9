package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/repository"
	"github.com/roshshop/backend/sender"
)

//go:embed templates/order_confirmation.html
var templateFS embed.FS

type confirmationData struct {
	OrderNumber     string
	Total           string
	Items           []confirmationItem
	ShippingAddress string
}

type confirmationItem struct {
	Name     string
	Quantity int
	Price    string
}

type NotificationService struct {
	orders      repository.OrderRepository
	logs        repository.NotificationRepository
	emailSender sender.EmailSender
	tmpl        *template.Template
	logger      *zap.Logger
}

func NewNotificationService(
	orders repository.OrderRepository,
	logs repository.NotificationRepository,
	emailSender sender.EmailSender,
	logger *zap.Logger,
) (*NotificationService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/order_confirmation.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation template: %w", err)
	}
	return &NotificationService{
		orders:      orders,
		logs:        logs,
		emailSender: emailSender,
		tmpl:        tmpl,
		logger:      logger,
	}, nil
}

// HandlePaymentEvent sends the order confirmation email for succeeded
// payments. The order status was already updated by the webhook handler;
// a send failure here is logged and recorded, never propagated back into the
// order state.
func (s *NotificationService) HandlePaymentEvent(ctx context.Context, event models.PaymentEvent) error {
	if event.Type != models.PaymentEventSucceeded {
		s.logger.Debug("ignoring payment event", zap.String("type", event.Type))
		return nil
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order id in payment event: %q", event.OrderID)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s not found", event.OrderID)
		}
		return err
	}

	// Kafka delivers at-least-once; a prior sent log means this event is a
	// redelivery and the customer already has the email.
	prior, err := s.logs.FindByOrderID(ctx, order.ID.String())
	if err != nil {
		s.logger.Warn("notification log lookup failed", zap.Error(err))
	}
	for _, entry := range prior {
		if entry.Status == models.NotificationStatusSent {
			s.logger.Info("confirmation already sent, skipping",
				zap.String("order_id", order.ID.String()),
			)
			return nil
		}
	}

	body, err := s.renderConfirmation(order)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Order Confirmation %s", order.OrderNumber)
	_, sendErr := s.emailSender.SendEmail(ctx, order.CustomerEmail, subject, body)

	logRow := &models.NotificationLog{
		OrderID:   order.ID.String(),
		Recipient: order.CustomerEmail,
		Channel:   models.ChannelEmail,
		Status:    models.NotificationStatusSent,
	}
	if sendErr != nil {
		logRow.Status = models.NotificationStatusFailed
		logRow.Error = sendErr.Error()
		s.logger.Error("confirmation email failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(sendErr),
		)
	} else {
		s.logger.Info("confirmation email sent",
			zap.String("order_id", order.ID.String()),
			zap.String("recipient", order.CustomerEmail),
		)
	}

	if err := s.logs.Create(ctx, logRow); err != nil {
		s.logger.Error("failed to record notification log", zap.Error(err))
	}

	return sendErr
}

func (s *NotificationService) renderConfirmation(order *models.Order) (string, error) {
	items := make([]confirmationItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, confirmationItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    formatAmount(item.UnitPrice),
		})
	}

	var buf bytes.Buffer
	err := s.tmpl.Execute(&buf, confirmationData{
		OrderNumber:     order.OrderNumber,
		Total:           formatAmount(order.TotalAmount),
		Items:           items,
		ShippingAddress: order.ShippingAddress,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render confirmation: %w", err)
	}
	return buf.String(), nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
