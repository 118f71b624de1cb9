package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/roshshop/backend/kafka"
	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/repository"
	"github.com/roshshop/backend/services"
)

type PaymentController struct {
	Stripe   *services.StripeService
	Orders   repository.OrderRepository
	Producer kafka.ProducerAPI
	Logger   *zap.Logger
}

func NewPaymentController(stripe *services.StripeService, orders repository.OrderRepository, producer kafka.ProducerAPI, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		Stripe:   stripe,
		Orders:   orders,
		Producer: producer,
		Logger:   logger,
	}
}

// StripeWebhook receives gateway callbacks. Signature verification happens
// before anything else; unverifiable events are rejected with no side effects.
// Verified events are acknowledged with 200 regardless of processing outcome,
// since Stripe redelivers on anything else.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	event, err := pc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		pc.Logger.Warn("stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	pc.Logger.Info("processing stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed":
		pc.handleCheckoutCompleted(c, event)
	case "checkout.session.expired":
		pc.handleCheckoutExpired(c, event)
	default:
		pc.Logger.Info("unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (pc *PaymentController) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	sess, orderID, ok := pc.sessionFromEvent(event)
	if !ok {
		return
	}

	completed, err := pc.Orders.MarkCompleted(c.Request.Context(), orderID)
	if err != nil {
		pc.Logger.Error("failed to complete order",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return
	}
	if !completed {
		// Redelivered or already-terminal order: acknowledge without
		// publishing a second payment event.
		pc.Logger.Info("skipping duplicate checkout webhook", zap.String("order_id", orderID.String()))
		return
	}

	pc.publishPaymentEvent(c, models.PaymentEvent{
		Type:      models.PaymentEventSucceeded,
		OrderID:   orderID.String(),
		UserID:    sess.Metadata["user_id"],
		Amount:    sess.AmountTotal,
		Currency:  string(sess.Currency),
		Timestamp: time.Now().UTC(),
	})
}

func (pc *PaymentController) handleCheckoutExpired(c *gin.Context, event stripe.Event) {
	sess, orderID, ok := pc.sessionFromEvent(event)
	if !ok {
		return
	}

	failed, err := pc.Orders.MarkFailed(c.Request.Context(), orderID)
	if err != nil {
		pc.Logger.Error("failed to mark order failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return
	}
	if !failed {
		return
	}

	pc.publishPaymentEvent(c, models.PaymentEvent{
		Type:      models.PaymentEventFailed,
		OrderID:   orderID.String(),
		UserID:    sess.Metadata["user_id"],
		Amount:    sess.AmountTotal,
		Currency:  string(sess.Currency),
		Timestamp: time.Now().UTC(),
	})
}

func (pc *PaymentController) sessionFromEvent(event stripe.Event) (stripe.CheckoutSession, uuid.UUID, bool) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		pc.Logger.Error("failed to unmarshal checkout session", zap.Error(err))
		return sess, uuid.Nil, false
	}

	raw := sess.Metadata["order_id"]
	if raw == "" {
		pc.Logger.Warn("missing order_id metadata in checkout session",
			zap.String("session_id", sess.ID),
		)
		return sess, uuid.Nil, false
	}

	orderID, err := uuid.Parse(raw)
	if err != nil {
		pc.Logger.Warn("invalid order_id metadata", zap.String("order_id", raw))
		return sess, uuid.Nil, false
	}

	return sess, orderID, true
}

func (pc *PaymentController) publishPaymentEvent(c *gin.Context, event models.PaymentEvent) {
	if pc.Producer == nil {
		return
	}
	if err := pc.Producer.SendPaymentEvent(c.Request.Context(), event); err != nil {
		// The status update already landed; losing the event only delays the
		// confirmation email, so log and acknowledge.
		pc.Logger.Error("failed to publish payment event",
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
