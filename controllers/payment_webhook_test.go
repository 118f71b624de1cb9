package controllers_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roshshop/backend/controllers"
	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/services"
)

const testWebhookSecret = "whsec_test_secret"

type stubOrderRepo struct {
	completedIDs  []uuid.UUID
	failedIDs     []uuid.UUID
	alreadyClosed bool
}

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error { return nil }

func (s *stubOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	s.completedIDs = append(s.completedIDs, id)
	return !s.alreadyClosed, nil
}

func (s *stubOrderRepo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	s.failedIDs = append(s.failedIDs, id)
	return !s.alreadyClosed, nil
}

type stubProducer struct {
	events []models.PaymentEvent
}

func (s *stubProducer) SendPaymentEvent(ctx context.Context, event models.PaymentEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubProducer) Close() error { return nil }

func webhookRouter(orders *stubOrderRepo, producer *stubProducer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	stripeSvc := services.NewStripeService("sk_test_key", testWebhookSecret, "https://shop.example.com")
	ctrl := controllers.NewPaymentController(stripeSvc, orders, producer, zap.NewNop())

	r := gin.New()
	r.POST("/webhooks/stripe", ctrl.StripeWebhook)
	return r
}

func checkoutEventPayload(eventType string, orderID, userID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"amount_total": 2140,
				"currency": "usd",
				"metadata": {
					"order_id": %q,
					"user_id": %q
				}
			}
		}
	}`, stripe.APIVersion, eventType, orderID, userID))
}

func signedRequest(payload []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testWebhookSecret)
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	return req
}

func TestStripeWebhook_CompletedSessionMarksOrderAndPublishes(t *testing.T) {
	orders := &stubOrderRepo{}
	producer := &stubProducer{}
	router := webhookRouter(orders, producer)

	orderID := uuid.New()
	userID := uuid.New()
	payload := checkoutEventPayload("checkout.session.completed", orderID, userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{orderID}, orders.completedIDs)
	assert.Len(t, producer.events, 1)
	assert.Equal(t, models.PaymentEventSucceeded, producer.events[0].Type)
	assert.Equal(t, orderID.String(), producer.events[0].OrderID)
	assert.Equal(t, userID.String(), producer.events[0].UserID)
	assert.Equal(t, int64(2140), producer.events[0].Amount)
}

func TestStripeWebhook_ExpiredSessionMarksOrderFailed(t *testing.T) {
	orders := &stubOrderRepo{}
	producer := &stubProducer{}
	router := webhookRouter(orders, producer)

	orderID := uuid.New()
	payload := checkoutEventPayload("checkout.session.expired", orderID, uuid.New())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{orderID}, orders.failedIDs)
	assert.Len(t, producer.events, 1)
	assert.Equal(t, models.PaymentEventFailed, producer.events[0].Type)
}

func TestStripeWebhook_InvalidSignatureRejected(t *testing.T) {
	orders := &stubOrderRepo{}
	producer := &stubProducer{}
	router := webhookRouter(orders, producer)

	payload := checkoutEventPayload("checkout.session.completed", uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=12345,v1=deadbeef")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, orders.completedIDs, "unverified events must cause no side effects")
	assert.Empty(t, producer.events)
}

func TestStripeWebhook_MissingSignatureRejected(t *testing.T) {
	orders := &stubOrderRepo{}
	producer := &stubProducer{}
	router := webhookRouter(orders, producer)

	payload := checkoutEventPayload("checkout.session.completed", uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, orders.completedIDs)
}

func TestStripeWebhook_DuplicateDeliveryPublishesNothing(t *testing.T) {
	orders := &stubOrderRepo{alreadyClosed: true}
	producer := &stubProducer{}
	router := webhookRouter(orders, producer)

	payload := checkoutEventPayload("checkout.session.completed", uuid.New(), uuid.New())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(payload))

	// Still acknowledged so Stripe stops retrying, but no second event goes out.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, producer.events)
}

func TestStripeWebhook_UnhandledEventTypeAcknowledged(t *testing.T) {
	orders := &stubOrderRepo{}
	producer := &stubProducer{}
	router := webhookRouter(orders, producer)

	payload := checkoutEventPayload("payment_intent.created", uuid.New(), uuid.New())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, orders.completedIDs)
	assert.Empty(t, producer.events)
}
