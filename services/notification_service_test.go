package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/sender"
)

type fakeNotificationRepo struct {
	logs []*models.NotificationLog
}

func (f *fakeNotificationRepo) Create(ctx context.Context, log *models.NotificationLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeNotificationRepo) FindByOrderID(ctx context.Context, orderID string) ([]models.NotificationLog, error) {
	var out []models.NotificationLog
	for _, l := range f.logs {
		if l.OrderID == orderID {
			out = append(out, *l)
		}
	}
	return out, nil
}

type fakeEmailSender struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, to, subject, body string) (sender.SendResult, error) {
	if f.err != nil {
		return sender.SendResult{}, f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return sender.SendResult{MessageID: uuid.NewString(), SentAt: time.Now()}, nil
}

func seedOrder(orders *fakeOrderRepo) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20260115-103000-abcd1234",
		UserID:          uuid.New(),
		CustomerEmail:   "buyer@example.com",
		Subtotal:        2000,
		Tax:             140,
		TotalAmount:     2140,
		ShippingAddress: "1 Main St, Springfield",
		Status:          models.OrderStatusCompleted,
		OrderItems: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Desk Lamp", UnitPrice: 1000, Quantity: 2},
		},
	}
	orders.orders[order.ID] = order
	return order
}

func succeededEvent(orderID uuid.UUID) models.PaymentEvent {
	return models.PaymentEvent{
		Type:      models.PaymentEventSucceeded,
		OrderID:   orderID.String(),
		UserID:    uuid.NewString(),
		Amount:    2140,
		Currency:  "usd",
		Timestamp: time.Now().UTC(),
	}
}

func TestHandlePaymentEvent_SendsOneConfirmationEmail(t *testing.T) {
	orders := newFakeOrderRepo()
	order := seedOrder(orders)
	logs := &fakeNotificationRepo{}
	email := &fakeEmailSender{}

	svc, err := NewNotificationService(orders, logs, email, zap.NewNop())
	assert.NoError(t, err)

	err = svc.HandlePaymentEvent(context.Background(), succeededEvent(order.ID))
	assert.NoError(t, err)

	assert.Len(t, email.sent, 1)
	msg := email.sent[0]
	assert.Equal(t, "buyer@example.com", msg.To)
	assert.Contains(t, msg.Subject, order.OrderNumber)
	assert.Contains(t, msg.Body, order.OrderNumber)
	assert.Contains(t, msg.Body, "Desk Lamp")
	assert.Contains(t, msg.Body, "$21.40")
	assert.Contains(t, msg.Body, "1 Main St, Springfield")
}

func TestHandlePaymentEvent_RecordsSentLog(t *testing.T) {
	orders := newFakeOrderRepo()
	order := seedOrder(orders)
	logs := &fakeNotificationRepo{}

	svc, err := NewNotificationService(orders, logs, &fakeEmailSender{}, zap.NewNop())
	assert.NoError(t, err)

	assert.NoError(t, svc.HandlePaymentEvent(context.Background(), succeededEvent(order.ID)))

	assert.Len(t, logs.logs, 1)
	assert.Equal(t, order.ID.String(), logs.logs[0].OrderID)
	assert.Equal(t, models.ChannelEmail, logs.logs[0].Channel)
	assert.Equal(t, models.NotificationStatusSent, logs.logs[0].Status)
}

func TestHandlePaymentEvent_SendFailureRecordedNotFatal(t *testing.T) {
	orders := newFakeOrderRepo()
	order := seedOrder(orders)
	logs := &fakeNotificationRepo{}
	email := &fakeEmailSender{err: errors.New("smtp timeout")}

	svc, err := NewNotificationService(orders, logs, email, zap.NewNop())
	assert.NoError(t, err)

	err = svc.HandlePaymentEvent(context.Background(), succeededEvent(order.ID))
	assert.EqualError(t, err, "smtp timeout")

	assert.Len(t, logs.logs, 1)
	assert.Equal(t, models.NotificationStatusFailed, logs.logs[0].Status)
	assert.Equal(t, "smtp timeout", logs.logs[0].Error)
}

func TestHandlePaymentEvent_RedeliveredEventSendsNoSecondEmail(t *testing.T) {
	orders := newFakeOrderRepo()
	order := seedOrder(orders)
	logs := &fakeNotificationRepo{}
	email := &fakeEmailSender{}

	svc, err := NewNotificationService(orders, logs, email, zap.NewNop())
	assert.NoError(t, err)

	event := succeededEvent(order.ID)
	assert.NoError(t, svc.HandlePaymentEvent(context.Background(), event))
	assert.NoError(t, svc.HandlePaymentEvent(context.Background(), event))

	assert.Len(t, email.sent, 1, "a redelivered event must not email the customer twice")
	assert.Len(t, logs.logs, 1)
}

func TestHandlePaymentEvent_RetriesAfterFailedSend(t *testing.T) {
	orders := newFakeOrderRepo()
	order := seedOrder(orders)
	logs := &fakeNotificationRepo{}
	email := &fakeEmailSender{err: errors.New("smtp timeout")}

	svc, err := NewNotificationService(orders, logs, email, zap.NewNop())
	assert.NoError(t, err)

	assert.Error(t, svc.HandlePaymentEvent(context.Background(), succeededEvent(order.ID)))

	// Only failed attempts are on record, so a later event may try again.
	email.err = nil
	assert.NoError(t, svc.HandlePaymentEvent(context.Background(), succeededEvent(order.ID)))
	assert.Len(t, email.sent, 1)
}

func TestHandlePaymentEvent_IgnoresFailedPayments(t *testing.T) {
	orders := newFakeOrderRepo()
	order := seedOrder(orders)
	logs := &fakeNotificationRepo{}
	email := &fakeEmailSender{}

	svc, err := NewNotificationService(orders, logs, email, zap.NewNop())
	assert.NoError(t, err)

	event := succeededEvent(order.ID)
	event.Type = models.PaymentEventFailed
	assert.NoError(t, svc.HandlePaymentEvent(context.Background(), event))

	assert.Empty(t, email.sent)
	assert.Empty(t, logs.logs)
}

func TestHandlePaymentEvent_UnknownOrder(t *testing.T) {
	svc, err := NewNotificationService(newFakeOrderRepo(), &fakeNotificationRepo{}, &fakeEmailSender{}, zap.NewNop())
	assert.NoError(t, err)

	err = svc.HandlePaymentEvent(context.Background(), succeededEvent(uuid.New()))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestHandlePaymentEvent_InvalidOrderID(t *testing.T) {
	svc, err := NewNotificationService(newFakeOrderRepo(), &fakeNotificationRepo{}, &fakeEmailSender{}, zap.NewNop())
	assert.NoError(t, err)

	event := succeededEvent(uuid.New())
	event.OrderID = "not-a-uuid"
	assert.Error(t, svc.HandlePaymentEvent(context.Background(), event))
}
