package services

import (
	"context"
	"encoding/json"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/roshshop/backend/models"
)

// StartPaymentConsumer reads payment events off Kafka and hands them to the
// notification service. Blocks until ctx is canceled.
func StartPaymentConsumer(ctx context.Context, brokers []string, topic, groupID string, svc *NotificationService, logger *zap.Logger) {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer r.Close()

	logger.Info("payment consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("payment consumer shutting down")
				return
			}
			logger.Error("kafka read error", zap.Error(err))
			continue
		}

		var event models.PaymentEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			logger.Error("invalid payment event payload",
				zap.Error(err),
				zap.ByteString("payload", m.Value),
			)
			continue
		}

		if err := svc.HandlePaymentEvent(ctx, event); err != nil {
			logger.Error("payment event handling failed",
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}
}
