package services

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

var (
	ErrInvalidRule       = errors.New("invalid markup rule")
	ErrInvalidMaterial   = errors.New("invalid material")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid order status")
)

// EventPublisher publishes domain events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// publishEvent sends payload best-effort; failures are logged and never
// fail the operation that produced the event.
func publishEvent(events EventPublisher, log *zap.Logger, routingKey string, payload any) {
	if events == nil {
		log.Debug("event publisher not configured, skipping", zap.String("routing_key", routingKey))
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn("failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	if err := events.Publish(routingKey, body); err != nil {
		log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
