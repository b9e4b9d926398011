package kafka

import (
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// EventPublisher публикует события заказов в TopicOrderEvents.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher создает publisher поверх общего producer'а.
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderEvent сериализует и публикует событие заказа, key — id заказа.
func (p *EventPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	return p.producer.PublishEvent(TopicOrderEvents, event.OrderID, OrderEventMessage{
		EventType: event.Type,
		OrderID:   event.OrderID,
		Status:    string(event.Status),
		Timestamp: event.Occurred,
	})
}

var _ domain.EventPublisher = (*EventPublisher)(nil)
